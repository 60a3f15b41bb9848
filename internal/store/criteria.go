package store

import (
	"context"
	"fmt"

	"systemscheck/internal/model"
)

// ListCriteria 返回审核标准目录，按系统、条目编号排序
func (s *Store) ListCriteria(ctx context.Context) ([]model.CriteriaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT system_number, item_number, text, max_points, sample_size, multiplier, input_type
		FROM criteria_items
		ORDER BY system_number, item_number
	`)
	if err != nil {
		return nil, fmt.Errorf("query criteria failed: %w", err)
	}
	defer rows.Close()

	var out []model.CriteriaItem
	for rows.Next() {
		var it model.CriteriaItem
		var inputType string
		if err := rows.Scan(&it.SystemNumber, &it.ItemNumber, &it.Text, &it.MaxPoints,
			&it.SampleSize, &it.Multiplier, &inputType); err != nil {
			return nil, fmt.Errorf("scan criteria failed: %w", err)
		}
		it.InputType = model.InputType(inputType)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria failed: %w", err)
	}
	return out, nil
}

// ReplaceCriteria 整体替换审核标准目录
func (s *Store) ReplaceCriteria(ctx context.Context, items []model.CriteriaItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM criteria_items`); err != nil {
		return fmt.Errorf("failed to clear criteria: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO criteria_items (system_number, item_number, text, max_points, sample_size, multiplier, input_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		inputType := it.InputType
		if inputType == "" {
			inputType = model.InputSample
		}
		multiplier := it.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		if _, err := stmt.ExecContext(ctx, it.SystemNumber, it.ItemNumber, it.Text, it.MaxPoints,
			it.SampleSize, multiplier, string(inputType)); err != nil {
			return fmt.Errorf("failed to insert criteria %d.%d: %w", it.SystemNumber, it.ItemNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
