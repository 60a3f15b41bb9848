package store

import (
	"context"
	"fmt"

	"systemscheck/internal/model"
)

// ListFacilities 返回全部启用机构，按 id 排序
func (s *Store) ListFacilities(ctx context.Context) ([]model.CanonicalFacility, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, state, city FROM facilities
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query facilities failed: %w", err)
	}
	defer rows.Close()

	var out []model.CanonicalFacility
	for rows.Next() {
		var f model.CanonicalFacility
		if err := rows.Scan(&f.ID, &f.Name, &f.State, &f.City); err != nil {
			return nil, fmt.Errorf("scan facility failed: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facilities failed: %w", err)
	}
	return out, nil
}

// UpsertFacilities 批量写入机构（按 id 覆盖）
func (s *Store) UpsertFacilities(ctx context.Context, facilities []model.CanonicalFacility) error {
	if len(facilities) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facilities (id, name, state, city, active)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			city = excluded.city,
			active = 1,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range facilities {
		if _, err := stmt.ExecContext(ctx, f.ID, f.Name, f.State, f.City); err != nil {
			return fmt.Errorf("failed to upsert facility %d: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeactivateFacility 停用机构，之后不再参与匹配
func (s *Store) DeactivateFacility(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE facilities SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate facility: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("facility not found: %d", id)
	}
	return nil
}
