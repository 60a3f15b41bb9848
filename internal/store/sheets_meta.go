package store

import (
	"context"
	"database/sql"
	"fmt"

	"systemscheck/internal/model"
)

// insertSheetMeta 在提交事务内写入 sheet 元信息（用于追溯）
func insertSheetMeta(ctx context.Context, tx *sql.Tx, scorecardID string, meta model.SheetMeta) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sheets_meta (
			scorecard_id, sheet_name, system_number,
			header_row, layout, columns_json, extracted_rows
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		scorecardID, meta.SheetName, meta.SystemNumber,
		meta.HeaderRow, meta.Layout, meta.ColumnsJSON, meta.ExtractedRows,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 返回评分卡的 sheet 元信息
func (s *Store) ListSheetMeta(ctx context.Context, scorecardID string) ([]model.SheetMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sheet_name, system_number, header_row, layout, columns_json, extracted_rows
		FROM sheets_meta WHERE scorecard_id = ?
		ORDER BY system_number
	`, scorecardID)
	if err != nil {
		return nil, fmt.Errorf("query sheets_meta failed: %w", err)
	}
	defer rows.Close()

	var out []model.SheetMeta
	for rows.Next() {
		var m model.SheetMeta
		if err := rows.Scan(&m.SheetName, &m.SystemNumber, &m.HeaderRow, &m.Layout, &m.ColumnsJSON, &m.ExtractedRows); err != nil {
			return nil, fmt.Errorf("scan sheets_meta failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
