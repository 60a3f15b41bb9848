package store

import (
	"context"
	"fmt"
)

// ImportLog 导入日志
type ImportLog struct {
	ID           int64  `json:"id"`
	BatchID      string `json:"batchId"`
	Source       string `json:"source"`
	Mode         string `json:"mode"`
	TotalRows    int    `json:"totalRows"`
	SuccessRows  int    `json:"successRows"`
	FailedRows   int    `json:"failedRows"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, batchID, source, mode string, totalRows int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (batch_id, source, mode, total_rows, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, batchID, source, mode, totalRows)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// FinishImportLog 完成导入日志更新
func (s *Store) FinishImportLog(ctx context.Context, id int64, successRows, failedRows int, status, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			success_rows = ?,
			failed_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, successRows, failedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// RecentImportLogs 最近的导入日志（按 id 倒序）
func (s *Store) RecentImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, source, mode, total_rows, success_rows, failed_rows, status, error_message
		FROM import_logs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	defer rows.Close()

	var out []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.BatchID, &l.Source, &l.Mode, &l.TotalRows, &l.SuccessRows,
			&l.FailedRows, &l.Status, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan import log failed: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
