package store

import (
	"context"
	"fmt"
)

// PeriodStat 某年月的评分卡统计
type PeriodStat struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Scorecards   int     `json:"scorecards"`
	AverageScore float64 `json:"averageScore"`
}

// ListPeriods 列出存在评分卡的年月（按年/月倒序）
func (s *Store) ListPeriods(ctx context.Context) ([]PeriodStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, COUNT(1), ROUND(AVG(total_score), 2)
		FROM scorecards
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query periods failed: %w", err)
	}
	defer rows.Close()

	var out []PeriodStat
	for rows.Next() {
		var it PeriodStat
		if err := rows.Scan(&it.Year, &it.Month, &it.Scorecards, &it.AverageScore); err != nil {
			return nil, fmt.Errorf("scan periods failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods failed: %w", err)
	}
	return out, nil
}
