package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"systemscheck/internal/model"
)

// ErrScorecardNotFound 评分卡不存在
var ErrScorecardNotFound = errors.New("scorecard not found")

// ExistingKeys 返回已持久化评分卡的 (facility, year, month) 键
func (s *Store) ExistingKeys(ctx context.Context) ([]model.ScorecardKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT facility_id, year, month FROM scorecards`)
	if err != nil {
		return nil, fmt.Errorf("query scorecard keys failed: %w", err)
	}
	defer rows.Close()

	var out []model.ScorecardKey
	for rows.Next() {
		var k model.ScorecardKey
		if err := rows.Scan(&k.FacilityID, &k.Year, &k.Month); err != nil {
			return nil, fmt.Errorf("scan scorecard key failed: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scorecard keys failed: %w", err)
	}
	return out, nil
}

// CommitScorecards 在单个事务中写入评分卡及其系统、条目和 sheet 元信息。
// 任一写入失败则整体回滚，不存在部分提交。
func (s *Store) CommitScorecards(ctx context.Context, batchID string, cards []*model.ParsedScorecard) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scorecards (
			id, facility_id, year, month, total_score,
			facility_name_raw, match_score, match_method, source, batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer cardStmt.Close()

	sysStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scorecard_systems (scorecard_id, system_number, system_name, sheet_name, total_points)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer sysStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scorecard_items (
			scorecard_id, system_number, item_number, criteria_text,
			max_points, charts_met, sample_size, points_earned,
			match_confidence, matched_to, match_method, input_type, notes, source_row
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer itemStmt.Close()

	for _, c := range cards {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		var matchScore sql.NullFloat64
		var matchMethod sql.NullString
		if c.FacilityMatch != nil {
			matchScore = sql.NullFloat64{Float64: c.FacilityMatch.Score, Valid: true}
			matchMethod = sql.NullString{String: c.FacilityMatch.Method, Valid: true}
		}
		if _, err := cardStmt.ExecContext(ctx, c.ID, c.ResolvedFacilityID, c.Year, c.Month, c.TotalScore,
			c.FacilityNameRaw, matchScore, matchMethod, c.Source, batchID); err != nil {
			return fmt.Errorf("failed to insert scorecard %s: %w", c.Key(), err)
		}

		for _, sys := range c.Systems {
			if _, err := sysStmt.ExecContext(ctx, c.ID, sys.SystemNumber, sys.SystemName, sys.SheetName,
				sys.TotalPointsEarned); err != nil {
				return fmt.Errorf("failed to insert system %d of %s: %w", sys.SystemNumber, c.Key(), err)
			}
			for _, it := range sys.Items {
				var matchedTo sql.NullString
				if it.MatchedTo != nil {
					matchedTo = sql.NullString{String: *it.MatchedTo, Valid: true}
				}
				if _, err := itemStmt.ExecContext(ctx, c.ID, sys.SystemNumber, it.ItemNumber, it.CriteriaText,
					it.MaxPoints, it.ChartsMet, it.SampleSize, it.PointsEarned,
					it.MatchConfidence, matchedTo, string(it.MatchMethod), string(it.InputType),
					it.Notes, it.SourceRow); err != nil {
					return fmt.Errorf("failed to insert item %d.%d of %s: %w", sys.SystemNumber, it.ItemNumber, c.Key(), err)
				}
			}
		}

		for _, meta := range c.Sheets {
			if err := insertSheetMeta(ctx, tx, c.ID, meta); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetScorecard 读取评分卡（含系统与条目）
func (s *Store) GetScorecard(ctx context.Context, id string) (*model.ParsedScorecard, error) {
	c := &model.ParsedScorecard{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT facility_id, year, month, total_score, facility_name_raw, source
		FROM scorecards WHERE id = ?
	`, id).Scan(&c.ResolvedFacilityID, &c.Year, &c.Month, &c.TotalScore, &c.FacilityNameRaw, &c.Source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScorecardNotFound
		}
		return nil, fmt.Errorf("query scorecard failed: %w", err)
	}

	// 单连接：前一个结果集关闭后才能发起下一个查询
	if err := s.loadSystems(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) loadSystems(ctx context.Context, c *model.ParsedScorecard) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT system_number, system_name, sheet_name, total_points
		FROM scorecard_systems WHERE scorecard_id = ?
		ORDER BY system_number
	`, c.ID)
	if err != nil {
		return fmt.Errorf("query scorecard systems failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sys model.SystemScore
		if err := rows.Scan(&sys.SystemNumber, &sys.SystemName, &sys.SheetName, &sys.TotalPointsEarned); err != nil {
			return fmt.Errorf("scan scorecard system failed: %w", err)
		}
		c.Systems = append(c.Systems, sys)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate scorecard systems failed: %w", err)
	}
	return nil
}

func (s *Store) loadItems(ctx context.Context, c *model.ParsedScorecard) error {
	index := make(map[int]int, len(c.Systems))
	for i, sys := range c.Systems {
		index[sys.SystemNumber] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT system_number, item_number, criteria_text, max_points, charts_met, sample_size,
			points_earned, match_confidence, matched_to, match_method, input_type, notes, source_row
		FROM scorecard_items WHERE scorecard_id = ?
		ORDER BY system_number, item_number
	`, c.ID)
	if err != nil {
		return fmt.Errorf("query scorecard items failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sysNum            int
			it                model.ResolvedItem
			matchedTo         sql.NullString
			method, inputType string
		)
		if err := rows.Scan(&sysNum, &it.ItemNumber, &it.CriteriaText, &it.MaxPoints, &it.ChartsMet,
			&it.SampleSize, &it.PointsEarned, &it.MatchConfidence, &matchedTo, &method, &inputType,
			&it.Notes, &it.SourceRow); err != nil {
			return fmt.Errorf("scan scorecard item failed: %w", err)
		}
		if matchedTo.Valid {
			v := matchedTo.String
			it.MatchedTo = &v
		}
		it.MatchMethod = model.MatchMethod(method)
		it.InputType = model.InputType(inputType)
		if idx, ok := index[sysNum]; ok {
			c.Systems[idx].Items = append(c.Systems[idx].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate scorecard items failed: %w", err)
	}
	return nil
}

// CountScorecards 评分卡数量
func (s *Store) CountScorecards(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM scorecards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scorecards failed: %w", err)
	}
	return n, nil
}
