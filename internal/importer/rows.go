package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"systemscheck/internal/model"
	"systemscheck/internal/validation"
)

// SourceBatch 批量行导入的来源标识
const SourceBatch = "batch"

// ValidateRows 仅校验（dry run）：不写入任何数据
func (c *Coordinator) ValidateRows(ctx context.Context, rows []model.BatchRow) (*model.ValidateReport, error) {
	snap, results, err := c.processRows(ctx, rows)
	if err != nil {
		return nil, err
	}
	report := buildReport(snap.registry, results)
	c.log.Info().
		Str("batch_id", snap.batchID).
		Dur("elapsed", time.Since(snap.started)).
		Int("total", report.Total).
		Int("valid", report.Valid).
		Int("invalid", report.Invalid).
		Msg("batch rows validated")
	c.sendProgress(ProgressEvent{Type: "done", BatchID: snap.batchID, Message: "validation finished", Data: report})
	return report, nil
}

// CommitRows 校验并提交：通过校验的行在一个事务中写入
func (c *Coordinator) CommitRows(ctx context.Context, rows []model.BatchRow) (*model.ImportBatchResult, error) {
	snap, results, err := c.processRows(ctx, rows)
	if err != nil {
		return nil, err
	}
	return c.commitValid(ctx, snap, SourceBatch, results)
}

func (c *Coordinator) processRows(ctx context.Context, rows []model.BatchRow) (*snapshot, []unitResult, error) {
	snap, err := c.loadSnapshot(ctx, false)
	if err != nil {
		c.log.Error().Err(err).Msg("load batch snapshot failed")
		return nil, nil, err
	}
	c.sendProgress(ProgressEvent{Type: "start", BatchID: snap.batchID,
		Message: fmt.Sprintf("processing %d rows", len(rows))})

	results, err := c.runUnits(ctx, len(rows), func(i int) unitResult {
		row := rows[i]
		out := snap.validator.ValidateRow(row)
		res := unitResult{Row: i + 1, FacilityName: row.FacilityName, Outcome: out}
		if out.Result.IsValid {
			res.Card = cardFromRow(row, out)
		}
		return res
	})
	if err != nil {
		return nil, nil, err
	}
	markBatchDuplicates(results)
	return snap, results, nil
}

// cardFromRow 批量行只携带各系统得分，不含明细
func cardFromRow(row model.BatchRow, out validation.Outcome) *model.ParsedScorecard {
	card := &model.ParsedScorecard{
		ID:                 uuid.NewString(),
		Source:             SourceBatch,
		FacilityNameRaw:    row.FacilityName,
		ResolvedFacilityID: out.FacilityID,
		FacilityMatch:      out.FacilityMatch,
		Month:              out.Month,
		Year:               out.Year,
		Systems:            make([]model.SystemScore, 0, len(out.Scores)),
		TotalScore:         out.CalculatedTotal,
	}
	for i, score := range out.Scores {
		card.Systems = append(card.Systems, model.SystemScore{
			SystemNumber:      i + 1,
			SystemName:        model.SystemName(i + 1),
			Items:             []model.ResolvedItem{},
			TotalPointsEarned: score,
		})
	}
	return card
}
