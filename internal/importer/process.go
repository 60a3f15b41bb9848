package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"systemscheck/internal/matching"
	"systemscheck/internal/model"
	"systemscheck/internal/validation"
)

// unitResult 单个导入单元（批量行或工作簿）的处理结果
type unitResult struct {
	Row          int // 从 1 开始
	FacilityName string
	Outcome      validation.Outcome
	Card         *model.ParsedScorecard
}

func (r *unitResult) valid() bool { return r.Outcome.Result.IsValid }

// runUnits 以有界并发处理 n 个单元，结果按输入下标存放，汇总顺序与输入一致。
// 单元内的 panic 只影响该单元，记为 RowFailed。
func (c *Coordinator) runUnits(ctx context.Context, n int, fn func(i int) unitResult) ([]unitResult, error) {
	results := make([]unitResult, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.safeUnit(i, fn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Coordinator) safeUnit(i int, fn func(i int) unitResult) (res unitResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Int("row", i+1).Interface("panic", r).Msg("row processing panicked")
			res = unitResult{Row: i + 1, Outcome: validation.Outcome{Result: model.NewValidationResult()}}
			res.Outcome.Result.AddError(model.NewIssue(model.CodeRowFailed, "Row %d failed: %v", i+1, r))
		}
	}()
	return fn(i)
}

// markBatchDuplicates 顺序检查批次内重复：同一 (机构, 年, 月) 只有先出现的有效单元保留
func markBatchDuplicates(results []unitResult) {
	seen := make(map[model.ScorecardKey]int, len(results))
	for i := range results {
		r := &results[i]
		if !r.valid() {
			continue
		}
		key := r.Outcome.Key()
		if first, ok := seen[key]; ok {
			r.Outcome.Result.AddError(model.NewIssue(model.CodeDuplicateScorecard,
				"Duplicate scorecard in batch: same facility and period as row %d", first))
			continue
		}
		seen[key] = r.Row
	}
}

// buildReport 汇总为校验报告，已解析的行附带机构所在州/城市
func buildReport(registry *matching.FacilityRegistry, results []unitResult) *model.ValidateReport {
	report := &model.ValidateReport{Total: len(results), Rows: make([]model.RowReport, 0, len(results))}
	for _, r := range results {
		rr := model.RowReport{
			Row:          r.Row,
			FacilityName: r.FacilityName,
			FacilityID:   r.Outcome.FacilityID,
			Month:        r.Outcome.Month,
			Year:         r.Outcome.Year,
			TotalScore:   r.Outcome.CalculatedTotal,
			IsValid:      r.valid(),
			Errors:       model.Messages(r.Outcome.Result.Errors),
			Warnings:     model.Messages(r.Outcome.Result.Warnings),
		}
		if rr.FacilityID != 0 && registry != nil {
			if f, ok := registry.Lookup(rr.FacilityID); ok {
				rr.State, rr.City = f.State, f.City
			}
		}
		if rr.IsValid {
			report.Valid++
		} else {
			report.Invalid++
		}
		report.Rows = append(report.Rows, rr)
	}
	return report
}

// commitValid 将有效单元作为一个事务写入；失败时整批回滚，有效单元全部记为失败
func (c *Coordinator) commitValid(ctx context.Context, snap *snapshot, source string, results []unitResult) (*model.ImportBatchResult, error) {
	out := &model.ImportBatchResult{BatchID: snap.batchID, Errors: []model.RowError{}}
	var cards []*model.ParsedScorecard
	var validRows []int
	for _, r := range results {
		for _, w := range r.Outcome.Result.Warnings {
			out.Warnings = append(out.Warnings, model.RowWarning{Row: r.Row, Warning: w.Message})
		}
		if !r.valid() || r.Card == nil {
			msg := joinIssues(r.Outcome.Result.Errors)
			out.Failed++
			out.Errors = append(out.Errors, model.RowError{Row: r.Row, Error: msg})
			c.log.Warn().Str("batch_id", snap.batchID).Int("row", r.Row).Str("error", msg).Msg("row rejected")
			continue
		}
		cards = append(cards, r.Card)
		validRows = append(validRows, r.Row)
	}

	logID := c.startImportLog(ctx, snap.batchID, source, len(results))
	c.sendProgress(ProgressEvent{Type: "validated", BatchID: snap.batchID,
		Message: fmt.Sprintf("%d valid, %d invalid", len(cards), out.Failed)})

	if len(cards) > 0 {
		if err := c.deps.Scorecards.CommitScorecards(ctx, snap.batchID, cards); err != nil {
			for _, row := range validRows {
				out.Errors = append(out.Errors, model.RowError{Row: row, Error: "Not committed: batch transaction rolled back"})
			}
			out.Failed += len(validRows)
			c.finishImportLog(ctx, logID, 0, out.Failed, "failed", err.Error())
			c.log.Error().Err(err).Str("batch_id", snap.batchID).Int("cards", len(cards)).Msg("commit failed")
			c.sendProgress(ProgressEvent{Type: "error", BatchID: snap.batchID, Message: err.Error()})
			return out, fmt.Errorf("%w: %w", ErrCommit, err)
		}
	}
	out.Success = len(cards)

	c.finishImportLog(ctx, logID, out.Success, out.Failed, "completed", "")
	c.log.Info().
		Str("batch_id", snap.batchID).
		Str("source", source).
		Dur("elapsed", time.Since(snap.started)).
		Int("success", out.Success).
		Int("failed", out.Failed).
		Msg("import batch committed")
	c.sendProgress(ProgressEvent{Type: "committed", BatchID: snap.batchID,
		Message: fmt.Sprintf("%d committed", out.Success), Data: out})
	return out, nil
}

func (c *Coordinator) startImportLog(ctx context.Context, batchID, source string, total int) int64 {
	if c.deps.ImportLog == nil {
		return 0
	}
	id, err := c.deps.ImportLog.CreateImportLog(ctx, batchID, source, "commit", total)
	if err != nil {
		c.log.Warn().Err(err).Str("batch_id", batchID).Msg("create import log failed")
		return 0
	}
	return id
}

func (c *Coordinator) finishImportLog(ctx context.Context, id int64, success, failed int, status, msg string) {
	if c.deps.ImportLog == nil || id == 0 {
		return
	}
	// 提交失败时 ctx 可能已取消，日志写入不依赖它
	if err := c.deps.ImportLog.FinishImportLog(context.WithoutCancel(ctx), id, success, failed, status, msg); err != nil {
		c.log.Warn().Err(err).Int64("log_id", id).Msg("finish import log failed")
	}
}

func joinIssues(issues []model.Issue) string {
	if len(issues) == 0 {
		return "Row failed"
	}
	return strings.Join(model.Messages(issues), "; ")
}
