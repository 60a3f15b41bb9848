package importer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"systemscheck/internal/calculator"
	"systemscheck/internal/matching"
	"systemscheck/internal/model"
	"systemscheck/internal/validation"
)

// WorkbookReport 工作簿 dry run 结果：校验报告 + 组装好的评分卡（仅有效者）
type WorkbookReport struct {
	model.ValidateReport
	BatchID    string                   `json:"batchId"`
	Scorecards []*model.ParsedScorecard `json:"scorecards"`
}

// ValidateWorkbooks 抽取、匹配、计算并校验工作簿，不写入
func (c *Coordinator) ValidateWorkbooks(ctx context.Context, inputs []model.WorkbookInput) (*WorkbookReport, error) {
	snap, results, err := c.processWorkbooks(ctx, inputs)
	if err != nil {
		return nil, err
	}
	report := &WorkbookReport{
		ValidateReport: *buildReport(snap.registry, results),
		BatchID:        snap.batchID,
		Scorecards:     []*model.ParsedScorecard{},
	}
	for _, r := range results {
		if r.valid() && r.Card != nil {
			report.Scorecards = append(report.Scorecards, r.Card)
		}
	}
	c.log.Info().
		Str("batch_id", snap.batchID).
		Dur("elapsed", time.Since(snap.started)).
		Int("workbooks", report.Total).
		Int("valid", report.Valid).
		Msg("workbooks validated")
	c.sendProgress(ProgressEvent{Type: "done", BatchID: snap.batchID, Message: "validation finished", Data: report})
	return report, nil
}

// CommitWorkbooks 处理工作簿并在一个事务中写入全部有效评分卡
func (c *Coordinator) CommitWorkbooks(ctx context.Context, inputs []model.WorkbookInput) (*model.ImportBatchResult, error) {
	snap, results, err := c.processWorkbooks(ctx, inputs)
	if err != nil {
		return nil, err
	}
	source := "workbook"
	if len(inputs) == 1 && inputs[0].Name != "" {
		source = inputs[0].Name
	}
	return c.commitValid(ctx, snap, source, results)
}

func (c *Coordinator) processWorkbooks(ctx context.Context, inputs []model.WorkbookInput) (*snapshot, []unitResult, error) {
	snap, err := c.loadSnapshot(ctx, true)
	if err != nil {
		c.log.Error().Err(err).Msg("load batch snapshot failed")
		return nil, nil, err
	}
	c.sendProgress(ProgressEvent{Type: "start", BatchID: snap.batchID,
		Message: fmt.Sprintf("processing %d workbooks", len(inputs))})

	results, err := c.runUnits(ctx, len(inputs), func(i int) unitResult {
		return c.processWorkbook(snap, i+1, inputs[i])
	})
	if err != nil {
		return nil, nil, err
	}
	markBatchDuplicates(results)
	return snap, results, nil
}

// extract 优先使用内存数据，否则按路径打开
func (c *Coordinator) extract(in model.WorkbookInput) (*model.ExtractedWorkbook, error) {
	if len(in.Data) == 0 && in.Path != "" {
		return c.extractor.ExtractFile(in.Path)
	}
	return c.extractor.ExtractBytes(in.Data)
}

func (c *Coordinator) processWorkbook(snap *snapshot, row int, in model.WorkbookInput) unitResult {
	res := unitResult{Row: row, Outcome: validation.Outcome{Result: model.NewValidationResult()}}

	wb, err := c.extract(in)
	if err != nil {
		c.log.Warn().Err(err).Str("workbook", in.Name).Msg("workbook unreadable")
		res.FacilityName = in.Overrides.FacilityName
		res.Outcome.Result.AddError(model.NewIssue(model.CodeRowFailed,
			"Workbook %s could not be read: %v", in.Name, err))
		return res
	}
	applyOverrides(wb, in.Overrides)
	res.FacilityName = wb.FacilityName

	card, warns := assembleScorecard(wb, snap.matcher)
	card.ID = uuid.NewString()
	card.Source = in.Name

	out := snap.validator.ValidateScorecard(card)
	out.Result.Warnings = append(warns, out.Result.Warnings...)
	if len(card.Systems) == 0 {
		out.Result.AddWarning(model.NewIssue(model.CodeSheetNotFound, "No system sheets found in workbook %s", in.Name))
	}
	res.Outcome = out
	if out.Result.IsValid {
		card.ResolvedFacilityID = out.FacilityID
		card.FacilityMatch = out.FacilityMatch
		res.Card = card
	}

	c.log.Debug().
		Str("workbook", in.Name).
		Str("facility", wb.FacilityName).
		Int("systems", len(card.Systems)).
		Float64("total", card.TotalScore).
		Bool("valid", out.Result.IsValid).
		Msg("workbook processed")
	return res
}

// applyOverrides 外部传入的机构名/月份/年份优先于表内数据
func applyOverrides(wb *model.ExtractedWorkbook, o model.WorkbookOverrides) {
	if o.FacilityName != "" {
		wb.FacilityName = o.FacilityName
	}
	if o.Month > 0 {
		wb.Month = o.Month
	}
	if o.Year > 0 {
		wb.Year = o.Year
	}
}

// assembleScorecard 将抽取结果逐行匹配到标准条目，计算得分，组装评分卡。
// 无法匹配或与已匹配条目重复的行被跳过并记警告。
func assembleScorecard(wb *model.ExtractedWorkbook, matcher *matching.ItemMatcher) (*model.ParsedScorecard, []model.Issue) {
	warns := append([]model.Issue(nil), wb.Warnings...)
	card := &model.ParsedScorecard{
		FacilityNameRaw: wb.FacilityName,
		Month:           wb.Month,
		Year:            wb.Year,
		Systems:         make([]model.SystemScore, 0, len(wb.Systems)),
	}

	for _, sys := range wb.Systems {
		score := model.SystemScore{
			SystemNumber: sys.SystemNumber,
			SystemName:   sys.SystemName,
			SheetName:    sys.SheetName,
			Items:        make([]model.ResolvedItem, 0, len(sys.Rows)),
		}
		assigned := make(map[int]int, len(sys.Rows))
		for _, row := range sys.Rows {
			m := matcher.Match(row.CategoryText, sys.SystemNumber, row.Position)
			if !m.Found {
				warns = append(warns, model.NewIssue(model.CodeItemMismatch,
					"Sheet %q row %d: no criteria item matches %q", sys.SheetName, row.RowNumber, row.CategoryText))
				continue
			}
			if prev, dup := assigned[m.Item.ItemNumber]; dup {
				warns = append(warns, model.NewIssue(model.CodeItemMismatch,
					"Sheet %q row %d: item %d already matched by row %d, row skipped",
					sys.SheetName, row.RowNumber, m.Item.ItemNumber, prev))
				continue
			}
			assigned[m.Item.ItemNumber] = row.RowNumber
			score.Items = append(score.Items, resolveItem(sys, row, m, &warns))
		}
		card.Systems = append(card.Systems, score)
		card.Sheets = append(card.Sheets, model.SheetMeta{
			SheetName:     sys.SheetName,
			SystemNumber:  sys.SystemNumber,
			HeaderRow:     sys.HeaderRow,
			Layout:        string(sys.Layout),
			ColumnsJSON:   sys.ColumnsJSON(),
			ExtractedRows: len(sys.Rows),
		})
	}

	calculator.Recompute(card)
	return card, warns
}

func resolveItem(sys model.ExtractedSystem, row model.RawExtractedRow, m matching.ItemMatch, warns *[]model.Issue) model.ResolvedItem {
	item := model.ResolvedItem{
		ItemNumber:      m.Item.ItemNumber,
		CriteriaText:    m.Item.Text,
		MaxPoints:       m.Item.MaxPoints,
		SampleSize:      row.SampleSize,
		ChartsMet:       math.Max(0, math.Min(row.ChartsMet, row.SampleSize)),
		MatchConfidence: calculator.Round2(m.Confidence),
		MatchMethod:     m.Method,
		InputType:       row.InputType,
		Notes:           row.Notes,
		SourceRow:       row.RowNumber,
	}
	if m.Method == model.MatchSimilarity {
		text := m.Item.Text
		item.MatchedTo = &text
	} else {
		*warns = append(*warns, model.NewIssue(model.CodeLowConfidenceItemMatch,
			"Sheet %q row %d: %q matched by position to item %d (confidence %.2f)",
			sys.SheetName, row.RowNumber, row.CategoryText, m.Item.ItemNumber, m.Confidence))
	}
	if m.Item.MaxPoints > 0 && math.Abs(row.MaxPoints-m.Item.MaxPoints) > 0.005 {
		*warns = append(*warns, model.NewIssue(model.CodeItemMismatch,
			"Sheet %q row %d: max points %v differs from criteria item %d (%v)",
			sys.SheetName, row.RowNumber, row.MaxPoints, m.Item.ItemNumber, m.Item.MaxPoints))
	}
	if item.MaxPoints <= 0 {
		item.MaxPoints = row.MaxPoints
	}
	return item
}
