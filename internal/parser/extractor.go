package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"systemscheck/internal/model"
)

// Extractor 工作簿抽取器（WorkbookExtractor）。无状态，可并发使用。
type Extractor struct {
	opts       Options
	recognizer *SheetRecognizer
	mapper     *ColumnMapper
}

// NewExtractor 创建抽取器
func NewExtractor(opts Options) *Extractor {
	opts = opts.withDefaults()
	return &Extractor{
		opts:       opts,
		recognizer: NewSheetRecognizer(),
		mapper:     NewColumnMapper(opts.HeaderScanRows),
	}
}

// ExtractBytes 从内存中的 xlsx 数据抽取
func (e *Extractor) ExtractBytes(data []byte) (*model.ExtractedWorkbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return e.Extract(f)
}

// ExtractFile 从文件路径抽取
func (e *Extractor) ExtractFile(path string) (*model.ExtractedWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return e.Extract(f)
}

// Extract 抽取元信息与各系统数据行。结构性问题（缺 sheet、缺表头、缺元信息）
// 只记警告并降级处理；只有工作簿不可读时返回错误。
func (e *Extractor) Extract(f *excelize.File) (*model.ExtractedWorkbook, error) {
	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rowsCache := make(map[string][][]string, len(sheetNames))
	readRows := func(name string) ([][]string, error) {
		if rows, ok := rowsCache[name]; ok {
			return rows, nil
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		rowsCache[name] = rows
		return rows, nil
	}

	wb := &model.ExtractedWorkbook{Systems: []model.ExtractedSystem{}, Warnings: []model.Issue{}}
	recs, warns := e.recognizer.RecognizeSystems(sheetNames)
	wb.Warnings = append(wb.Warnings, warns...)

	meta, metaWarns := e.extractMetadata(sheetNames, recs, readRows)
	wb.FacilityName, wb.Month, wb.Year = meta.FacilityName, meta.Month, meta.Year
	wb.Warnings = append(wb.Warnings, metaWarns...)

	for _, rec := range recs {
		rows, err := readRows(rec.SheetName)
		if err != nil {
			wb.Warnings = append(wb.Warnings, model.NewIssue(model.CodeSheetNotFound,
				"System %d sheet %q unreadable: %v", rec.SystemNumber, rec.SheetName, err))
			continue
		}
		sys, sysWarns := e.extractSystem(rec, rows)
		wb.Systems = append(wb.Systems, sys)
		wb.Warnings = append(wb.Warnings, sysWarns...)
	}
	return wb, nil
}

// extractMetadata 机构名先查概览 sheet，再查各系统 sheet；月份/年份同理
func (e *Extractor) extractMetadata(sheetNames []string, recs []SheetRecognition, readRows func(string) ([][]string, error)) (Metadata, []model.Issue) {
	type source struct {
		name    string
		maxRows int
	}
	var sources []source
	if overview, ok := e.recognizer.FindOverview(sheetNames); ok {
		sources = append(sources, source{overview, e.opts.MetadataScanRows})
	}
	for _, rec := range recs {
		sources = append(sources, source{rec.SheetName, e.opts.MonthScanRows})
	}

	meta := Metadata{FacilityState: StateSearching, MonthState: StateSearching}
	yearState := StateSearching
	for _, src := range sources {
		rows, err := readRows(src.name)
		if err != nil {
			continue
		}
		if meta.FacilityState == StateSearching {
			if v, st := facilityScan(src.maxRows).run(rows); st == StateFound {
				meta.FacilityName, meta.FacilityState, meta.FacilitySheet = v, st, src.name
			}
		}
		if meta.MonthState == StateSearching {
			if v, st := monthScan(src.maxRows).run(rows); st == StateFound {
				meta.Month, _ = ParseMonth(v)
				meta.MonthState, meta.MonthSheet = st, src.name
				if y, ok := ExtractYear(v); ok && yearState == StateSearching {
					meta.Year, yearState = y, StateFound
				}
			}
		}
		if yearState == StateSearching {
			if v, st := yearScan(src.maxRows).run(rows); st == StateFound {
				meta.Year, _ = ExtractYear(v)
				yearState = st
			}
		}
	}

	var warns []model.Issue
	if meta.FacilityState == StateSearching {
		meta.FacilityState = StateFallback
		warns = append(warns, model.NewIssue(model.CodeMetadataNotFound, "Facility name not found in workbook"))
	}
	if meta.MonthState == StateSearching {
		meta.MonthState = StateFallback
		warns = append(warns, model.NewIssue(model.CodeMetadataNotFound, "Month not found in workbook"))
	}
	if yearState == StateSearching {
		warns = append(warns, model.NewIssue(model.CodeMetadataNotFound, "Year not found in workbook"))
	}
	return meta, warns
}

// extractSystem 识别表头并抽取数据行
func (e *Extractor) extractSystem(rec SheetRecognition, rows [][]string) (model.ExtractedSystem, []model.Issue) {
	header := e.mapper.FindHeader(rows)
	sys := model.ExtractedSystem{
		SystemNumber: rec.SystemNumber,
		SystemName:   model.SystemName(rec.SystemNumber),
		SheetName:    rec.SheetName,
		Layout:       model.LayoutHeader,
		Columns:      header.Columns,
	}

	var warns []model.Issue
	if header.State == StateFound {
		sys.HeaderRow = header.Row + 1
	} else {
		sys.Layout = model.LayoutDefault
		warns = append(warns, model.NewIssue(model.CodeHeaderNotFound,
			"Header row not found in sheet %q, using default column layout", rec.SheetName))
	}

	start := header.DataStart(e.opts.DefaultDataStart)
	sys.Rows, warns = e.extractRows(rec.SheetName, rows, header.Columns, start, warns)
	return sys, warns
}

func (e *Extractor) extractRows(sheet string, rows [][]string, cols map[model.ColumnRole]int, start int, warns []model.Issue) ([]model.RawExtractedRow, []model.Issue) {
	out := make([]model.RawExtractedRow, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		category := cell(row, colIndex(cols, model.ColumnCategory))
		if category == "" || isTotalRow(category) {
			continue
		}
		maxRaw := cell(row, colIndex(cols, model.ColumnMaxPoints))
		maxPoints, ok := ParseNumber(maxRaw)
		if !ok || maxPoints <= 0 {
			continue
		}

		r := model.RawExtractedRow{
			RowNumber:     i + 1,
			Position:      len(out),
			CategoryText:  category,
			MaxPointsRaw:  maxRaw,
			ChartsMetRaw:  cell(row, colIndex(cols, model.ColumnChartsMet)),
			SampleSizeRaw: cell(row, colIndex(cols, model.ColumnSampleSize)),
			Notes:         cell(row, colIndex(cols, model.ColumnNotes)),
			MaxPoints:     maxPoints,
		}
		e.classify(&r)

		if r.ChartsMet < 0 || r.ChartsMet > r.SampleSize {
			warns = append(warns, model.NewIssue(model.CodeChartsMetClamped,
				"Sheet %q row %d: charts met %g outside 0..%g, clamped", sheet, r.RowNumber, r.ChartsMet, r.SampleSize))
		}
		out = append(out, r)
	}
	return out, warns
}

// classify 样本数单元格含 "y=1"/"n=0"，或恰为 "1" 且满分 >= BinaryMinPoints 时为二元项；
// 否则为抽样项，样本数无法解析时取默认值
func (e *Extractor) classify(r *model.RawExtractedRow) {
	sampleText := NormalizeCell(r.SampleSizeRaw)
	binary := strings.Contains(sampleText, "y=1") || strings.Contains(sampleText, "n=0") ||
		(sampleText == "1" && r.MaxPoints >= e.opts.BinaryMinPoints)

	r.ChartsMet = parseChartsMet(r.ChartsMetRaw)
	if binary {
		r.InputType = model.InputBinary
		r.SampleSize = 1
		return
	}
	r.InputType = model.InputSample
	if v, ok := ParseNumber(r.SampleSizeRaw); ok && v > 0 {
		r.SampleSize = v
	} else {
		r.SampleSize = e.opts.DefaultSampleSize
	}
}

// parseChartsMet 数值直接使用；yes/y/x 视为 1，其余视为 0
func parseChartsMet(raw string) float64 {
	if v, ok := ParseNumber(raw); ok {
		return v
	}
	switch NormalizeCell(raw) {
	case "yes", "y", "x", "met", "true":
		return 1
	}
	return 0
}

func isTotalRow(category string) bool {
	norm := NormalizeCell(category)
	return strings.HasPrefix(norm, "total") || strings.Contains(norm, "system total") ||
		strings.Contains(norm, "grand total")
}

func colIndex(cols map[model.ColumnRole]int, role model.ColumnRole) int {
	if idx, ok := cols[role]; ok {
		return idx
	}
	return -1
}
