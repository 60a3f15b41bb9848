package model

import "encoding/json"

// ColumnRole 数据区列角色
type ColumnRole string

const (
	ColumnCategory   ColumnRole = "category"
	ColumnMaxPoints  ColumnRole = "max_points"
	ColumnChartsMet  ColumnRole = "charts_met"
	ColumnSampleSize ColumnRole = "sample_size"
	ColumnPoints     ColumnRole = "points"
	ColumnNotes      ColumnRole = "notes"
)

// LayoutSource 列布局来源
type LayoutSource string

const (
	LayoutHeader  LayoutSource = "header"  // 由表头识别
	LayoutDefault LayoutSource = "default" // 未找到表头，使用默认布局
)

// RawExtractedRow 从 sheet 中抽取的原始行，交给 ItemMatcher 后丢弃
type RawExtractedRow struct {
	RowNumber     int       `json:"rowNumber"` // Excel 行号（从 1 开始）
	Position      int       `json:"position"`  // 在系统内的数据行序号（从 0 开始）
	CategoryText  string    `json:"categoryText"`
	MaxPointsRaw  string    `json:"maxPointsRaw"`
	ChartsMetRaw  string    `json:"chartsMetRaw"`
	SampleSizeRaw string    `json:"sampleSizeRaw"`
	Notes         string    `json:"notes,omitempty"`
	InputType     InputType `json:"inputType"`
	MaxPoints     float64   `json:"maxPoints"`
	ChartsMet     float64   `json:"chartsMet"`
	SampleSize    float64   `json:"sampleSize"`
}

// ExtractedSystem 单个系统 sheet 的抽取结果
type ExtractedSystem struct {
	SystemNumber int                `json:"systemNumber"`
	SystemName   string             `json:"systemName"`
	SheetName    string             `json:"sheetName"`
	HeaderRow    int                `json:"headerRow"` // 1 起；默认布局时为 0
	Layout       LayoutSource       `json:"layout"`
	Columns      map[ColumnRole]int `json:"columns"`
	Rows         []RawExtractedRow  `json:"rows"`
}

// ColumnsJSON 列角色映射的 JSON 形式，写入 sheets_meta.columns_json
func (s ExtractedSystem) ColumnsJSON() string {
	if len(s.Columns) == 0 {
		return "{}"
	}
	b, err := json.Marshal(s.Columns)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ExtractedWorkbook 工作簿抽取结果
type ExtractedWorkbook struct {
	FacilityName string            `json:"facilityName"`
	Month        int               `json:"month"`
	Year         int               `json:"year"`
	Systems      []ExtractedSystem `json:"systems"`
	Warnings     []Issue           `json:"warnings"`
}

// SheetMeta sheet 抽取元信息（用于追溯）
type SheetMeta struct {
	SheetName     string `json:"sheetName"`
	SystemNumber  int    `json:"systemNumber"`
	HeaderRow     int    `json:"headerRow"`
	Layout        string `json:"layout"`
	ColumnsJSON   string `json:"columnsJson"`
	ExtractedRows int    `json:"extractedRows"`
}
