package parser

import (
	"strings"

	"systemscheck/internal/model"
)

// DefaultColumns 未找到表头时使用的默认列布局
var DefaultColumns = map[model.ColumnRole]int{
	model.ColumnCategory:   0,
	model.ColumnMaxPoints:  1,
	model.ColumnChartsMet:  2,
	model.ColumnSampleSize: 3,
	model.ColumnPoints:     4,
	model.ColumnNotes:      5,
}

// HeaderResult 表头识别结果
type HeaderResult struct {
	State   DiscoveryState
	Row     int // 表头所在行（0 起）；Fallback 时为 -1
	Columns map[model.ColumnRole]int
}

// DataStart 数据区起始行（0 起）
func (h HeaderResult) DataStart(defaultStart int) int {
	if h.State == StateFound {
		return h.Row + 1
	}
	return defaultStart
}

// ColumnMapper 表头列角色映射器
type ColumnMapper struct {
	scanRows int
}

// NewColumnMapper 创建映射器
func NewColumnMapper(scanRows int) *ColumnMapper {
	if scanRows <= 0 {
		scanRows = DefaultOptions().HeaderScanRows
	}
	return &ColumnMapper{scanRows: scanRows}
}

// isHeaderCell 含 "category"，或同时含 "max" 与 "point"
func isHeaderCell(text string) bool {
	return strings.Contains(text, "category") ||
		(strings.Contains(text, "max") && strings.Contains(text, "point"))
}

// FindHeader 在前若干行中查找表头行并映射列角色；找不到时进入 Fallback 状态，使用默认布局
func (m *ColumnMapper) FindHeader(rows [][]string) HeaderResult {
	res := HeaderResult{State: StateSearching, Row: -1}
	for i := 0; i < len(rows) && i < m.scanRows && res.State == StateSearching; i++ {
		for _, c := range rows[i] {
			if isHeaderCell(NormalizeCell(c)) {
				res.State = StateFound
				res.Row = i
				break
			}
		}
	}

	switch res.State {
	case StateFound:
		res.Columns = m.MapColumns(rows[res.Row])
	default:
		res.State = StateFallback
		res.Columns = copyColumns(DefaultColumns)
	}
	return res
}

// MapColumns 按关键字为表头单元格分配列角色，每个角色取第一个命中列。
// 表头缺少分类列或满分列时，用默认布局补齐。
func (m *ColumnMapper) MapColumns(header []string) map[model.ColumnRole]int {
	cols := make(map[model.ColumnRole]int, len(DefaultColumns))
	for idx, raw := range header {
		text := NormalizeCell(raw)
		if text == "" {
			continue
		}
		role, ok := columnRole(text)
		if !ok {
			continue
		}
		if _, taken := cols[role]; !taken {
			cols[role] = idx
		}
	}
	for _, role := range []model.ColumnRole{model.ColumnCategory, model.ColumnMaxPoints} {
		if _, ok := cols[role]; !ok {
			cols[role] = DefaultColumns[role]
		}
	}
	return cols
}

// columnRole 判定顺序有意义：满分列先于得分列，样本列先于达标列
func columnRole(text string) (model.ColumnRole, bool) {
	switch {
	case strings.Contains(text, "category"), strings.Contains(text, "criteria"),
		strings.Contains(text, "standard"), strings.Contains(text, "question"):
		return model.ColumnCategory, true
	case strings.Contains(text, "max") && strings.Contains(text, "point"),
		strings.Contains(text, "possible"):
		return model.ColumnMaxPoints, true
	case strings.Contains(text, "sample"), strings.Contains(text, "reviewed"),
		strings.Contains(text, "audited"):
		return model.ColumnSampleSize, true
	case strings.Contains(text, "met"):
		return model.ColumnChartsMet, true
	case strings.Contains(text, "point"), strings.Contains(text, "score"),
		strings.Contains(text, "earned"):
		return model.ColumnPoints, true
	case strings.Contains(text, "note"), strings.Contains(text, "comment"):
		return model.ColumnNotes, true
	}
	return "", false
}

func copyColumns(src map[model.ColumnRole]int) map[model.ColumnRole]int {
	out := make(map[model.ColumnRole]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
