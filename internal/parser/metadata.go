package parser

import (
	"strings"
)

// Metadata 工作簿元信息
type Metadata struct {
	FacilityName  string
	FacilityState DiscoveryState
	FacilitySheet string
	Month         int
	Year          int
	MonthState    DiscoveryState
	MonthSheet    string
}

// labelScan 在前 maxRows 行中查找满足 match 的标签单元格，取其相邻值：
// 同一单元格冒号后的文本，其次同行右侧第一个非空单元格，再次正下方单元格。
type labelScan struct {
	maxRows int
	match   func(string) bool
	accept  func(string) bool
}

func (s labelScan) run(rows [][]string) (string, DiscoveryState) {
	state := StateSearching
	var value string
	for i := 0; i < len(rows) && i < s.maxRows && state == StateSearching; i++ {
		for j, raw := range rows[i] {
			if !s.match(NormalizeCell(raw)) {
				continue
			}
			if v := adjacentValue(rows, i, j); v != "" && (s.accept == nil || s.accept(v)) {
				value, state = v, StateFound
				break
			}
		}
	}
	if state == StateSearching {
		state = StateFallback
	}
	return value, state
}

func adjacentValue(rows [][]string, i, j int) string {
	row := rows[i]
	if idx := strings.Index(row[j], ":"); idx >= 0 {
		if v := strings.TrimSpace(row[j][idx+1:]); v != "" {
			return v
		}
	}
	for k := j + 1; k < len(row); k++ {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	if i+1 < len(rows) {
		return cell(rows[i+1], j)
	}
	return ""
}

func isFacilityLabel(text string) bool {
	return strings.Contains(text, "facility") && strings.Contains(text, "name")
}

func isMonthLabel(text string) bool { return strings.Contains(text, "month") }

func isYearLabel(text string) bool {
	return strings.Contains(text, "year") && !strings.Contains(text, "month")
}

func isMonthValue(v string) bool {
	_, ok := ParseMonth(v)
	return ok
}

func isYearValue(v string) bool {
	_, ok := ExtractYear(v)
	return ok
}

// facilityScan 机构名扫描
func facilityScan(maxRows int) labelScan {
	return labelScan{maxRows: maxRows, match: isFacilityLabel}
}

// monthScan 月份扫描，值须可解析为月份
func monthScan(maxRows int) labelScan {
	return labelScan{maxRows: maxRows, match: isMonthLabel, accept: isMonthValue}
}

// yearScan 年份扫描
func yearScan(maxRows int) labelScan {
	return labelScan{maxRows: maxRows, match: isYearLabel, accept: isYearValue}
}
