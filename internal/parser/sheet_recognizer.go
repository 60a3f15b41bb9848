package parser

import (
	"strings"

	"systemscheck/internal/model"
)

// SystemSheetPatterns 各系统 sheet 名称匹配子串（小写）
var SystemSheetPatterns = map[int][]string{
	1: {"change of condition", "coc", "1.", "system 1"},
	2: {"accidents", "falls", "incidents", "2.", "system 2"},
	3: {"skin", "wound", "3.", "system 3"},
	4: {"medication", "weight", "4.", "system 4"},
	5: {"infection", "5.", "system 5"},
	6: {"transfer", "discharge", "6.", "system 6"},
	7: {"abuse", "grievance", "self-report", "7.", "system 7"},
}

// OverviewSheetNames 概览 sheet 候选名称，按优先级排序
var OverviewSheetNames = []string{"overview", "summary", "cover", "facility info", "info"}

// SheetRecognition 系统 sheet 识别结果
type SheetRecognition struct {
	SheetName    string `json:"sheetName"`
	SystemNumber int    `json:"systemNumber"`
	Pattern      string `json:"pattern"`
}

// SheetRecognizer 系统 sheet 识别器
type SheetRecognizer struct {
	patterns map[int][]string
	overview []string
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{patterns: SystemSheetPatterns, overview: OverviewSheetNames}
}

// FindOverview 按候选名称顺序查找概览 sheet
func (r *SheetRecognizer) FindOverview(sheetNames []string) (string, bool) {
	for _, cand := range r.overview {
		for _, name := range sheetNames {
			if strings.Contains(NormalizeCell(name), cand) {
				return name, true
			}
		}
	}
	return "", false
}

// RecognizeSystems 为系统 1..7 各找一个 sheet：按工作簿顺序取第一个匹配的名称，
// 已被前序系统占用的 sheet 与概览 sheet 不再参与匹配。未找到的系统记 SheetNotFound 警告。
func (r *SheetRecognizer) RecognizeSystems(sheetNames []string) ([]SheetRecognition, []model.Issue) {
	claimed := make(map[string]bool, len(sheetNames))
	if overview, ok := r.FindOverview(sheetNames); ok {
		claimed[overview] = true
	}

	var (
		found    []SheetRecognition
		warnings []model.Issue
	)
	for sys := 1; sys <= model.ScoredSystemCount; sys++ {
		rec, ok := r.recognizeSystem(sys, sheetNames, claimed)
		if !ok {
			warnings = append(warnings, model.NewIssue(model.CodeSheetNotFound,
				"Sheet not found for system %d (%s)", sys, model.SystemName(sys)))
			continue
		}
		claimed[rec.SheetName] = true
		found = append(found, rec)
	}
	return found, warnings
}

func (r *SheetRecognizer) recognizeSystem(sys int, sheetNames []string, claimed map[string]bool) (SheetRecognition, bool) {
	for _, name := range sheetNames {
		if claimed[name] {
			continue
		}
		lower := NormalizeCell(name)
		for _, p := range r.patterns[sys] {
			if strings.Contains(lower, p) {
				return SheetRecognition{SheetName: name, SystemNumber: sys, Pattern: p}, true
			}
		}
	}
	return SheetRecognition{}, false
}
