package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	yearRe     = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	shortYrRe  = regexp.MustCompile(`[-'/ ](\d{2})$`)
	slashDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	isoDate    = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-\d{1,2})?`)
	letterRuns = regexp.MustCompile(`[a-z]+`)
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// NormalizeCell 规范化单元格文本：去首尾空白、压缩空白、小写
func NormalizeCell(text string) string {
	return strings.ToLower(spaceRe.ReplaceAllString(strings.TrimSpace(text), " "))
}

// ParseNumber 解析数值单元格，允许千分位和首尾空白
func ParseNumber(text string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseMonth 解析月份：数字 1-12、英文全称或三字母缩写（不区分大小写）、
// 以及 m/d/yyyy 与 yyyy-mm 日期
func ParseMonth(text string) (int, bool) {
	s := NormalizeCell(text)
	if s == "" {
		return 0, false
	}
	if v, ok := ParseNumber(s); ok {
		if v == math.Trunc(v) && v >= 1 && v <= 12 {
			return int(v), true
		}
		return 0, false
	}
	if m := slashDate.FindStringSubmatch(s); m != nil {
		mon, _ := strconv.Atoi(m[1])
		if mon >= 1 && mon <= 12 {
			return mon, true
		}
	}
	if m := isoDate.FindStringSubmatch(s); m != nil {
		mon, _ := strconv.Atoi(m[2])
		if mon >= 1 && mon <= 12 {
			return mon, true
		}
	}
	for _, word := range letterRuns.FindAllString(s, -1) {
		if len(word) < 3 {
			continue
		}
		for i, name := range monthNames {
			if word == name || word == name[:3] || (word == "sept" && i == 8) {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// ExtractYear 提取四位年份；月份缩写后跟两位年份（如 "May-24"）按 20xx 处理
func ExtractYear(text string) (int, bool) {
	s := NormalizeCell(text)
	if m := slashDate.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 2000
		}
		return y, true
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	if _, ok := ParseMonth(s); ok && letterRuns.MatchString(s) {
		if m := shortYrRe.FindStringSubmatch(s); m != nil {
			y, _ := strconv.Atoi(m[1])
			return 2000 + y, true
		}
	}
	return 0, false
}

// cell 安全读取行中的单元格
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
