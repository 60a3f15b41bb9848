package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Flex 可能以字符串或数字到达的输入值，保留原文，按需转换
type Flex struct {
	raw string
	set bool
}

// FlexString 由字符串构造
func FlexString(s string) Flex { return Flex{raw: s, set: true} }

// FlexNumber 由数字构造
func FlexNumber(v float64) Flex {
	return Flex{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

// UnmarshalJSON 接受 string / number / null
func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = Flex{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex{raw: s, set: true}
		return nil
	}
	*f = Flex{raw: string(b), set: true}
	return nil
}

// MarshalJSON 数字原样输出，其余按字符串输出
func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	if v, ok := f.Float(); ok && strings.TrimSpace(f.raw) == strconv.FormatFloat(v, 'f', -1, 64) {
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	return json.Marshal(f.raw)
}

func (f Flex) String() string { return f.raw }

// IsBlank 未提供或仅空白
func (f Flex) IsBlank() bool { return !f.set || strings.TrimSpace(f.raw) == "" }

// Float 转换为浮点数（去除千分位）
func (f Flex) Float() (float64, bool) {
	if f.IsBlank() {
		return 0, false
	}
	s := strings.ReplaceAll(strings.TrimSpace(f.raw), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int 转换为整数，要求值为整数
func (f Flex) Int() (int, bool) {
	v, ok := f.Float()
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// BatchRow 批量导入的一行（字段为字符串或数字）
type BatchRow struct {
	FacilityName string `json:"facilityName"`
	Month        Flex   `json:"month"`
	Year         Flex   `json:"year"`
	System1Score Flex   `json:"system1Score"`
	System2Score Flex   `json:"system2Score"`
	System3Score Flex   `json:"system3Score"`
	System4Score Flex   `json:"system4Score"`
	System5Score Flex   `json:"system5Score"`
	System6Score Flex   `json:"system6Score"`
	System7Score Flex   `json:"system7Score"`
	System8Score Flex   `json:"system8Score"`
	TotalScore   Flex   `json:"totalScore"`
}

// SystemScores 按系统编号顺序返回分数
func (r BatchRow) SystemScores() [BatchSystemCount]Flex {
	return [BatchSystemCount]Flex{
		r.System1Score, r.System2Score, r.System3Score, r.System4Score,
		r.System5Score, r.System6Score, r.System7Score, r.System8Score,
	}
}

// ValidationResult 单行校验结果；有错误的行不提交，仅有警告的行照常提交
type ValidationResult struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// NewValidationResult 创建空结果
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

// AddError 追加阻断性错误
func (v *ValidationResult) AddError(issue Issue) {
	v.Errors = append(v.Errors, issue)
	v.IsValid = false
}

// AddWarning 追加非阻断警告
func (v *ValidationResult) AddWarning(issue Issue) {
	v.Warnings = append(v.Warnings, issue)
}

// HasCode 是否含有指定代码的错误
func (v ValidationResult) HasCode(code Code) bool {
	for _, it := range v.Errors {
		if it.Code == code {
			return true
		}
	}
	return false
}

// RowError 批次结果中的行错误
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// RowWarning 批次结果中的行警告
type RowWarning struct {
	Row     int    `json:"row"`
	Warning string `json:"warning"`
}

// ImportBatchResult 提交结果汇总
type ImportBatchResult struct {
	BatchID  string       `json:"batchId,omitempty"`
	Success  int          `json:"success"`
	Failed   int          `json:"failed"`
	Errors   []RowError   `json:"errors"`
	Warnings []RowWarning `json:"warnings,omitempty"`
}

// RowReport 校验模式下的单行输出
type RowReport struct {
	Row          int      `json:"row"`
	FacilityName string   `json:"facilityName"`
	FacilityID   int64    `json:"facilityId,omitempty"`
	State        string   `json:"state,omitempty"`
	City         string   `json:"city,omitempty"`
	Month        int      `json:"month"`
	Year         int      `json:"year"`
	TotalScore   float64  `json:"totalScore"`
	IsValid      bool     `json:"isValid"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ValidateReport 校验模式输出
type ValidateReport struct {
	Total   int         `json:"total"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
	Rows    []RowReport `json:"rows"`
}

// WorkbookOverrides 工作簿导入时优先于表内数据的字段
type WorkbookOverrides struct {
	FacilityName string `json:"facilityName" form:"facilityName"`
	Month        int    `json:"month" form:"month" validate:"omitempty,min=1,max=12"`
	Year         int    `json:"year" form:"year" validate:"omitempty,min=2000"`
}

// WorkbookInput 一个待导入的工作簿
type WorkbookInput struct {
	Name string
	// Data 为空时按 Path 打开文件
	Data      []byte
	Path      string
	Overrides WorkbookOverrides
}
