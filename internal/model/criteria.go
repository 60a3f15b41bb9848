package model

import "fmt"

// InputType 评分项的输入类型
type InputType string

const (
	InputBinary InputType = "binary"
	InputSample InputType = "sample"
)

// CriteriaItem 审核标准条目（由外部目录提供，只读）
type CriteriaItem struct {
	SystemNumber int       `json:"systemNumber" toml:"system"`
	ItemNumber   int       `json:"itemNumber" toml:"item"`
	Text         string    `json:"text" toml:"text"`
	MaxPoints    float64   `json:"maxPoints" toml:"max_points"`
	SampleSize   int       `json:"sampleSize" toml:"sample_size"`
	Multiplier   float64   `json:"multiplier" toml:"multiplier"`
	InputType    InputType `json:"inputType" toml:"input_type"`
}

// System 临床审核系统
type System struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

const (
	// ScoredSystemCount 工作簿中逐项评分的系统数
	ScoredSystemCount = 7
	// BatchSystemCount 批量导入行携带的系统分数个数
	BatchSystemCount = 8
	// SystemMaxPoints 每个系统满分
	SystemMaxPoints = 100.0
)

// Systems 系统定义，按编号排序
var Systems = []System{
	{Number: 1, Name: "Change of Condition"},
	{Number: 2, Name: "Accidents, Falls & Incidents"},
	{Number: 3, Name: "Skin Integrity"},
	{Number: 4, Name: "Medication Management & Weight Loss"},
	{Number: 5, Name: "Infection Control"},
	{Number: 6, Name: "Transfer & Discharge"},
	{Number: 7, Name: "Abuse, Self-Report & Grievances"},
	{Number: 8, Name: "Observations & Interviews"},
}

// SystemName 返回系统名称
func SystemName(number int) string {
	for _, s := range Systems {
		if s.Number == number {
			return s.Name
		}
	}
	return fmt.Sprintf("System %d", number)
}
