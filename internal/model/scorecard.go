package model

import "fmt"

// MatchMethod 评分项匹配方式
type MatchMethod string

const (
	MatchSimilarity MatchMethod = "similarity" // 文本相似度命中
	MatchPosition   MatchMethod = "position"   // 置信度不足，按行序兜底
)

// ResolvedItem 已匹配到标准条目的评分行
type ResolvedItem struct {
	ItemNumber      int         `json:"itemNumber"`
	CriteriaText    string      `json:"criteriaText"`
	MaxPoints       float64     `json:"maxPoints"`
	ChartsMet       float64     `json:"chartsMet"`
	SampleSize      float64     `json:"sampleSize"`
	PointsEarned    float64     `json:"pointsEarned"`
	MatchConfidence float64     `json:"matchConfidence"`
	MatchedTo       *string     `json:"matchedTo"` // 按行序兜底时为 nil
	MatchMethod     MatchMethod `json:"matchMethod"`
	InputType       InputType   `json:"inputType"`
	Notes           string      `json:"notes,omitempty"`
	SourceRow       int         `json:"sourceRow,omitempty"`
}

// SystemScore 单个系统的得分
type SystemScore struct {
	SystemNumber      int            `json:"systemNumber"`
	SystemName        string         `json:"systemName"`
	SheetName         string         `json:"sheetName,omitempty"`
	Items             []ResolvedItem `json:"items"`
	TotalPointsEarned float64        `json:"totalPointsEarned"`
}

// ParsedScorecard 流水线最终产物；校验后不再修改
type ParsedScorecard struct {
	ID                 string          `json:"id,omitempty"`
	Source             string          `json:"source,omitempty"`
	FacilityNameRaw    string          `json:"facilityNameRaw"`
	ResolvedFacilityID int64           `json:"resolvedFacilityId"`
	FacilityMatch      *MatchCandidate `json:"facilityMatch,omitempty"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	Systems            []SystemScore   `json:"systems"`
	TotalScore         float64         `json:"totalScore"`
	Sheets             []SheetMeta     `json:"-"`
}

// Key 返回去重键
func (p *ParsedScorecard) Key() ScorecardKey {
	return ScorecardKey{FacilityID: p.ResolvedFacilityID, Year: p.Year, Month: p.Month}
}

// ScorecardKey (facilityId, year, month) 去重键
type ScorecardKey struct {
	FacilityID int64
	Year       int
	Month      int
}

func (k ScorecardKey) String() string {
	return fmt.Sprintf("%d/%04d-%02d", k.FacilityID, k.Year, k.Month)
}

// KeySet 已存在记录的去重键集合，批次开始前一次性构建，之后只读
type KeySet map[ScorecardKey]struct{}

// NewKeySet 由键列表构建集合
func NewKeySet(keys []ScorecardKey) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Has 判断键是否存在
func (s KeySet) Has(k ScorecardKey) bool {
	_, ok := s[k]
	return ok
}
