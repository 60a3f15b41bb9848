package model

// CanonicalFacility 注册表中的规范机构（只读）
type CanonicalFacility struct {
	ID    int64  `json:"id" toml:"id"`
	Name  string `json:"name" toml:"name"`
	State string `json:"state" toml:"state"`
	City  string `json:"city" toml:"city"`
}

// MatchCandidate 模糊匹配候选；Score 是相似度，不是概率
type MatchCandidate struct {
	TargetID   int64   `json:"targetId"`
	TargetName string  `json:"targetName"`
	Score      float64 `json:"score"`
	Method     string  `json:"method,omitempty"`
}
