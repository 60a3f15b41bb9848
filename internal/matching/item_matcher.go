package matching

import (
	"systemscheck/internal/model"
)

// DefaultItemThreshold 相似度匹配的最低分
const DefaultItemThreshold = 0.5

// ItemMatch 条目匹配结果。Best/Confidence 是相似度最高的条目及其分数；
// Item/Method 是最终采用的条目及方式，二者在按行序兜底时可能不同。
type ItemMatch struct {
	Item       model.CriteriaItem
	Found      bool
	Method     model.MatchMethod
	Best       *model.CriteriaItem
	Confidence float64
}

// ItemMatcher 将表格行文本匹配到系统的标准条目
type ItemMatcher struct {
	catalog   *CriteriaCatalog
	threshold float64
}

// NewItemMatcher 创建条目匹配器
func NewItemMatcher(catalog *CriteriaCatalog, threshold float64) *ItemMatcher {
	if threshold <= 0 {
		threshold = DefaultItemThreshold
	}
	return &ItemMatcher{catalog: catalog, threshold: threshold}
}

// Match 计算与该系统全部条目的 Jaccard 相似度，取最高者；
// 低于阈值时按行在系统内的序号取条目。
func (m *ItemMatcher) Match(categoryText string, systemNumber, position int) ItemMatch {
	entries := m.catalog.systems[systemNumber]
	tokens := NewTokenSet(Normalize(categoryText))

	var out ItemMatch
	bestIdx := -1
	for i, e := range entries {
		score := tokens.Jaccard(e.tokens)
		if bestIdx < 0 || score > out.Confidence {
			bestIdx = i
			out.Confidence = score
		}
	}
	if bestIdx >= 0 {
		best := entries[bestIdx].item
		out.Best = &best
	}

	if out.Best != nil && out.Confidence >= m.threshold {
		out.Item = *out.Best
		out.Found = true
		out.Method = model.MatchSimilarity
		return out
	}

	if position >= 0 && position < len(entries) {
		out.Item = entries[position].item
		out.Found = true
		out.Method = model.MatchPosition
	}
	return out
}
