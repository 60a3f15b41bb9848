package matching

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minTokenLen 参与重叠计算的最短 token 长度（不含）
const minTokenLen = 2

// EditSimilarity 编辑距离相似度，取值 [0,100]；距离按 rune 计，以较长串的 rune 数归一
func EditSimilarity(a, b string) int {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round((1 - float64(d)/float64(longest)) * 100))
}

// TokenSet 规范化文本的 token 集合（只保留长度 > 2 的 token）
type TokenSet map[string]struct{}

// NewTokenSet 由已规范化的文本构建 token 集合
func NewTokenSet(normalized string) TokenSet {
	set := make(TokenSet)
	for _, tok := range strings.Fields(normalized) {
		if utf8.RuneCountInString(tok) > minTokenLen {
			set[tok] = struct{}{}
		}
	}
	return set
}

func (s TokenSet) intersect(other TokenSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			n++
		}
	}
	return n
}

// OverlapMin |A∩B| / min(|A|,|B|)，用于短文本（机构名）
func (s TokenSet) OverlapMin(other TokenSet) float64 {
	if len(s) == 0 || len(other) == 0 {
		return 0
	}
	return float64(s.intersect(other)) / float64(min(len(s), len(other)))
}

// Jaccard |A∩B| / |A∪B|，用于长文本（审核条目）
func (s TokenSet) Jaccard(other TokenSet) float64 {
	if len(s) == 0 || len(other) == 0 {
		return 0
	}
	inter := s.intersect(other)
	return float64(inter) / float64(len(s)+len(other)-inter)
}

// OverlapMin 两个已规范化文本的最小集重叠度
func OverlapMin(a, b string) float64 {
	return NewTokenSet(a).OverlapMin(NewTokenSet(b))
}

// Jaccard 两个已规范化文本的 Jaccard 相似度
func Jaccard(a, b string) float64 {
	return NewTokenSet(a).Jaccard(NewTokenSet(b))
}
