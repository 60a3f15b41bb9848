package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"systemscheck/internal/model"
)

// 匹配方式
const (
	MethodExact       = "exact"
	MethodCoreExact   = "core_exact"
	MethodContainment = "containment"
	MethodOverlap     = "token_overlap"
	MethodTypo        = "edit_distance"
)

const (
	scoreExact     = 1.0
	scoreCoreExact = 0.95
	// 非精确规则的分数上限，保证精确匹配是唯一最大值
	maxFuzzyScore = 0.9
	minCoreLen    = 4
	maxAlternates = 3
)

// ResolverOptions 机构解析参数
type ResolverOptions struct {
	Threshold       float64 // 最低接受分数
	TypoSimilarity  int     // 编辑距离相似度下限 (0-100)，0 表示关闭
	StrictAmbiguity bool    // 近似并列时直接报 AmbiguousMatch
	AmbiguityMargin float64 // 与最佳分数相差不超过该值视为近似并列
}

// DefaultResolverOptions 默认参数
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		Threshold:       0.5,
		TypoSimilarity:  85,
		StrictAmbiguity: false,
		AmbiguityMargin: 0.02,
	}
}

// Resolution 解析结果
type Resolution struct {
	Best         model.MatchCandidate   `json:"best"`
	Alternatives []model.MatchCandidate `json:"alternatives,omitempty"`
	Ambiguous    bool                   `json:"ambiguous"`
}

// FacilityResolver 将原始机构名解析为注册表中的规范机构
type FacilityResolver struct {
	registry *FacilityRegistry
	opts     ResolverOptions
}

// NewFacilityResolver 创建解析器
func NewFacilityResolver(registry *FacilityRegistry, opts ResolverOptions) *FacilityResolver {
	return &FacilityResolver{registry: registry, opts: opts}
}

// Resolve 对全部候选评分，取最高分；同分取最小 id。
// 低于阈值返回 FacilityNotFound；严格模式下近似并列返回 AmbiguousMatch。
func (r *FacilityResolver) Resolve(rawName string) (Resolution, error) {
	rawNorm := Normalize(rawName)
	if rawNorm == "" || r.registry == nil {
		return Resolution{}, notFound(rawName)
	}
	rawCore := r.registry.namer.CoreName(rawName)
	tokenSource := rawCore
	if tokenSource == "" {
		tokenSource = rawNorm
	}
	rawTokens := NewTokenSet(tokenSource)

	cands := make([]model.MatchCandidate, 0, 4)
	for _, e := range r.registry.entries {
		score, method := r.score(rawNorm, rawCore, rawTokens, e)
		if score <= 0 {
			continue
		}
		cands = append(cands, model.MatchCandidate{
			TargetID:   e.facility.ID,
			TargetName: e.facility.Name,
			Score:      score,
			Method:     method,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].TargetID < cands[j].TargetID
	})

	if len(cands) == 0 || cands[0].Score < r.opts.Threshold {
		return Resolution{}, notFound(rawName)
	}

	res := Resolution{Best: cands[0]}
	for _, c := range cands[1:] {
		if c.Score < r.opts.Threshold || len(res.Alternatives) >= maxAlternates {
			break
		}
		res.Alternatives = append(res.Alternatives, c)
	}
	if len(res.Alternatives) > 0 && res.Best.Score-res.Alternatives[0].Score <= r.opts.AmbiguityMargin+1e-9 {
		res.Ambiguous = true
		if r.opts.StrictAmbiguity {
			second := res.Alternatives[0]
			return res, model.NewError(model.CodeAmbiguousMatch, fmt.Sprintf(
				"Ambiguous facility match for %s: %s (%.2f) vs %s (%.2f)",
				rawName, res.Best.TargetName, res.Best.Score, second.TargetName, second.Score), nil)
		}
	}
	return res, nil
}

// score 对单个候选按规则优先级评分
func (r *FacilityResolver) score(rawNorm, rawCore string, rawTokens TokenSet, e registryEntry) (float64, string) {
	if rawNorm == e.norm {
		return scoreExact, MethodExact
	}
	coreOK := len(rawCore) >= minCoreLen && len(e.core) >= minCoreLen
	if coreOK && rawCore == e.core {
		return scoreCoreExact, MethodCoreExact
	}

	best, method := 0.0, ""
	if coreOK {
		shorter, longer := float64(len(rawCore)), float64(len(e.core))
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		ratio := shorter / longer
		switch {
		case strings.Contains(e.core, rawCore):
			best, method = 0.8+ratio*0.1, MethodContainment
		case strings.Contains(rawCore, e.core):
			best, method = 0.7+ratio*0.1, MethodContainment
		}
	}

	if ov := rawTokens.OverlapMin(e.tokens); ov >= 0.5 {
		if s := math.Min(ov, maxFuzzyScore); s > best {
			best, method = s, MethodOverlap
		}
	}

	if coreOK && r.opts.TypoSimilarity > 0 {
		if sim := EditSimilarity(rawCore, e.core); sim >= r.opts.TypoSimilarity {
			if s := math.Min(0.6+0.3*float64(sim)/100, maxFuzzyScore); s > best {
				best, method = s, MethodTypo
			}
		}
	}
	return best, method
}

func notFound(rawName string) error {
	return model.NewError(model.CodeFacilityNotFound, fmt.Sprintf("Facility not found: %s", rawName), nil)
}
