// Package calculator 评分计算：单项得分、系统合计与评分卡总分。
// 合计值总是由明细重新计算，不信任表格或历史数据中的合计。
package calculator

import (
	"math"

	"systemscheck/internal/model"
)

// Round2 四舍五入到 2 位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PointsForItem 单项得分 = maxPoints / sampleSize * chartsMet，保留 2 位小数。
// sampleSize <= 0 时得 0 分；chartsMet 截断到 [0, sampleSize]，保证不超过满分。
func PointsForItem(maxPoints, chartsMet, sampleSize float64) float64 {
	if sampleSize <= 0 || maxPoints <= 0 || math.IsNaN(chartsMet) {
		return 0
	}
	met := math.Max(0, math.Min(chartsMet, sampleSize))
	points := Round2(maxPoints / sampleSize * met)
	return math.Min(points, maxPoints)
}

// SystemTotal 系统合计
func SystemTotal(items []model.ResolvedItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.PointsEarned
	}
	return Round2(sum)
}

// ScorecardTotal 评分卡总分
func ScorecardTotal(systems []model.SystemScore) float64 {
	var sum float64
	for _, s := range systems {
		sum += s.TotalPointsEarned
	}
	return Round2(sum)
}

// SumScores 批量导入行的系统分数合计
func SumScores(scores []float64) float64 {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum)
}

// Recompute 按明细重新计算评分卡的单项得分、系统合计与总分（原地修改）
func Recompute(card *model.ParsedScorecard) {
	for si := range card.Systems {
		sys := &card.Systems[si]
		for ii := range sys.Items {
			it := &sys.Items[ii]
			it.PointsEarned = PointsForItem(it.MaxPoints, it.ChartsMet, it.SampleSize)
		}
		sys.TotalPointsEarned = SystemTotal(sys.Items)
	}
	card.TotalScore = ScorecardTotal(card.Systems)
}

// Totals 只重新汇总合计，不改动单项得分
func Totals(card *model.ParsedScorecard) (systems []float64, total float64) {
	systems = make([]float64, len(card.Systems))
	for i, s := range card.Systems {
		systems[i] = SystemTotal(s.Items)
		total += systems[i]
	}
	return systems, Round2(total)
}
