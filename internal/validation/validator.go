// Package validation 导入前的业务规则校验。校验是纯函数：不读写存储，
// 可用于仅校验（dry-run）流程。
package validation

import (
	"errors"
	"math"
	"time"

	"systemscheck/internal/calculator"
	"systemscheck/internal/matching"
	"systemscheck/internal/model"
)

// Options 校验参数
type Options struct {
	MinYear        int
	TotalTolerance float64
	Now            func() time.Time
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{MinYear: 2000, TotalTolerance: 0.1, Now: time.Now}
}

// Outcome 校验结果，以及校验过程中得到的规范值
type Outcome struct {
	Result           model.ValidationResult
	FacilityID       int64
	FacilityMatch    *model.MatchCandidate
	Month            int
	Year             int
	Scores           []float64
	CalculatedTotal  float64
	ProvidedTotal    float64
	HasProvidedTotal bool
}

// Key 去重键；机构未解析时 FacilityID 为 0
func (o Outcome) Key() model.ScorecardKey {
	return model.ScorecardKey{FacilityID: o.FacilityID, Year: o.Year, Month: o.Month}
}

// Validator 校验器。resolver 与 existing 在批次开始时构建，之后只读，可并发使用。
type Validator struct {
	resolver *matching.FacilityResolver
	existing model.KeySet
	opts     Options
}

// New 创建校验器
func New(resolver *matching.FacilityResolver, existing model.KeySet, opts Options) *Validator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinYear <= 0 {
		opts.MinYear = DefaultOptions().MinYear
	}
	// 0 表示要求精确相等，只有负值回落到默认
	if opts.TotalTolerance < 0 {
		opts.TotalTolerance = DefaultOptions().TotalTolerance
	}
	if existing == nil {
		existing = model.KeySet{}
	}
	return &Validator{resolver: resolver, existing: existing, opts: opts}
}

// ValidateRow 校验批量导入行：字段可能是字符串或数字，先转换再校验
func (v *Validator) ValidateRow(row model.BatchRow) Outcome {
	out := Outcome{Result: model.NewValidationResult()}
	res := &out.Result

	v.checkFacility(row.FacilityName, &out)

	monthOK, yearOK := false, false
	if m, ok := row.Month.Int(); ok {
		out.Month = m
		monthOK = v.checkMonth(m, res)
	} else {
		res.AddError(model.NewIssue(model.CodeInvalidMonth, "Invalid month: %s", row.Month.String()))
	}
	if y, ok := row.Year.Int(); ok {
		out.Year = y
		yearOK = v.checkYear(y, res)
	} else {
		res.AddError(model.NewIssue(model.CodeInvalidYear, "Invalid year: %s", row.Year.String()))
	}
	if monthOK && yearOK {
		v.checkPast(out.Year, out.Month, res)
	}
	v.checkDuplicate(&out)

	scores := row.SystemScores()
	out.Scores = make([]float64, len(scores))
	for i, s := range scores {
		val, ok := s.Float()
		if !ok {
			res.AddWarning(model.NewIssue(model.CodeNonNumericScore,
				"System %d score is not numeric: %q (treated as 0)", i+1, s.String()))
			continue
		}
		out.Scores[i] = val
	}
	v.checkScoreRange(out.Scores, nil, res)
	out.CalculatedTotal = calculator.SumScores(out.Scores)

	if !row.TotalScore.IsBlank() {
		if total, ok := row.TotalScore.Float(); ok {
			out.ProvidedTotal, out.HasProvidedTotal = total, true
		} else {
			res.AddWarning(model.NewIssue(model.CodeNonNumericScore,
				"Total score is not numeric: %q (check skipped)", row.TotalScore.String()))
		}
	}
	v.checkTotal(&out)
	return out
}

// ValidateScorecard 校验由工作簿组装的评分卡：合计按明细重新汇总后与卡上总分比较
func (v *Validator) ValidateScorecard(card *model.ParsedScorecard) Outcome {
	out := Outcome{Result: model.NewValidationResult(), Month: card.Month, Year: card.Year}
	res := &out.Result

	v.checkFacility(card.FacilityNameRaw, &out)
	monthOK := v.checkMonth(card.Month, res)
	yearOK := v.checkYear(card.Year, res)
	if monthOK && yearOK {
		v.checkPast(card.Year, card.Month, res)
	}
	v.checkDuplicate(&out)

	systems, total := calculator.Totals(card)
	numbers := make([]int, len(card.Systems))
	for i, s := range card.Systems {
		numbers[i] = s.SystemNumber
	}
	out.Scores = systems
	v.checkScoreRange(systems, numbers, res)
	out.CalculatedTotal = total
	out.ProvidedTotal, out.HasProvidedTotal = card.TotalScore, true
	v.checkTotal(&out)
	return out
}

func (v *Validator) checkFacility(name string, out *Outcome) {
	res := &out.Result
	if v.resolver == nil {
		res.AddError(model.NewIssue(model.CodeFacilityNotFound, "Facility not found: %s", name))
		return
	}
	resolution, err := v.resolver.Resolve(name)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrFacilityNotFound), errors.Is(err, model.ErrAmbiguousMatch):
		res.AddError(model.Issue{Code: model.CodeOf(err), Message: err.Error()})
		return
	default:
		res.AddError(model.NewIssue(model.CodeFacilityNotFound, "Facility not found: %s", name))
		return
	}
	best := resolution.Best
	out.FacilityID = best.TargetID
	out.FacilityMatch = &best
	if resolution.Ambiguous {
		alt := resolution.Alternatives[0]
		res.AddWarning(model.NewIssue(model.CodeAmbiguousMatch,
			"Ambiguous facility match for %s: %s (%.2f) vs %s (%.2f)",
			name, best.TargetName, best.Score, alt.TargetName, alt.Score))
	}
}

func (v *Validator) checkMonth(month int, res *model.ValidationResult) bool {
	if month < 1 || month > 12 {
		res.AddError(model.NewIssue(model.CodeInvalidMonth, "Invalid month: %d", month))
		return false
	}
	return true
}

func (v *Validator) checkYear(year int, res *model.ValidationResult) bool {
	if year < v.opts.MinYear || year > v.opts.Now().Year() {
		res.AddError(model.NewIssue(model.CodeInvalidYear, "Invalid year: %d", year))
		return false
	}
	return true
}

// checkPast 评分卡日期（当月 1 日）须早于本月 1 日
func (v *Validator) checkPast(year, month int, res *model.ValidationResult) {
	now := v.opts.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	date := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	if !date.Before(firstOfMonth) {
		res.AddError(model.NewIssue(model.CodeDateNotInPast,
			"Scorecard date must be before the current month: %04d-%02d", year, month))
	}
}

func (v *Validator) checkDuplicate(out *Outcome) {
	if out.FacilityID == 0 || out.Month == 0 || out.Year == 0 {
		return
	}
	if v.existing.Has(out.Key()) {
		out.Result.AddError(model.NewIssue(model.CodeDuplicateScorecard,
			"Scorecard already exists for facility %d, %04d-%02d", out.FacilityID, out.Year, out.Month))
	}
}

// checkScoreRange numbers 为空时按下标推断系统编号
func (v *Validator) checkScoreRange(scores []float64, numbers []int, res *model.ValidationResult) {
	for i, s := range scores {
		if s < 0 || s > model.SystemMaxPoints {
			number := i + 1
			if i < len(numbers) {
				number = numbers[i]
			}
			res.AddError(model.NewIssue(model.CodeScoreOutOfRange,
				"System %d score out of range: %v (must be 0-100)", number, s))
		}
	}
}

func (v *Validator) checkTotal(out *Outcome) {
	if !out.HasProvidedTotal {
		return
	}
	if math.Abs(out.CalculatedTotal-out.ProvidedTotal) > v.opts.TotalTolerance+1e-9 {
		out.Result.AddError(model.NewIssue(model.CodeTotalMismatch,
			"Total score mismatch: provided %v, calculated %v", out.ProvidedTotal, out.CalculatedTotal))
	}
}
