package validation

import (
	"strings"
	"testing"
	"time"

	"systemscheck/internal/calculator"
	"systemscheck/internal/matching"
	"systemscheck/internal/model"
)

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func testValidator(existing model.KeySet, strict bool) *Validator {
	reg := matching.NewFacilityRegistry([]model.CanonicalFacility{
		{ID: 1, Name: "Colville Health and Rehabilitation of Cascadia", State: "WA"},
		{ID: 2, Name: "Silverton Health", State: "OR"},
		{ID: 10, Name: "Valley View Health"},
		{ID: 11, Name: "Valley View Rehabilitation"},
	}, matching.DefaultVocabulary)
	ropts := matching.DefaultResolverOptions()
	ropts.StrictAmbiguity = strict
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	return New(matching.NewFacilityResolver(reg, ropts), existing, opts)
}

func batchRow(name string, month, year int, scores []float64, total model.Flex) model.BatchRow {
	var f [8]model.Flex
	for i, s := range scores {
		f[i] = model.FlexNumber(s)
	}
	return model.BatchRow{
		FacilityName: name,
		Month:        model.FlexNumber(float64(month)),
		Year:         model.FlexNumber(float64(year)),
		System1Score: f[0], System2Score: f[1], System3Score: f[2], System4Score: f[3],
		System5Score: f[4], System6Score: f[5], System7Score: f[6], System8Score: f[7],
		TotalScore: total,
	}
}

var goodScores = []float64{85, 90, 88, 92, 95, 87, 100, 91}

func hasMessage(issues []model.Issue, want string) bool {
	for _, it := range issues {
		if it.Message == want {
			return true
		}
	}
	return false
}

func TestValidateRow_TotalMatches(t *testing.T) {
	t.Parallel()

	out := testValidator(nil, false).ValidateRow(batchRow("Colville", 5, 2024, goodScores, model.FlexNumber(728)))
	if !out.Result.IsValid {
		t.Fatalf("expected valid, errors=%v", out.Result.Errors)
	}
	if out.CalculatedTotal != 728 {
		t.Fatalf("calculated=%v want 728", out.CalculatedTotal)
	}
	if out.FacilityID != 1 || out.FacilityMatch == nil || out.FacilityMatch.Score < 0.8 {
		t.Fatalf("facility=%d match=%+v", out.FacilityID, out.FacilityMatch)
	}
}

func TestValidateRow_TotalMismatch(t *testing.T) {
	t.Parallel()

	out := testValidator(nil, false).ValidateRow(batchRow("Colville", 5, 2024, goodScores, model.FlexNumber(700)))
	if out.Result.IsValid || !out.Result.HasCode(model.CodeTotalMismatch) {
		t.Fatalf("expected TotalMismatch, got %+v", out.Result)
	}
	if !hasMessage(out.Result.Errors, "Total score mismatch: provided 700, calculated 728") {
		t.Fatalf("errors=%v", out.Result.Errors)
	}
}

func TestValidateRow_ZeroToleranceIsExact(t *testing.T) {
	t.Parallel()

	v := testValidator(nil, false)
	v.opts.TotalTolerance = 0
	exact := v.ValidateRow(batchRow("Colville", 5, 2024, goodScores, model.FlexNumber(728)))
	if !exact.Result.IsValid {
		t.Fatalf("exact total rejected: %+v", exact.Result)
	}
	off := v.ValidateRow(batchRow("Colville", 5, 2024, goodScores, model.FlexNumber(728.05)))
	if off.Result.IsValid || !off.Result.HasCode(model.CodeTotalMismatch) {
		t.Fatalf("728.05 accepted with zero tolerance: %+v", off.Result)
	}

	opts := DefaultOptions()
	opts.TotalTolerance = 0
	if got := New(nil, nil, opts).opts.TotalTolerance; got != 0 {
		t.Fatalf("New replaced zero tolerance with %v", got)
	}
	opts.TotalTolerance = -1
	if got := New(nil, nil, opts).opts.TotalTolerance; got != 0.1 {
		t.Fatalf("negative tolerance=%v want default 0.1", got)
	}
}

func TestValidateRow_UnknownFacility(t *testing.T) {
	t.Parallel()

	out := testValidator(nil, false).ValidateRow(batchRow("Unknown Place", 5, 2024, goodScores, model.Flex{}))
	if out.Result.IsValid {
		t.Fatalf("expected invalid")
	}
	if !hasMessage(out.Result.Errors, "Facility not found: Unknown Place") || !out.Result.HasCode(model.CodeFacilityNotFound) {
		t.Fatalf("errors=%v", out.Result.Errors)
	}
	if out.FacilityID != 0 {
		t.Fatalf("facility id=%d want 0", out.FacilityID)
	}
}

func TestValidateRow_Dates(t *testing.T) {
	t.Parallel()

	v := testValidator(nil, false)
	cases := []struct {
		month, year int
		code        model.Code
	}{
		{13, 2024, model.CodeInvalidMonth},
		{0, 2024, model.CodeInvalidMonth},
		{5, 1999, model.CodeInvalidYear},
		{5, 2027, model.CodeInvalidYear},
		{10, 2026, model.CodeDateNotInPast},
		{12, 2026, model.CodeDateNotInPast},
	}
	for _, tc := range cases {
		out := v.ValidateRow(batchRow("Colville", tc.month, tc.year, goodScores, model.Flex{}))
		if !out.Result.HasCode(tc.code) {
			t.Fatalf("%d/%d: want %s, got %v", tc.month, tc.year, tc.code, out.Result.Errors)
		}
	}

	if out := v.ValidateRow(batchRow("Colville", 9, 2026, goodScores, model.Flex{})); !out.Result.IsValid {
		t.Fatalf("previous month should be valid: %v", out.Result.Errors)
	}
}

func TestValidateRow_StringInputs(t *testing.T) {
	t.Parallel()

	row := model.BatchRow{
		FacilityName: "Silverton Health",
		Month:        model.FlexString("5"),
		Year:         model.FlexString("2024"),
		System1Score: model.FlexString("85"),
		System2Score: model.FlexString("abc"),
		TotalScore:   model.FlexString(""),
	}
	out := testValidator(nil, false).ValidateRow(row)
	if !out.Result.IsValid {
		t.Fatalf("expected valid: %v", out.Result.Errors)
	}
	if out.Month != 5 || out.Year != 2024 || out.CalculatedTotal != 85 {
		t.Fatalf("month=%d year=%d total=%v", out.Month, out.Year, out.CalculatedTotal)
	}
	// system2 非数值 + system3..8 空
	if len(out.Result.Warnings) != 7 {
		t.Fatalf("warnings=%d want 7: %v", len(out.Result.Warnings), out.Result.Warnings)
	}

	bad := row
	bad.Month = model.FlexString("May")
	bad.Year = model.FlexString("twenty")
	out = testValidator(nil, false).ValidateRow(bad)
	if !out.Result.HasCode(model.CodeInvalidMonth) || !out.Result.HasCode(model.CodeInvalidYear) {
		t.Fatalf("errors=%v", out.Result.Errors)
	}
}

func TestValidateRow_ScoreOutOfRange(t *testing.T) {
	t.Parallel()

	scores := append([]float64(nil), goodScores...)
	scores[2] = 105
	scores[5] = -1
	out := testValidator(nil, false).ValidateRow(batchRow("Colville", 5, 2024, scores, model.Flex{}))
	n := 0
	for _, e := range out.Result.Errors {
		if e.Code == model.CodeScoreOutOfRange {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("ScoreOutOfRange errors=%d want 2: %v", n, out.Result.Errors)
	}
	if !strings.Contains(out.Result.Errors[0].Message, "System 3") {
		t.Fatalf("first error=%q", out.Result.Errors[0].Message)
	}
}

func TestValidateRow_Duplicate(t *testing.T) {
	t.Parallel()

	existing := model.NewKeySet([]model.ScorecardKey{{FacilityID: 1, Year: 2024, Month: 5}})
	v := testValidator(existing, false)
	if out := v.ValidateRow(batchRow("Colville", 5, 2024, goodScores, model.Flex{})); !out.Result.HasCode(model.CodeDuplicateScorecard) {
		t.Fatalf("expected duplicate: %v", out.Result.Errors)
	}
	if out := v.ValidateRow(batchRow("Colville", 6, 2024, goodScores, model.Flex{})); !out.Result.IsValid {
		t.Fatalf("different month should be valid: %v", out.Result.Errors)
	}
}

func TestValidateRow_Ambiguity(t *testing.T) {
	t.Parallel()

	out := testValidator(nil, false).ValidateRow(batchRow("Valley View", 5, 2024, goodScores, model.Flex{}))
	if !out.Result.IsValid || out.FacilityID != 10 {
		t.Fatalf("non-strict: valid=%v id=%d", out.Result.IsValid, out.FacilityID)
	}
	if len(out.Result.Warnings) != 1 || out.Result.Warnings[0].Code != model.CodeAmbiguousMatch {
		t.Fatalf("warnings=%v", out.Result.Warnings)
	}

	strict := testValidator(nil, true).ValidateRow(batchRow("Valley View", 5, 2024, goodScores, model.Flex{}))
	if strict.Result.IsValid || !strict.Result.HasCode(model.CodeAmbiguousMatch) {
		t.Fatalf("strict: %+v", strict.Result)
	}
}

func TestValidateScorecard(t *testing.T) {
	t.Parallel()

	card := &model.ParsedScorecard{
		FacilityNameRaw: "Silverton Health",
		Month:           3,
		Year:            2025,
		Systems: []model.SystemScore{
			{SystemNumber: 1, Items: []model.ResolvedItem{{MaxPoints: 20, ChartsMet: 2, SampleSize: 3}}},
			{SystemNumber: 3, Items: []model.ResolvedItem{{MaxPoints: 10, ChartsMet: 1, SampleSize: 1}}},
		},
	}
	calculator.Recompute(card)

	v := testValidator(nil, false)
	out := v.ValidateScorecard(card)
	if !out.Result.IsValid || out.FacilityID != 2 {
		t.Fatalf("valid=%v id=%d errors=%v", out.Result.IsValid, out.FacilityID, out.Result.Errors)
	}
	if out.CalculatedTotal != 23.33 {
		t.Fatalf("total=%v", out.CalculatedTotal)
	}

	card.TotalScore = 50
	if out := v.ValidateScorecard(card); !out.Result.HasCode(model.CodeTotalMismatch) {
		t.Fatalf("expected TotalMismatch: %v", out.Result.Errors)
	}

	card.TotalScore = 23.33
	card.Month = 0
	if out := v.ValidateScorecard(card); !out.Result.HasCode(model.CodeInvalidMonth) {
		t.Fatalf("expected InvalidMonth: %v", out.Result.Errors)
	}
}
