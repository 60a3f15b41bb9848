package calculator

import (
	"testing"

	"systemscheck/internal/model"
)

func TestPointsForItem(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name             string
		max, met, sample float64
		want             float64
	}{
		{"third of sample", 20, 2, 3, 13.33},
		{"full marks", 20, 3, 3, 20},
		{"binary yes", 5, 1, 1, 5},
		{"binary no", 5, 0, 1, 0},
		{"no sample", 20, 3, 0, 0},
		{"negative sample", 20, 3, -1, 0},
		{"met clamped to sample", 10, 7, 3, 10},
		{"negative met", 10, -2, 3, 0},
	}
	for _, tc := range cases {
		if got := PointsForItem(tc.max, tc.met, tc.sample); got != tc.want {
			t.Fatalf("%s: PointsForItem(%v,%v,%v)=%v want %v", tc.name, tc.max, tc.met, tc.sample, got, tc.want)
		}
	}
}

func TestPointsForItem_Bounds(t *testing.T) {
	t.Parallel()

	for _, m := range []float64{1, 3.5, 7, 10, 20, 33} {
		for s := 1.0; s <= 12; s++ {
			for c := 0.0; c <= s+2; c++ {
				got := PointsForItem(m, c, s)
				if got < 0 || got > m {
					t.Fatalf("PointsForItem(%v,%v,%v)=%v out of [0,%v]", m, c, s, got, m)
				}
			}
			if got := PointsForItem(m, 5, 0); got != 0 {
				t.Fatalf("sample 0 must yield 0, got %v", got)
			}
		}
	}
}

func sampleCard() *model.ParsedScorecard {
	return &model.ParsedScorecard{
		Systems: []model.SystemScore{
			{SystemNumber: 1, Items: []model.ResolvedItem{
				{ItemNumber: 1, MaxPoints: 20, ChartsMet: 2, SampleSize: 3},
				{ItemNumber: 2, MaxPoints: 20, ChartsMet: 1, SampleSize: 3},
				{ItemNumber: 3, MaxPoints: 10, ChartsMet: 1, SampleSize: 1},
			}},
			{SystemNumber: 2, Items: []model.ResolvedItem{
				{ItemNumber: 1, MaxPoints: 15, ChartsMet: 2, SampleSize: 3},
				{ItemNumber: 2, MaxPoints: 7, ChartsMet: 1, SampleSize: 3},
			}},
		},
	}
}

func TestRecompute(t *testing.T) {
	t.Parallel()

	card := sampleCard()
	Recompute(card)

	if got := card.Systems[0].TotalPointsEarned; got != 30 {
		t.Fatalf("system 1 total=%v want 30", got)
	}
	if got := card.Systems[1].TotalPointsEarned; got != 12.33 {
		t.Fatalf("system 2 total=%v want 12.33", got)
	}
	if card.TotalScore != 42.33 {
		t.Fatalf("total=%v want 42.33", card.TotalScore)
	}
}

func TestTotals_Idempotent(t *testing.T) {
	t.Parallel()

	card := sampleCard()
	Recompute(card)
	systems, total := Totals(card)
	for i, s := range card.Systems {
		if systems[i] != s.TotalPointsEarned {
			t.Fatalf("system %d re-sum=%v stored=%v", s.SystemNumber, systems[i], s.TotalPointsEarned)
		}
	}
	if total != card.TotalScore {
		t.Fatalf("re-sum total=%v stored=%v", total, card.TotalScore)
	}

	before := card.TotalScore
	Recompute(card)
	if card.TotalScore != before {
		t.Fatalf("second Recompute changed total %v -> %v", before, card.TotalScore)
	}
}

func TestSumScores(t *testing.T) {
	t.Parallel()

	if got := SumScores([]float64{85, 90, 88, 92, 95, 87, 100, 91}); got != 728 {
		t.Fatalf("SumScores=%v want 728", got)
	}
}
