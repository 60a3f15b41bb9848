package matching

import (
	"testing"

	"systemscheck/internal/model"
)

func testCatalog(t *testing.T) *CriteriaCatalog {
	t.Helper()

	c, err := NewCriteriaCatalog([]model.CriteriaItem{
		{SystemNumber: 1, ItemNumber: 3, Text: "Family or representative notified of change", MaxPoints: 10, SampleSize: 3},
		{SystemNumber: 1, ItemNumber: 1, Text: "Change of condition identified and documented in the clinical record", MaxPoints: 20, SampleSize: 3},
		{SystemNumber: 1, ItemNumber: 2, Text: "Physician notified of change of condition timely", MaxPoints: 20, SampleSize: 3},
		{SystemNumber: 2, ItemNumber: 1, Text: "Fall risk assessment completed on admission", MaxPoints: 15, SampleSize: 3},
	})
	if err != nil {
		t.Fatalf("NewCriteriaCatalog: %v", err)
	}
	return c
}

func TestItemMatcher_Similarity(t *testing.T) {
	t.Parallel()

	m := NewItemMatcher(testCatalog(t), DefaultItemThreshold)
	got := m.Match("Physician notified of the change of condition timely", 1, 0)
	if !got.Found || got.Item.ItemNumber != 2 {
		t.Fatalf("match=%+v, want item 2", got)
	}
	if got.Method != model.MatchSimilarity {
		t.Fatalf("method=%s", got.Method)
	}
	if got.Confidence < 0.8 {
		t.Fatalf("confidence=%.2f", got.Confidence)
	}
}

func TestItemMatcher_PositionalFallback(t *testing.T) {
	t.Parallel()

	m := NewItemMatcher(testCatalog(t), DefaultItemThreshold)
	got := m.Match("Something unrelated entirely", 1, 2)
	if !got.Found || got.Item.ItemNumber != 3 {
		t.Fatalf("match=%+v, want positional item 3", got)
	}
	if got.Method != model.MatchPosition {
		t.Fatalf("method=%s want position", got.Method)
	}
	if got.Confidence >= DefaultItemThreshold {
		t.Fatalf("confidence=%.2f should stay below threshold", got.Confidence)
	}

	if out := m.Match("zzz", 1, 5); out.Found {
		t.Fatalf("position beyond catalog should not match: %+v", out)
	}
	if out := m.Match("Fall risk assessment completed on admission", 7, 0); out.Found {
		t.Fatalf("unknown system should not match: %+v", out)
	}
}

func TestCriteriaCatalog_Validation(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	items := c.Items(1)
	if len(items) != 3 || items[0].ItemNumber != 1 || items[2].ItemNumber != 3 {
		t.Fatalf("items not ordered: %+v", items)
	}
	if items[0].InputType != model.InputSample {
		t.Fatalf("default input type=%q", items[0].InputType)
	}

	if _, err := NewCriteriaCatalog([]model.CriteriaItem{{SystemNumber: 9, ItemNumber: 1}}); err == nil {
		t.Fatalf("expected error for system 9")
	}
	dup := []model.CriteriaItem{{SystemNumber: 1, ItemNumber: 1}, {SystemNumber: 1, ItemNumber: 1}}
	if _, err := NewCriteriaCatalog(dup); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
