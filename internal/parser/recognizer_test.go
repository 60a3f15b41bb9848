package parser

import (
	"testing"

	"systemscheck/internal/model"
)

func TestSheetRecognizer_RecognizeSystems(t *testing.T) {
	t.Parallel()

	sheets := []string{
		"Overview",
		"1. Change of Condition",
		"Accidents Falls",
		"Skin Integrity",
		"Med Mgmt & Weight Loss",
		"Infection Control",
		"Transfer-Discharge",
		"Abuse & Grievances",
		"Notes",
	}
	r := NewSheetRecognizer()
	found, warnings := r.RecognizeSystems(sheets)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	want := map[int]string{
		1: "1. Change of Condition",
		2: "Accidents Falls",
		3: "Skin Integrity",
		4: "Med Mgmt & Weight Loss",
		5: "Infection Control",
		6: "Transfer-Discharge",
		7: "Abuse & Grievances",
	}
	if len(found) != len(want) {
		t.Fatalf("found %d systems, want %d", len(found), len(want))
	}
	for _, rec := range found {
		if want[rec.SystemNumber] != rec.SheetName {
			t.Fatalf("system %d -> %q want %q", rec.SystemNumber, rec.SheetName, want[rec.SystemNumber])
		}
	}
}

func TestSheetRecognizer_MissingSystemWarns(t *testing.T) {
	t.Parallel()

	found, warnings := NewSheetRecognizer().RecognizeSystems([]string{"Summary", "System 1", "System 3"})
	if len(found) != 2 {
		t.Fatalf("found=%v", found)
	}
	if len(warnings) != 5 {
		t.Fatalf("warnings=%d want 5", len(warnings))
	}
	for _, w := range warnings {
		if w.Code != model.CodeSheetNotFound {
			t.Fatalf("warning code=%s", w.Code)
		}
	}
}

func TestSheetRecognizer_ClaimedSheetsExcluded(t *testing.T) {
	t.Parallel()

	// "Falls & Incidents" 先被系统 2 占用后，不会再被其他系统匹配
	found, _ := NewSheetRecognizer().RecognizeSystems([]string{"Change of Condition", "Falls & Incidents"})
	seen := map[string]int{}
	for _, rec := range found {
		seen[rec.SheetName]++
	}
	for name, n := range seen {
		if n > 1 {
			t.Fatalf("sheet %q claimed %d times", name, n)
		}
	}

	if name, ok := NewSheetRecognizer().FindOverview([]string{"1. COC", "Facility Info"}); !ok || name != "Facility Info" {
		t.Fatalf("FindOverview=%q,%v", name, ok)
	}
}
