package matching

import (
	"errors"
	"testing"

	"systemscheck/internal/model"
)

func testRegistry(extra ...model.CanonicalFacility) *FacilityRegistry {
	facilities := []model.CanonicalFacility{
		{ID: 5, Name: "Silverton Health", State: "OR", City: "Silverton"},
		{ID: 4, Name: "Coeur d'Alene Health & Rehabilitation of Cascadia", State: "ID", City: "Coeur d'Alene"},
		{ID: 3, Name: "Clearwater Health & Rehabilitation of Cascadia", State: "ID", City: "Orofino"},
		{ID: 2, Name: "Mount Rainier Transitional Care Center", State: "WA", City: "Enumclaw"},
		{ID: 1, Name: "Colville Health and Rehabilitation of Cascadia", State: "WA", City: "Colville"},
	}
	return NewFacilityRegistry(append(facilities, extra...), DefaultVocabulary)
}

func TestResolve_Rules(t *testing.T) {
	t.Parallel()

	r := NewFacilityResolver(testRegistry(), DefaultResolverOptions())
	cases := []struct {
		raw      string
		wantID   int64
		minScore float64
		method   string
	}{
		{"Colville Health and Rehabilitation of Cascadia", 1, 1.0, MethodExact},
		{"COLVILLE HEALTH AND REHABILITATION OF CASCADIA", 1, 1.0, MethodExact},
		{"Colville Health & Rehabilitation of Cascadia", 1, 0.95, MethodCoreExact},
		{"Colville", 1, 0.8, MethodCoreExact},
		{"Mt Rainier", 2, 0.95, MethodCoreExact},
		{"CDA", 4, 0.95, MethodCoreExact},
		{"Colvile", 1, 0.8, MethodTypo},
		{"Clear", 3, 0.8, MethodContainment},
		{"Clearwater Rehab", 3, 0.9, MethodOverlap},
	}
	for _, tc := range cases {
		res, err := r.Resolve(tc.raw)
		if err != nil {
			t.Fatalf("Resolve(%q) err: %v", tc.raw, err)
		}
		if res.Best.TargetID != tc.wantID {
			t.Fatalf("Resolve(%q) id=%d want %d (%+v)", tc.raw, res.Best.TargetID, tc.wantID, res.Best)
		}
		if res.Best.Score < tc.minScore {
			t.Fatalf("Resolve(%q) score=%.3f want >= %.2f", tc.raw, res.Best.Score, tc.minScore)
		}
		if res.Best.Method != tc.method {
			t.Fatalf("Resolve(%q) method=%s want %s", tc.raw, res.Best.Method, tc.method)
		}
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	r := NewFacilityResolver(testRegistry(), DefaultResolverOptions())
	for _, raw := range []string{"Unknown Place", "Health Center", "", "   "} {
		_, err := r.Resolve(raw)
		if !errors.Is(err, model.ErrFacilityNotFound) {
			t.Fatalf("Resolve(%q) err=%v, want FacilityNotFound", raw, err)
		}
	}

	_, err := r.Resolve("Unknown Place")
	if got, want := err.Error(), "Facility not found: Unknown Place"; got != want {
		t.Fatalf("message=%q want %q", got, want)
	}
}

func TestResolve_ExactIsUniqueMaximum(t *testing.T) {
	t.Parallel()

	r := NewFacilityResolver(testRegistry(model.CanonicalFacility{ID: 20, Name: "Colville"}), DefaultResolverOptions())
	res, err := r.Resolve("Colville")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if res.Best.TargetID != 20 || res.Best.Score != 1.0 {
		t.Fatalf("best=%+v, want exact id 20", res.Best)
	}
	for _, alt := range res.Alternatives {
		if alt.Score >= res.Best.Score {
			t.Fatalf("alternative %+v not below exact match", alt)
		}
	}
	if res.Ambiguous {
		t.Fatalf("exact match must not be reported ambiguous")
	}
}

func TestResolve_TieBreaksOnLowestID(t *testing.T) {
	t.Parallel()

	tied := []model.CanonicalFacility{
		{ID: 11, Name: "Valley View Rehabilitation"},
		{ID: 10, Name: "Valley View Health"},
	}
	r := NewFacilityResolver(NewFacilityRegistry(tied, DefaultVocabulary), DefaultResolverOptions())
	for i := 0; i < 5; i++ {
		res, err := r.Resolve("Valley View")
		if err != nil {
			t.Fatalf("Resolve err: %v", err)
		}
		if res.Best.TargetID != 10 {
			t.Fatalf("best id=%d want 10", res.Best.TargetID)
		}
		if !res.Ambiguous {
			t.Fatalf("expected ambiguous flag for tied candidates")
		}
	}

	opts := DefaultResolverOptions()
	opts.StrictAmbiguity = true
	strict := NewFacilityResolver(NewFacilityRegistry(tied, DefaultVocabulary), opts)
	if _, err := strict.Resolve("Valley View"); !errors.Is(err, model.ErrAmbiguousMatch) {
		t.Fatalf("strict err=%v, want AmbiguousMatch", err)
	}
}

func TestRegistry_SortedByID(t *testing.T) {
	t.Parallel()

	reg := testRegistry()
	for i := 1; i < len(reg.entries); i++ {
		if reg.entries[i-1].facility.ID >= reg.entries[i].facility.ID {
			t.Fatalf("entries not sorted at %d", i)
		}
	}
	if f, ok := reg.Lookup(3); !ok || f.City != "Orofino" {
		t.Fatalf("Lookup(3)=%+v,%v", f, ok)
	}
}
