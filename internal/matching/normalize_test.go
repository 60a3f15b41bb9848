package matching

import (
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Colville   Health\tand Rehab ": "colville health and rehab",
		"Coeur d'Alene":                   "coeur dalene",
		"St. Maries - SNF":                "st maries snf",
		"Café  Ñandú":                     "cafe nandu",
		"!!!":                             "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Mt. Rainier Transitional Care Center",
		"  ＦＵＬＬ　ＷＩＤＴＨ  ",
		"Résumé -- Health & Rehabilitation of Cascadia",
		"",
		"a\n\nb\r\nc",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestCoreName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Colville Health and Rehabilitation of Cascadia": "colville",
		"Colville":                             "colville",
		"Mt. Rainier Transitional Care Center": "mount rainier",
		"St. Maries - SNF":                     "saint maries",
		"CDA Health & Rehabilitation":          "coeur dalene",
		"Health Center":                        "",
	}
	for in, want := range cases {
		if got := CoreName(in); got != want {
			t.Fatalf("CoreName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestVocabulary_Compile(t *testing.T) {
	t.Parallel()

	v := Vocabulary{
		Abbreviations: map[string]string{"ft": "fort"},
		Boilerplate:   []string{"Care", "Long-Term Care", "  "},
	}
	c := v.Compile()
	if c.suffix != nil {
		t.Fatalf("suffix pattern compiled without type suffixes")
	}
	if len(c.boilerplate) != 2 || c.boilerplate[0] != "longterm care" || c.boilerplate[1] != "care" {
		t.Fatalf("boilerplate=%q want longest first, normalized", c.boilerplate)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.CoreName("Ft. Steilacoom Long-Term Care"); got != "fort steilacoom" {
				t.Errorf("CoreName=%q want fort steilacoom", got)
			}
		}()
	}
	wg.Wait()
}

func TestFacilityRegistry_ReusesCompiledVocabulary(t *testing.T) {
	t.Parallel()

	reg := testRegistry()
	namer := reg.namer
	if namer == nil || namer.suffix == nil {
		t.Fatalf("registry vocabulary not compiled: %+v", namer)
	}
	r := NewFacilityResolver(reg, DefaultResolverOptions())
	for _, name := range []string{"Colville", "St. Maries - SNF", "Unknown Place"} {
		_, _ = r.Resolve(name)
	}
	if reg.namer != namer {
		t.Fatalf("resolve replaced the compiled vocabulary")
	}
}
