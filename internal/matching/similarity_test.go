package matching

import "testing"

func TestEditSimilarity(t *testing.T) {
	t.Parallel()

	if got := EditSimilarity("colville", "colvile"); got != 88 {
		t.Fatalf("EditSimilarity=%d want 88", got)
	}
	if got := EditSimilarity("", ""); got != 100 {
		t.Fatalf("EditSimilarity(empty)=%d want 100", got)
	}
	if got := EditSimilarity("abc", "xyz"); got != 0 {
		t.Fatalf("EditSimilarity(disjoint)=%d want 0", got)
	}
	// kitten→sitting 距离 3，长度 7
	if got := EditSimilarity("kitten", "sitting"); got != 57 {
		t.Fatalf("EditSimilarity(kitten,sitting)=%d want 57", got)
	}
	// 多字节字符按 rune 计：一处替换，长度 4
	if got := EditSimilarity("café", "cafe"); got != 75 {
		t.Fatalf("EditSimilarity(café,cafe)=%d want 75", got)
	}
}

func TestTokenOverlap_EmptyIsZero(t *testing.T) {
	t.Parallel()

	if got := OverlapMin("", "colville health"); got != 0 {
		t.Fatalf("OverlapMin with empty=%v", got)
	}
	// token 长度 <= 2 不参与
	if got := Jaccard("a an to", "a an to"); got != 0 {
		t.Fatalf("Jaccard of short tokens=%v", got)
	}
}

func TestTokenOverlap_Symmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"resident assessed for change in condition", "change of condition assessed timely"},
		{"colville", "colville health rehabilitation"},
		{"falls care plan updated", "care plan reviewed after fall"},
	}
	for _, p := range pairs {
		if a, b := Jaccard(p[0], p[1]), Jaccard(p[1], p[0]); a != b {
			t.Fatalf("Jaccard not symmetric for %q/%q: %v vs %v", p[0], p[1], a, b)
		}
		if a, b := OverlapMin(p[0], p[1]), OverlapMin(p[1], p[0]); a != b {
			t.Fatalf("OverlapMin not symmetric for %q/%q: %v vs %v", p[0], p[1], a, b)
		}
	}
}

func TestOverlapMin_Containment(t *testing.T) {
	t.Parallel()

	if got := OverlapMin("colville", "colville health rehabilitation"); got != 1 {
		t.Fatalf("OverlapMin=%v want 1", got)
	}
	if got := Jaccard("colville", "colville health rehabilitation"); got >= 0.5 {
		t.Fatalf("Jaccard=%v should penalize asymmetric containment", got)
	}
}
