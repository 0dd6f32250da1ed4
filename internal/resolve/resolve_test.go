package resolve

import (
	"reflect"
	"testing"

	"dynasty-gm-mcp/internal/grid"
)

func roster(names ...string) []grid.PlayerRecord {
	out := make([]grid.PlayerRecord, 0, len(names))
	for i, n := range names {
		out = append(out, grid.PlayerRecord{Name: n, Row: i + 2, Col: 1})
	}
	return out
}

// ---------------------------------------------------------------------------
// Exact stage
// ---------------------------------------------------------------------------

func TestResolve_ExactCaseInsensitive(t *testing.T) {
	r := New()
	out := r.Resolve("  zach neto ", roster("Zach Neto", "Zach Eflin"))

	if !out.Resolved {
		t.Fatal("exact name should resolve")
	}
	if out.Record.Name != "Zach Neto" {
		t.Errorf("resolved to %q, want Zach Neto", out.Record.Name)
	}
	if out.Method != MethodExact {
		t.Errorf("method = %q, want exact", out.Method)
	}
}

// ---------------------------------------------------------------------------
// Fuzzy stage
// ---------------------------------------------------------------------------

func TestResolve_FuzzyMisspelling(t *testing.T) {
	r := New()
	out := r.Resolve("Ronald Acuna", roster("Ronald Acuna Jr.", "Dylan Crews"))

	if !out.Resolved {
		t.Fatal("close misspelling should resolve")
	}
	if out.Record.Name != "Ronald Acuna Jr." {
		t.Errorf("resolved to %q, want Ronald Acuna Jr.", out.Record.Name)
	}
	if out.Method != MethodFuzzy {
		t.Errorf("method = %q, want fuzzy", out.Method)
	}
}

func TestResolve_BelowThresholdIsNotFound(t *testing.T) {
	r := New()
	out := r.Resolve("Greg Nonexistent", roster("Zach Neto", "Zach Eflin"))

	if out.Resolved {
		t.Errorf("dissimilar token resolved to %q; must be not found", out.Record.Name)
	}
	if out.Input != "Greg Nonexistent" {
		t.Errorf("outcome lost the original input: %q", out.Input)
	}
}

func TestResolve_AmbiguousTieIsNotFound(t *testing.T) {
	r := New()
	out := r.Resolve("Player X", roster("Player Xa", "Player Xb"))

	if out.Resolved {
		t.Errorf("ambiguous token resolved to %q; must be rejected", out.Record.Name)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("expected both near-miss candidates, got %v", out.Candidates)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := New()
	team := roster("Zach Neto", "Zach Eflin", "Juan Soto")

	first := r.Resolve("Zach Netoo", team)
	for i := 0; i < 5; i++ {
		if got := r.Resolve("Zach Netoo", team); !reflect.DeepEqual(got, first) {
			t.Fatalf("resolution changed between calls: %+v vs %+v", got, first)
		}
	}
}

// ---------------------------------------------------------------------------
// Initial+surname stage
// ---------------------------------------------------------------------------

func TestResolve_InitialExpansion(t *testing.T) {
	r := New()
	out := r.Resolve("Z. Neto", roster("Zach Eflin", "Zach Neto"))

	if !out.Resolved {
		t.Fatal("abbreviated name should resolve")
	}
	if out.Record.Name != "Zach Neto" {
		t.Errorf("resolved to %q, want Zach Neto (initial and surname both match)", out.Record.Name)
	}
}

func TestResolve_InitialStageAfterFuzzyFails(t *testing.T) {
	// With a strict threshold the fuzzy stage gives up on "Z. Neto"; the
	// abbreviation fallback must still find the player.
	r := &Resolver{Threshold: 0.9, TieMargin: DefaultTieMargin}
	out := r.Resolve("Z. Neto", roster("Zach Eflin", "Zach Neto"))

	if !out.Resolved {
		t.Fatal("abbreviation fallback should resolve")
	}
	if out.Method != MethodInitial {
		t.Errorf("method = %q, want initial", out.Method)
	}
	if out.Record.Name != "Zach Neto" {
		t.Errorf("resolved to %q, want Zach Neto", out.Record.Name)
	}
}

func TestResolve_InitialRequiresMatchingInitial(t *testing.T) {
	r := &Resolver{Threshold: 0.99, TieMargin: DefaultTieMargin}
	out := r.Resolve("Q. Neto", roster("Zach Neto"))

	if out.Resolved {
		t.Errorf("initial mismatch resolved to %q; must be not found", out.Record.Name)
	}
}

// ---------------------------------------------------------------------------
// Token splitting and list resolution
// ---------------------------------------------------------------------------

func TestSplitTokens(t *testing.T) {
	got := SplitTokens(" Player A,  , Player B ,Player C")
	want := []string{"Player A", "Player B", "Player C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTokens = %v, want %v", got, want)
	}
}

func TestResolveList_OnePerTokenInOrder(t *testing.T) {
	r := New()
	team := roster("Player A", "Player B", "Player C")

	outs := r.ResolveList("Player C, Player A, Nobody Real", team)

	if len(outs) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outs))
	}
	if outs[0].Record.Name != "Player C" || outs[1].Record.Name != "Player A" {
		t.Error("outcomes must preserve input order")
	}
	if outs[2].Resolved {
		t.Error("unknown token must come back unresolved")
	}
	if got := Unresolved(outs); !reflect.DeepEqual(got, []string{"Nobody Real"}) {
		t.Errorf("Unresolved = %v, want [Nobody Real]", got)
	}
}
