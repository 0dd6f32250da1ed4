package ledger

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"dynasty-gm-mcp/internal/grid"
)

var testTeams = []string{"Team A", "Team B", "Team C"}

func column(g grid.Grid, idx int) []string {
	out := make([]string, 0)
	for r := 1; r < len(g); r++ {
		if cell := strings.TrimSpace(g[r][idx]); cell != "" {
			out = append(out, cell)
		}
	}
	return out
}

func assetMultiset(g grid.Grid) []string {
	out := make([]string, 0)
	for r := 1; r < len(g); r++ {
		for _, cell := range g[r] {
			if grid.IsAssetCell(cell) {
				out = append(out, strings.TrimSpace(cell))
			}
		}
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// ApplyTrade
// ---------------------------------------------------------------------------

func TestApplyTrade_OneForOne(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player Y", ""},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	if a := column(out, 0); !reflect.DeepEqual(a, []string{"Player Y", "Player Z"}) {
		t.Errorf("Team A column = %v, want [Player Y, Player Z]", a)
	}
	if b := column(out, 1); !reflect.DeepEqual(b, []string{"Player X"}) {
		t.Errorf("Team B column = %v, want [Player X]", b)
	}
}

func TestApplyTrade_ConservesAssets(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B", "Team C"},
		{"Player X", "Player Z", "Player Q"},
		{"Player Y", "2026 Pick 1.05", "Player R"},
	}

	before := assetMultiset(g)
	out, err := ApplyTrade(g, "Team A", []string{"Player X", "Player Y"}, "Team B", []string{"2026 Pick 1.05"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	if after := assetMultiset(out); !reflect.DeepEqual(before, after) {
		t.Errorf("trade changed the asset multiset:\nbefore %v\nafter  %v", before, after)
	}
}

func TestApplyTrade_NoCrossContamination(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team C", "Team B", "Notes"},
		{"Player X", "Player Q", "Player Z", "keeper rules"},
		{"Player Y", "Player R", "", "see email"},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	for r := 0; r < len(g); r++ {
		if out[r][1] != g[r][1] {
			t.Errorf("row %d: Team C cell changed from %q to %q", r, g[r][1], out[r][1])
		}
		if out[r][3] != g[r][3] {
			t.Errorf("row %d: Notes cell changed from %q to %q", r, g[r][3], out[r][3])
		}
	}
}

func TestApplyTrade_HeaderRowUntouched(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out[0], g[0]) {
		t.Errorf("header row changed: %v", out[0])
	}
}

func TestApplyTrade_GrowsGridForLopsidedTrade(t *testing.T) {
	// Three-for-one: Team B's column outgrows the original grid height.
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player Y", ""},
		{"Player W", ""},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X", "Player Y", "Player W"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	if !out.IsRectangular() {
		t.Fatal("output grid is not rectangular")
	}
	wantB := []string{"Player X", "Player Y", "Player W"}
	if b := column(out, 1); !reflect.DeepEqual(b, wantB) {
		t.Errorf("Team B column = %v, want %v", b, wantB)
	}
	if a := column(out, 0); !reflect.DeepEqual(a, []string{"Player Z"}) {
		t.Errorf("Team A column = %v, want [Player Z]", a)
	}
}

func TestApplyTrade_CompactsGaps(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"", ""},
		{"Player Y", ""},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	// Player Y slides up; no interior gaps survive the rewrite.
	if out[1][0] != "Player Y" || out[2][0] != "Player Z" {
		t.Errorf("Team A column not compacted: %v", out.Column(0))
	}
}

// Duplicated names are a ledger data error; a trade removing that name clears
// every occurrence.
func TestApplyTrade_RemovesAllDuplicates(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player X", ""},
		{"Player Y", ""},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	for r := 1; r < len(out); r++ {
		if strings.TrimSpace(out[r][0]) == "Player X" {
			t.Fatalf("duplicate Player X survived in Team A column: %v", out.Column(0))
		}
	}
	if b := column(out, 1); !reflect.DeepEqual(b, []string{"Player X"}) {
		t.Errorf("Team B column = %v, want exactly one Player X", b)
	}
}

func TestApplyTrade_RaggedInput(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player Y"},
	}

	out, err := ApplyTrade(g, "Team A", []string{"Player Y"}, "Team B", []string{"Player Z"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsRectangular() {
		t.Error("write-back must restore rectangularity from ragged input")
	}
}

func TestApplyTrade_HeaderNotFound(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Mystery Squad"},
		{"Player X", "Player Z"},
	}

	_, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err = %v, want ErrHeaderNotFound", err)
	}
	if !strings.Contains(err.Error(), "Team B") {
		t.Errorf("error should name the missing team: %v", err)
	}
}

func TestApplyTrade_InputNotModified(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
	}
	want := g.Clone()

	if _, err := ApplyTrade(g, "Team A", []string{"Player X"}, "Team B", []string{"Player Z"}, testTeams); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g, want) {
		t.Error("ApplyTrade modified its input grid")
	}
}

// ---------------------------------------------------------------------------
// ApplyWaiver
// ---------------------------------------------------------------------------

func TestApplyWaiver_AddAndDrop(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player Y", ""},
	}

	out, err := ApplyWaiver(g, "Team A", []string{"Free Agent"}, []string{"Player Y"}, testTeams)
	if err != nil {
		t.Fatal(err)
	}

	if a := column(out, 0); !reflect.DeepEqual(a, []string{"Player X", "Free Agent"}) {
		t.Errorf("Team A column = %v, want [Player X, Free Agent]", a)
	}
	if b := column(out, 1); !reflect.DeepEqual(b, []string{"Player Z"}) {
		t.Errorf("Team B column changed by a Team A waiver: %v", b)
	}
}

func TestApplyWaiver_HeaderNotFound(t *testing.T) {
	g := grid.Grid{{"Team A"}, {"Player X"}}
	_, err := ApplyWaiver(g, "Team B", []string{"Free Agent"}, nil, testTeams)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err = %v, want ErrHeaderNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate_Rectangular(t *testing.T) {
	ok := grid.Grid{{"Team A", "Team B"}, {"Player X", ""}}
	if err := Validate(ok, testTeams); err != nil {
		t.Errorf("valid grid rejected: %v", err)
	}

	ragged := grid.Grid{{"Team A", "Team B"}, {"Player X"}}
	var serr *StructuralError
	if err := Validate(ragged, testTeams); !errors.As(err, &serr) {
		t.Errorf("ragged grid accepted: %v", err)
	}
}

func TestValidate_CrossTeamDuplicate(t *testing.T) {
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player X"},
	}

	var serr *StructuralError
	if err := Validate(g, testTeams); !errors.As(err, &serr) {
		t.Fatalf("duplicate across teams accepted: %v", err)
	}
}

func TestValidate_SameTeamDuplicateAllowed(t *testing.T) {
	// A within-column duplicate is a pre-existing data error cleaned up on
	// the next trade; validation only guards cross-team duplication.
	g := grid.Grid{
		{"Team A", "Team B"},
		{"Player X", "Player Z"},
		{"Player X", ""},
	}
	if err := Validate(g, testTeams); err != nil {
		t.Errorf("within-team duplicate rejected: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Log entry formatting
// ---------------------------------------------------------------------------

func TestFormatTradeEntry(t *testing.T) {
	got := FormatTradeEntry("Team A", []string{"Player X", "Player Y"}, "Team B", []string{"Player Z"})
	want := "TRADE: Team A sends Player X, Player Y to Team B for Player Z"
	if got != want {
		t.Errorf("entry = %q, want %q", got, want)
	}
}

func TestFormatWaiverEntry(t *testing.T) {
	cases := []struct {
		add, drop []string
		want      string
	}{
		{[]string{"Free Agent"}, []string{"Player Y"}, "WAIVER: Team A adds Free Agent, drops Player Y"},
		{[]string{"Free Agent"}, nil, "WAIVER: Team A adds Free Agent"},
		{nil, []string{"Player Y"}, "WAIVER: Team A drops Player Y"},
	}
	for _, c := range cases {
		if got := FormatWaiverEntry("Team A", c.add, c.drop); got != c.want {
			t.Errorf("entry = %q, want %q", got, c.want)
		}
	}
}

func TestFormatBudgetEntry(t *testing.T) {
	got := FormatBudgetEntry("Team A", -12.5, 187.5)
	want := "FAAB: Team A spends $12.50 (balance $187.50)"
	if got != want {
		t.Errorf("entry = %q, want %q", got, want)
	}
}
