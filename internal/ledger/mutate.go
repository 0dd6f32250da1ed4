package ledger

import (
	"errors"
	"fmt"
	"strings"

	"dynasty-gm-mcp/internal/grid"
)

// ErrHeaderNotFound means a team name has no matching column in the current
// header row. The grid itself needs correction; the transaction cannot
// proceed.
var ErrHeaderNotFound = errors.New("team header not found")

// StructuralError reports a computed grid that violates a ledger invariant.
// It is checked before write-back and is always fatal; the store is left
// untouched.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural integrity violation: " + e.Reason
}

// ApplyTrade returns a new grid with leavingA moved from teamA's column to
// teamB's and leavingB moved the other way. Every cell outside the two team
// columns is unchanged; the result is rectangular. The input grid is not
// modified.
//
// Column indices are re-resolved from the grid passed in, never taken from
// previously parsed records: a concurrent edit or an earlier mutation may
// have shifted the layout.
func ApplyTrade(g grid.Grid, teamA string, leavingA []string, teamB string, leavingB []string, teams []string) (grid.Grid, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: %s (empty grid)", ErrHeaderNotFound, teamA)
	}
	g = grid.Normalize(g)

	bound := grid.BindColumns(g[0], teams)
	colA, ok := bound[teamA]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeaderNotFound, teamA)
	}
	colB, ok := bound[teamB]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeaderNotFound, teamB)
	}
	if colA == colB {
		return nil, &StructuralError{Reason: fmt.Sprintf("teams %q and %q bind to the same column", teamA, teamB)}
	}

	newColA := rebuildColumn(g.Column(colA), leavingA, leavingB)
	newColB := rebuildColumn(g.Column(colB), leavingB, leavingA)

	return writeColumns(g, map[int][]string{colA: newColA, colB: newColB}), nil
}

// ApplyWaiver returns a new grid with drop removed from the team's column and
// add appended to it (free-agent pickups come from outside the grid).
func ApplyWaiver(g grid.Grid, team string, add []string, drop []string, teams []string) (grid.Grid, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: %s (empty grid)", ErrHeaderNotFound, team)
	}
	g = grid.Normalize(g)

	col, ok := grid.BindColumns(g[0], teams)[team]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeaderNotFound, team)
	}

	newCol := rebuildColumn(g.Column(col), drop, add)
	return writeColumns(g, map[int][]string{col: newCol}), nil
}

// rebuildColumn takes a full column (header first), removes every occurrence
// of each leaving name, compacts out the resulting gaps, and appends the
// incoming names. Removing all duplicates of a leaving name is deliberate: a
// name listed twice in one column is a ledger data error, and the trade is
// the moment it gets cleaned.
func rebuildColumn(col []string, leaving []string, incoming []string) []string {
	gone := make(map[string]bool, len(leaving))
	for _, n := range leaving {
		gone[strings.ToLower(strings.TrimSpace(n))] = true
	}

	out := make([]string, 0, len(col)+len(incoming))
	out = append(out, col[0]) // header, verbatim
	for _, cell := range col[1:] {
		t := strings.TrimSpace(cell)
		if t == "" {
			continue // compaction: no gaps left behind
		}
		if gone[strings.ToLower(t)] {
			continue
		}
		out = append(out, cell)
	}
	for _, n := range incoming {
		out = append(out, strings.TrimSpace(n))
	}
	return out
}

// writeColumns assembles the output grid: untouched columns byte-for-byte,
// replaced columns written top-down and blanked below their new length, and
// fully-empty rows appended when a new column outgrew the grid.
func writeColumns(g grid.Grid, replaced map[int][]string) grid.Grid {
	height := len(g)
	for _, col := range replaced {
		if len(col) > height {
			height = len(col)
		}
	}
	width := g.Width()

	out := make(grid.Grid, height)
	for r := 0; r < height; r++ {
		row := make([]string, width)
		if r < len(g) {
			copy(row, g[r])
		}
		for c, col := range replaced {
			if r < len(col) {
				row[c] = col[r]
			} else {
				row[c] = ""
			}
		}
		out[r] = row
	}
	return out
}

// Validate checks the invariants that must hold before a mutated grid is
// written back: rectangularity and no asset appearing in two team columns.
func Validate(g grid.Grid, teams []string) error {
	if !g.IsRectangular() {
		return &StructuralError{Reason: "grid is not rectangular"}
	}
	if len(g) == 0 {
		return nil
	}

	seen := make(map[string]string) // folded asset name -> owning team
	for team, col := range grid.BindColumns(g[0], teams) {
		for r := 1; r < len(g); r++ {
			cell := g[r][col]
			if !grid.IsAssetCell(cell) {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(cell))
			if owner, ok := seen[key]; ok && owner != team {
				return &StructuralError{
					Reason: fmt.Sprintf("asset %q appears on both %q and %q", strings.TrimSpace(cell), owner, team),
				}
			}
			seen[key] = team
		}
	}
	return nil
}
