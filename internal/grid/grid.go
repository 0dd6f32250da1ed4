package grid

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Grid is the league roster matrix as read from the grid store. Row 0 is the
// header row; every column whose header matches a canonical team name belongs
// to that team for its full height.
type Grid [][]string

// PlayerRecord is one occupied roster cell: a player name or a draft-pick
// descriptor, both treated as opaque asset strings. Row and Col are 1-based
// coordinates valid only for the read that produced them; they are recomputed
// fresh before any mutation.
type PlayerRecord struct {
	Name string `json:"name"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// Width returns the widest row in the grid.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]string, len(row))
		copy(out[i], row)
	}
	return out
}

// Normalize pads every row with empty cells up to the widest row, so that the
// grid is rectangular. Rows are never truncated. The input is not modified.
func Normalize(g Grid) Grid {
	w := g.Width()
	out := make(Grid, len(g))
	for i, row := range g {
		padded := make([]string, w)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// IsRectangular reports whether every row has the same length.
func (g Grid) IsRectangular() bool {
	if len(g) == 0 {
		return true
	}
	w := len(g[0])
	for _, row := range g[1:] {
		if len(row) != w {
			return false
		}
	}
	return true
}

// IsAssetCell reports whether a cell's trimmed text names an asset. Empty
// cells and colon-terminated section labels ("Pitchers:") are not assets.
func IsAssetCell(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && !strings.HasSuffix(t, ":")
}

func foldHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// BindColumns maps each canonical team name to its 0-based column index in
// the header row. Matching is case- and whitespace-insensitive; headers that
// match no canonical name are ignored (stray labels, merged-cell residue).
func BindColumns(header []string, teams []string) map[string]int {
	canonical := make(map[string]string, len(teams))
	for _, t := range teams {
		canonical[foldHeader(t)] = t
	}

	out := make(map[string]int)
	for col, cell := range header {
		name, ok := canonical[foldHeader(cell)]
		if !ok {
			continue
		}
		if _, dup := out[name]; dup {
			continue // first column wins; a second matching header is ignored
		}
		out[name] = col
	}
	return out
}

// ParseRosters converts a grid into a per-team ordered asset list. Teams
// whose header is absent from the grid get no entry. An empty grid yields an
// empty mapping.
func ParseRosters(g Grid, teams []string) map[string][]PlayerRecord {
	out := make(map[string][]PlayerRecord)
	if len(g) == 0 {
		return out
	}

	g = Normalize(g)
	for team, col := range BindColumns(g[0], teams) {
		roster := make([]PlayerRecord, 0)
		for r := 1; r < len(g); r++ {
			cell := g[r][col]
			if !IsAssetCell(cell) {
				continue
			}
			roster = append(roster, PlayerRecord{
				Name: strings.TrimSpace(cell),
				Row:  r + 1,
				Col:  col + 1,
			})
		}
		out[team] = roster
	}
	return out
}

// FromRosters builds a grid from a team order and per-team asset lists:
// header row first, then one row per roster slot, padded rectangular.
func FromRosters(teams []string, rosters map[string][]string) Grid {
	g := Grid{append([]string{}, teams...)}
	height := 0
	for _, team := range teams {
		if len(rosters[team]) > height {
			height = len(rosters[team])
		}
	}
	for r := 0; r < height; r++ {
		row := make([]string, len(teams))
		for c, team := range teams {
			if r < len(rosters[team]) {
				row[c] = rosters[team][r]
			}
		}
		g = append(g, row)
	}
	return g
}

// Column extracts the 0-based column idx as a list, one entry per row,
// including the header. Short rows contribute empty cells.
func (g Grid) Column(idx int) []string {
	out := make([]string, len(g))
	for r, row := range g {
		if idx < len(row) {
			out[r] = row[idx]
		}
	}
	return out
}

// Fingerprint returns a stable digest of the grid's dimensions and contents,
// used as an optimistic-concurrency guard between propose and commit.
func Fingerprint(g Grid) string {
	h := fnv.New64a()
	for _, row := range g {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%dx%d-%016x", len(g), g.Width(), h.Sum64())
}
