package store

import "dynasty-gm-mcp/internal/grid"

// LogEntry is one committed line of the append-only transaction log.
type LogEntry struct {
	LoggedAtUTC string `json:"logged_at_utc"`
	Text        string `json:"text"`
}

// GridStore is the external ledger backing the roster grid. Mutations always
// go through OverwriteGrid as a wholesale clear-and-rewrite; trade logic
// never patches individual cells.
type GridStore interface {
	ReadGrid() (grid.Grid, error)
	OverwriteGrid(g grid.Grid) error
	AppendLogEntry(text string) error
	ReadLog() ([]LogEntry, error)
}

// BudgetStore tracks per-team free-agent acquisition budgets on a separate
// store surface.
type BudgetStore interface {
	ReadBudgets() (map[string]float64, error)
	AdjustBudget(team string, delta float64) (float64, error)
}
