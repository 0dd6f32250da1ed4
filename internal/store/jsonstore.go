package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dynasty-gm-mcp/internal/grid"
)

const (
	gridFile = "grid.json"
	logFile  = "log.json"
	faabFile = "faab.json"
)

// JSONStore keeps the grid, the transaction log, and the FAAB ledger as
// pretty-printed JSON files under a root directory. It backs local
// development and tests; league play runs against the workbook store.
type JSONStore struct {
	Root string // e.g. "data/league"
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root}
}

func (s *JSONStore) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *JSONStore) ReadGrid() (grid.Grid, error) {
	b, err := os.ReadFile(s.Path(gridFile))
	if errors.Is(err, os.ErrNotExist) {
		return grid.Grid{}, nil
	}
	if err != nil {
		return nil, err
	}
	var g grid.Grid
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("corrupt grid file: %w", err)
	}
	return g, nil
}

func (s *JSONStore) OverwriteGrid(g grid.Grid) error {
	return s.writeJSON(gridFile, g)
}

func (s *JSONStore) AppendLogEntry(text string) error {
	entries, err := s.ReadLog()
	if err != nil {
		return err
	}
	entries = append(entries, LogEntry{
		LoggedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Text:        text,
	})
	return s.writeJSON(logFile, entries)
}

func (s *JSONStore) ReadLog() ([]LogEntry, error) {
	b, err := os.ReadFile(s.Path(logFile))
	if errors.Is(err, os.ErrNotExist) {
		return []LogEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("corrupt log file: %w", err)
	}
	return entries, nil
}

func (s *JSONStore) ReadBudgets() (map[string]float64, error) {
	b, err := os.ReadFile(s.Path(faabFile))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, err
	}
	var budgets map[string]float64
	if err := json.Unmarshal(b, &budgets); err != nil {
		return nil, fmt.Errorf("corrupt faab file: %w", err)
	}
	return budgets, nil
}

func (s *JSONStore) AdjustBudget(team string, delta float64) (float64, error) {
	budgets, err := s.ReadBudgets()
	if err != nil {
		return 0, err
	}
	budgets[team] += delta
	if err := s.writeJSON(faabFile, budgets); err != nil {
		return 0, err
	}
	return budgets[team], nil
}

// SeedBudgets writes the initial FAAB balances, replacing any existing file.
func (s *JSONStore) SeedBudgets(budgets map[string]float64) error {
	return s.writeJSON(faabFile, budgets)
}

func (s *JSONStore) writeJSON(rel string, v any) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
