package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dynasty-gm-mcp/internal/grid"
)

const (
	rostersSheet = "Rosters"
	logSheet     = "Log"
	faabSheet    = "FAAB"
)

// XLSXStore is the league workbook: sheet Rosters holds the grid, sheet Log
// is the append-only transaction log, sheet FAAB holds per-team budgets.
// Every method opens the file fresh and closes it before returning; nothing
// is cached across calls.
type XLSXStore struct {
	Path string
}

func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{Path: path}
}

// InitWorkbook creates a new workbook at path with the three sheets, a header
// row of team names, seed rosters below it, and seed FAAB balances. An
// existing file is replaced.
func InitWorkbook(path string, teams []string, rosters map[string][]string, budgets map[string]float64) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{rostersSheet, logSheet, faabSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := writeGridRows(f, grid.FromRosters(teams, rosters)); err != nil {
		return err
	}

	for i, team := range teams {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(faabSheet, cell, &[]any{team, budgets[team]}); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func (s *XLSXStore) ReadGrid() (grid.Grid, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rostersSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", rostersSheet, err)
	}
	// GetRows trims trailing empty cells per row; normalize back to a
	// rectangle so downstream code never sees ragged input.
	return grid.Normalize(grid.Grid(rows)), nil
}

// OverwriteGrid replaces the Rosters sheet wholesale: the old sheet is
// dropped and a fresh one written. Partial cell patches are never issued for
// trade logic.
func (s *XLSXStore) OverwriteGrid(g grid.Grid) error {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := f.DeleteSheet(rostersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(rostersSheet); err != nil {
		return err
	}
	if err := writeGridRows(f, g); err != nil {
		return err
	}
	return f.Save()
}

func writeGridRows(f *excelize.File, g grid.Grid) error {
	for i, row := range g {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(rostersSheet, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}

func (s *XLSXStore) AppendLogEntry(text string) error {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(logSheet)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	if err := f.SetSheetRow(logSheet, cell, &[]any{ts, text}); err != nil {
		return err
	}
	return f.Save()
}

func (s *XLSXStore) ReadLog() ([]LogEntry, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(logSheet)
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		entry := LogEntry{LoggedAtUTC: row[0]}
		if len(row) > 1 {
			entry.Text = row[1]
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *XLSXStore) ReadBudgets() (map[string]float64, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readBudgetRows(f)
}

func (s *XLSXStore) AdjustBudget(team string, delta float64) (float64, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(faabSheet)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if len(row) == 0 || !strings.EqualFold(strings.TrimSpace(row[0]), team) {
			continue
		}
		balance := delta
		if len(row) > 1 {
			prev, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return 0, fmt.Errorf("corrupt FAAB balance for %s: %q", team, row[1])
			}
			balance = prev + delta
		}
		cell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(faabSheet, cell, balance); err != nil {
			return 0, err
		}
		if err := f.Save(); err != nil {
			return 0, err
		}
		return balance, nil
	}
	return 0, fmt.Errorf("team not found in FAAB sheet: %s", team)
}

func readBudgetRows(f *excelize.File) (map[string]float64, error) {
	rows, err := f.GetRows(faabSheet)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		var balance float64
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			balance, err = strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return nil, fmt.Errorf("corrupt FAAB balance for %s: %q", row[0], row[1])
			}
		}
		out[strings.TrimSpace(row[0])] = balance
	}
	return out, nil
}
