package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"dynasty-gm-mcp/internal/config"
	"dynasty-gm-mcp/internal/grid"
	"dynasty-gm-mcp/internal/store"
)

func main() {
	var (
		leaguePath = flag.String("league", "league.yaml", "path to league config")
		storeKind  = flag.String("store", "xlsx", "grid store backend: xlsx|json")
		jsonRoot   = flag.String("json-root", "data/league", "root directory for the json store")
		doInit     = flag.Bool("init", false, "initialize the store from seed rosters and budgets")
		dumpGrid   = flag.Bool("dump-grid", false, "print the raw grid")
		dumpRoster = flag.Bool("dump-rosters", false, "print parsed per-team rosters")
		dumpLog    = flag.Bool("dump-log", false, "print the transaction log")
	)
	flag.Parse()

	cfg, err := config.Load(*leaguePath)
	if err != nil {
		log.Fatal(err)
	}

	if *doInit {
		if err := initStore(cfg, *storeKind, *jsonRoot); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("initialized %s store for %d teams\n", *storeKind, len(cfg.Teams))
	}

	var st store.GridStore
	switch *storeKind {
	case "xlsx":
		st = store.NewXLSXStore(cfg.Workbook)
	case "json":
		st = store.NewJSONStore(*jsonRoot)
	default:
		log.Fatalf("unknown store backend: %s", *storeKind)
	}

	if *dumpGrid {
		g, err := st.ReadGrid()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(g)
	}

	if *dumpRoster {
		g, err := st.ReadGrid()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(grid.ParseRosters(g, cfg.Teams))
	}

	if *dumpLog {
		entries, err := st.ReadLog()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(entries)
	}
}

func initStore(cfg *config.League, kind string, jsonRoot string) error {
	switch kind {
	case "xlsx":
		return store.InitWorkbook(cfg.Workbook, cfg.Teams, cfg.SeedRosters, cfg.SeedBudgets)
	case "json":
		st := store.NewJSONStore(jsonRoot)
		if err := st.OverwriteGrid(grid.FromRosters(cfg.Teams, cfg.SeedRosters)); err != nil {
			return err
		}
		return st.SeedBudgets(cfg.SeedBudgets)
	default:
		return fmt.Errorf("unknown store backend: %s", kind)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
