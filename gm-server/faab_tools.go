package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dynasty-gm-mcp/internal/config"
	"dynasty-gm-mcp/internal/ledger"
	"dynasty-gm-mcp/internal/store"
)

type FaabAdjustArgs struct {
	Team  string  `json:"team" jsonschema:"Team name (required)"`
	Delta float64 `json:"delta" jsonschema:"Budget change: negative for a spend, positive for a credit"`
}

func registerFaabTools(server *mcp.Server, registry *[]toolInfo, cfg *config.League, budgets store.BudgetStore, grids store.GridStore) {
	addTool(server, registry, &mcp.Tool{
		Name:        "faab_budgets",
		Description: "Remaining free-agent acquisition budget per team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		out, err := budgets.ReadBudgets()
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(out)
	})

	addTool(server, registry, &mcp.Tool{
		Name:        "faab_adjust",
		Description: "Adjust a team's FAAB balance and log the move",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FaabAdjustArgs) (*mcp.CallToolResult, any, error) {
		team := cfg.Canonical(args.Team)
		if team == "" {
			return toolError(fmt.Errorf("unknown team: %s", args.Team)), nil, nil
		}
		if args.Delta == 0 {
			return toolError(fmt.Errorf("delta must be non-zero")), nil, nil
		}
		balance, err := budgets.AdjustBudget(team, args.Delta)
		if err != nil {
			return toolError(err), nil, nil
		}
		entry := ledger.FormatBudgetEntry(team, args.Delta, balance)
		if err := grids.AppendLogEntry(entry); err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{"team": team, "balance": balance, "entry": entry})
	})
}
