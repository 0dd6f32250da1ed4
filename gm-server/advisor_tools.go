package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dynasty-gm-mcp/internal/advisor"
	"dynasty-gm-mcp/internal/reconcile"
	"dynasty-gm-mcp/internal/resolve"
)

type CommentaryArgs struct {
	TeamA   string `json:"team_a" jsonschema:"First team name (required)"`
	AssetsA string `json:"assets_a" jsonschema:"Comma-separated assets leaving team_a (required)"`
	TeamB   string `json:"team_b" jsonschema:"Second team name (required)"`
	AssetsB string `json:"assets_b" jsonschema:"Comma-separated assets leaving team_b (required)"`
}

type ScoutingArgs struct {
	Question string `json:"question" jsonschema:"Scouting or valuation question (required)"`
}

// Advisory tools are commentary only: they read league state, never write it.
func registerAdvisorTools(server *mcp.Server, registry *[]toolInfo, engine *reconcile.Engine, completer advisor.Completer) {
	addTool(server, registry, &mcp.Tool{
		Name:        "trade_commentary",
		Description: "Advisory valuation of a proposed trade (opinion only; does not touch the ledger)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CommentaryArgs) (*mcp.CallToolResult, any, error) {
		if completer == nil {
			return toolError(fmt.Errorf("advisor disabled: GEMINI_API_KEY not set")), nil, nil
		}
		if args.TeamA == "" || args.TeamB == "" {
			return toolError(fmt.Errorf("team_a and team_b are required")), nil, nil
		}
		rosters, err := engine.Rosters()
		if err != nil {
			return toolError(err), nil, nil
		}
		history, err := engine.History()
		if err != nil {
			return toolError(err), nil, nil
		}
		prompt := advisor.BuildTradePrompt(rosters, history,
			args.TeamA, resolve.SplitTokens(args.AssetsA),
			args.TeamB, resolve.SplitTokens(args.AssetsB))
		text, err := completer.Complete(ctx, prompt)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolText(text)
	})

	addTool(server, registry, &mcp.Tool{
		Name:        "scouting_report",
		Description: "Advisory scouting answer against current league state",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScoutingArgs) (*mcp.CallToolResult, any, error) {
		if completer == nil {
			return toolError(fmt.Errorf("advisor disabled: GEMINI_API_KEY not set")), nil, nil
		}
		if args.Question == "" {
			return toolError(fmt.Errorf("question is required")), nil, nil
		}
		rosters, err := engine.Rosters()
		if err != nil {
			return toolError(err), nil, nil
		}
		history, err := engine.History()
		if err != nil {
			return toolError(err), nil, nil
		}
		prompt := advisor.BuildScoutingPrompt(rosters, history, args.Question)
		text, err := completer.Complete(ctx, prompt)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolText(text)
	})
}
