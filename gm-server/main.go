package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dynasty-gm-mcp/internal/advisor"
	"dynasty-gm-mcp/internal/config"
	"dynasty-gm-mcp/internal/reconcile"
	"dynasty-gm-mcp/internal/store"
	"dynasty-gm-mcp/pkg/logger"
)

type NoArgs struct{}

type TradeProposalArgs struct {
	TeamA   string `json:"team_a" jsonschema:"First team name (required)"`
	AssetsA string `json:"assets_a" jsonschema:"Comma-separated assets leaving team_a (required)"`
	TeamB   string `json:"team_b" jsonschema:"Second team name (required)"`
	AssetsB string `json:"assets_b" jsonschema:"Comma-separated assets leaving team_b (required)"`
}

type WaiverProposalArgs struct {
	Team string `json:"team" jsonschema:"Team name (required)"`
	Add  string `json:"add,omitempty" jsonschema:"Comma-separated free agents to add"`
	Drop string `json:"drop,omitempty" jsonschema:"Comma-separated roster assets to drop"`
}

type ConfirmArgs struct {
	Token   string `json:"token" jsonschema:"Proposal token from propose_trade/propose_waiver (required)"`
	Approve bool   `json:"approve" jsonschema:"true commits the transaction, false discards it"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	var (
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		mcpPath     = flag.String("path", "/mcp", "HTTP path for MCP endpoint")
		leaguePath  = flag.String("league", "league.yaml", "path to league config")
		storeKind   = flag.String("store", "xlsx", "grid store backend: xlsx|json")
		jsonRoot    = flag.String("json-root", "data/league", "root directory for the json store")
		requireAuth = flag.Bool("require-auth", true, "require API key auth via GM_MCP_API_KEY")
		authHeader  = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
		logLevel    = flag.String("log-level", "info", "log level: debug|info|warn|error")
		logPretty   = flag.Bool("log-pretty", false, "human-readable console logging")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: *logPretty})

	cfg, err := config.Load(*leaguePath)
	if err != nil {
		log.Fatal().Err(err).Msg("load league config")
	}

	var gridStore store.GridStore
	var budgetStore store.BudgetStore
	switch *storeKind {
	case "xlsx":
		st := store.NewXLSXStore(cfg.Workbook)
		gridStore, budgetStore = st, st
	case "json":
		st := store.NewJSONStore(*jsonRoot)
		gridStore, budgetStore = st, st
	default:
		log.Fatal().Str("store", *storeKind).Msg("unknown store backend")
	}

	engine := reconcile.New(gridStore, cfg, log)

	var completer advisor.Completer
	if apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); apiKey != "" {
		completer, err = advisor.NewGemini(context.Background(), apiKey, cfg.AdvisorModel)
		if err != nil {
			log.Fatal().Err(err).Msg("create advisor client")
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; advisory tools disabled")
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "dynasty-gm-mcp",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 16)

	addTool(server, &registry, &mcp.Tool{
		Name:        "league_rosters",
		Description: "Current roster for every team, parsed fresh from the ledger",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		rosters, err := engine.Rosters()
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(rosters)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "propose_trade",
		Description: "Resolve both sides of a trade and return a confirmation token; nothing is written until confirm_transaction",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TradeProposalArgs) (*mcp.CallToolResult, any, error) {
		if args.TeamA == "" || args.TeamB == "" {
			return toolError(fmt.Errorf("team_a and team_b are required")), nil, nil
		}
		view, err := engine.ProposeTrade(args.TeamA, args.AssetsA, args.TeamB, args.AssetsB)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(view)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "propose_waiver",
		Description: "Resolve an add/drop for one team and return a confirmation token",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args WaiverProposalArgs) (*mcp.CallToolResult, any, error) {
		if args.Team == "" {
			return toolError(fmt.Errorf("team is required")), nil, nil
		}
		view, err := engine.ProposeWaiver(args.Team, args.Add, args.Drop)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(view)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "confirm_transaction",
		Description: "Commit or discard a pending proposal by token",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ConfirmArgs) (*mcp.CallToolResult, any, error) {
		if args.Token == "" {
			return toolError(fmt.Errorf("token is required")), nil, nil
		}
		res, err := engine.Confirm(args.Token, args.Approve)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(res)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "transaction_history",
		Description: "Committed trades, waivers, and budget moves in commit order",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		entries, err := engine.History()
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{"entries": entries})
	})

	registerFaabTools(server, &registry, cfg, budgetStore, gridStore)
	registerAdvisorTools(server, &registry, engine, completer)

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	apiKey := strings.TrimSpace(os.Getenv("GM_MCP_API_KEY"))
	if *requireAuth && apiKey == "" {
		log.Fatal().Msg("GM_MCP_API_KEY is required (set env var or run with --require-auth=false)")
	}

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(*authHeader))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next(w, r)
		}
	}

	http.HandleFunc("/health", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	http.HandleFunc("/tools", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))

	http.HandleFunc(*mcpPath, withAuth(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	log.Info().Str("addr", *addr).Str("path", *mcpPath).Msg("MCP HTTP server listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolText(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
