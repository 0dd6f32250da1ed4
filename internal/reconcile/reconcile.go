package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dynasty-gm-mcp/internal/config"
	"dynasty-gm-mcp/internal/grid"
	"dynasty-gm-mcp/internal/ledger"
	"dynasty-gm-mcp/internal/resolve"
	"dynasty-gm-mcp/internal/store"
)

const (
	KindTrade  = "trade"
	KindWaiver = "waiver"

	defaultTTL = 10 * time.Minute
)

var (
	// ErrUnknownProposal covers confirmation of a token that never existed,
	// was already consumed, or expired waiting.
	ErrUnknownProposal = errors.New("unknown or expired proposal token")

	// ErrConflict means the grid changed between propose and confirm. The
	// pending resolution was computed against stale state, so nothing is
	// written; the caller re-proposes against the fresh grid.
	ErrConflict = errors.New("grid changed since proposal was made")
)

// UnresolvedError rejects a proposal whose free-text tokens did not all
// resolve. It names each failed token so the human knows exactly what to fix.
type UnresolvedError struct {
	Team       string
	Tokens     []string
	Candidates map[string][]string // token -> near-miss names, for ambiguous ties
}

func (e *UnresolvedError) Error() string {
	msg := fmt.Sprintf("unresolved assets for %s: %s", e.Team, strings.Join(e.Tokens, ", "))
	for tok, cands := range e.Candidates {
		msg += fmt.Sprintf(" (%q is ambiguous between %s)", tok, strings.Join(cands, " and "))
	}
	return msg
}

// proposal is a fully-resolved transaction awaiting human confirmation. It
// stores canonical asset names only — never coordinates, which are recomputed
// from a fresh read at commit time.
type proposal struct {
	token       string
	kind        string
	teamA       string
	assetsA     []string // leaving teamA (trade) or dropped (waiver)
	teamB       string
	assetsB     []string // leaving teamB (trade only)
	adds        []string // waiver pickups, taken verbatim
	fingerprint string
	expiresAt   time.Time
}

// Engine runs the reconciliation state machine: parse a fresh grid, resolve
// the user's free text, hold the result behind a confirmation gate, then
// mutate, validate, and write back. No grid state outlives a single call.
type Engine struct {
	store    store.GridStore
	cfg      *config.League
	resolver *resolve.Resolver
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu      sync.Mutex
	pending map[string]*proposal
}

func New(st store.GridStore, cfg *config.League, log zerolog.Logger) *Engine {
	r := resolve.New()
	if cfg.ResolveThreshold > 0 {
		r.Threshold = cfg.ResolveThreshold
	}
	ttl := defaultTTL
	if cfg.ProposalTTLMinutes > 0 {
		ttl = time.Duration(cfg.ProposalTTLMinutes) * time.Minute
	}
	return &Engine{
		store:    st,
		cfg:      cfg,
		resolver: r,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		pending:  make(map[string]*proposal),
	}
}

// SideView is one team's half of a pending proposal, shown to the human for
// confirmation.
type SideView struct {
	Team     string            `json:"team"`
	Resolved []resolve.Outcome `json:"resolved,omitempty"`
	Adds     []string          `json:"adds,omitempty"`
}

// ProposalView is what the human confirms: the exact identities every token
// resolved to, plus the token to confirm with.
type ProposalView struct {
	Token        string     `json:"token"`
	Kind         string     `json:"kind"`
	Sides        []SideView `json:"sides"`
	ExpiresAtUTC string     `json:"expires_at_utc"`
}

// CommitResult reports the outcome of a confirmation.
type CommitResult struct {
	Committed bool   `json:"committed"`
	Entry     string `json:"entry,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	Cols      int    `json:"cols,omitempty"`
}

// Rosters reads the grid fresh and parses it into per-team asset lists.
func (e *Engine) Rosters() (map[string][]grid.PlayerRecord, error) {
	g, err := e.store.ReadGrid()
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return grid.ParseRosters(g, e.cfg.Teams), nil
}

// History returns the transaction log in commit order.
func (e *Engine) History() ([]store.LogEntry, error) {
	return e.store.ReadLog()
}

// ProposeTrade resolves both sides of a trade against a fresh grid read. All
// tokens on both sides must resolve or the whole proposal is rejected and
// nothing is retained.
func (e *Engine) ProposeTrade(teamA, assetsA, teamB, assetsB string) (*ProposalView, error) {
	canonA, err := e.canonical(teamA)
	if err != nil {
		return nil, err
	}
	canonB, err := e.canonical(teamB)
	if err != nil {
		return nil, err
	}
	if canonA == canonB {
		return nil, fmt.Errorf("a trade needs two different teams, got %s twice", canonA)
	}

	g, err := e.store.ReadGrid()
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	rosters := grid.ParseRosters(g, e.cfg.Teams)

	sideA, err := e.resolveSide(canonA, assetsA, rosters)
	if err != nil {
		return nil, err
	}
	sideB, err := e.resolveSide(canonB, assetsB, rosters)
	if err != nil {
		return nil, err
	}
	if len(sideA) == 0 || len(sideB) == 0 {
		return nil, fmt.Errorf("both sides of a trade need at least one asset")
	}

	p := &proposal{
		token:       uuid.NewString(),
		kind:        KindTrade,
		teamA:       canonA,
		assetsA:     resolvedNames(sideA),
		teamB:       canonB,
		assetsB:     resolvedNames(sideB),
		fingerprint: grid.Fingerprint(grid.Normalize(g)),
		expiresAt:   e.now().Add(e.ttl),
	}
	e.remember(p)

	e.log.Info().Str("token", p.token).Str("team_a", canonA).Str("team_b", canonB).
		Strs("assets_a", p.assetsA).Strs("assets_b", p.assetsB).Msg("trade proposed")

	return &ProposalView{
		Token: p.token,
		Kind:  KindTrade,
		Sides: []SideView{
			{Team: canonA, Resolved: sideA},
			{Team: canonB, Resolved: sideB},
		},
		ExpiresAtUTC: p.expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// ProposeWaiver resolves an add/drop for one team. Drops resolve against the
// team's roster; adds are free agents from outside the grid and are taken
// verbatim.
func (e *Engine) ProposeWaiver(team, add, drop string) (*ProposalView, error) {
	canon, err := e.canonical(team)
	if err != nil {
		return nil, err
	}

	g, err := e.store.ReadGrid()
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	rosters := grid.ParseRosters(g, e.cfg.Teams)

	var drops []resolve.Outcome
	if strings.TrimSpace(drop) != "" {
		drops, err = e.resolveSide(canon, drop, rosters)
		if err != nil {
			return nil, err
		}
	}
	adds := resolve.SplitTokens(add)
	if len(adds) == 0 && len(drops) == 0 {
		return nil, fmt.Errorf("a waiver needs at least one add or drop")
	}

	p := &proposal{
		token:       uuid.NewString(),
		kind:        KindWaiver,
		teamA:       canon,
		assetsA:     resolvedNames(drops),
		adds:        adds,
		fingerprint: grid.Fingerprint(grid.Normalize(g)),
		expiresAt:   e.now().Add(e.ttl),
	}
	e.remember(p)

	e.log.Info().Str("token", p.token).Str("team", canon).
		Strs("adds", adds).Strs("drops", p.assetsA).Msg("waiver proposed")

	return &ProposalView{
		Token:        p.token,
		Kind:         KindWaiver,
		Sides:        []SideView{{Team: canon, Resolved: drops, Adds: adds}},
		ExpiresAtUTC: p.expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Confirm consumes a pending proposal exactly once. On approval it re-reads
// the grid, verifies nothing moved underneath the proposal, applies the
// mutation, validates the result, and only then overwrites the store and
// appends the log entry. On decline it discards the proposal untouched.
func (e *Engine) Confirm(token string, approve bool) (*CommitResult, error) {
	p := e.take(token)
	if p == nil {
		return nil, ErrUnknownProposal
	}

	if !approve {
		e.log.Info().Str("token", token).Msg("proposal declined")
		return &CommitResult{Committed: false}, nil
	}

	g, err := e.store.ReadGrid()
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	g = grid.Normalize(g)
	if grid.Fingerprint(g) != p.fingerprint {
		return nil, ErrConflict
	}

	var (
		next  grid.Grid
		entry string
	)
	switch p.kind {
	case KindTrade:
		next, err = ledger.ApplyTrade(g, p.teamA, p.assetsA, p.teamB, p.assetsB, e.cfg.Teams)
		entry = ledger.FormatTradeEntry(p.teamA, p.assetsA, p.teamB, p.assetsB)
	case KindWaiver:
		next, err = ledger.ApplyWaiver(g, p.teamA, p.adds, p.assetsA, e.cfg.Teams)
		entry = ledger.FormatWaiverEntry(p.teamA, p.adds, p.assetsA)
	default:
		return nil, fmt.Errorf("unknown proposal kind: %s", p.kind)
	}
	if err != nil {
		return nil, err
	}

	if err := ledger.Validate(next, e.cfg.Teams); err != nil {
		return nil, err
	}

	if err := e.store.OverwriteGrid(next); err != nil {
		return nil, fmt.Errorf("write grid: %w", err)
	}
	if err := e.store.AppendLogEntry(entry); err != nil {
		return nil, fmt.Errorf("append log entry: %w", err)
	}

	e.log.Info().Str("token", token).Str("entry", entry).Msg("transaction committed")

	return &CommitResult{
		Committed: true,
		Entry:     entry,
		Rows:      len(next),
		Cols:      next.Width(),
	}, nil
}

func (e *Engine) canonical(team string) (string, error) {
	if c := e.cfg.Canonical(team); c != "" {
		return c, nil
	}
	return "", fmt.Errorf("unknown team: %s", team)
}

// resolveSide resolves one team's free-text asset list and turns any failure
// into an UnresolvedError naming the offending tokens.
func (e *Engine) resolveSide(team string, input string, rosters map[string][]grid.PlayerRecord) ([]resolve.Outcome, error) {
	roster, ok := rosters[team]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrHeaderNotFound, team)
	}
	outcomes := e.resolver.ResolveList(input, roster)

	failed := resolve.Unresolved(outcomes)
	if len(failed) == 0 {
		return outcomes, nil
	}
	uerr := &UnresolvedError{Team: team, Tokens: failed}
	for _, o := range outcomes {
		if !o.Resolved && len(o.Candidates) > 0 {
			if uerr.Candidates == nil {
				uerr.Candidates = make(map[string][]string)
			}
			uerr.Candidates[o.Input] = o.Candidates
		}
	}
	return nil, uerr
}

func resolvedNames(outcomes []resolve.Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, o.Record.Name)
	}
	return out
}

func (e *Engine) remember(p *proposal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for tok, pending := range e.pending {
		if now.After(pending.expiresAt) {
			delete(e.pending, tok)
		}
	}
	e.pending[p.token] = p
}

// take removes and returns the proposal for token, or nil when the token is
// unknown or expired. A proposal is consumed exactly once.
func (e *Engine) take(token string) *proposal {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pending[token]
	if !ok {
		return nil
	}
	delete(e.pending, token)
	if e.now().After(p.expiresAt) {
		return nil
	}
	return p
}
