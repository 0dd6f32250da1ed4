package resolve

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"dynasty-gm-mcp/internal/grid"
)

const (
	MethodExact   = "exact"
	MethodFuzzy   = "fuzzy"
	MethodInitial = "initial"

	DefaultThreshold = 0.6
	DefaultTieMargin = 0.05
)

// Outcome is the resolution result for a single input token. When Resolved is
// false the token must halt the whole transaction; Input carries the original
// text for display and Candidates names near-misses when the failure was an
// ambiguous tie.
type Outcome struct {
	Input      string            `json:"input"`
	Resolved   bool              `json:"resolved"`
	Record     grid.PlayerRecord `json:"record,omitempty"`
	Method     string            `json:"method,omitempty"`
	Score      float64           `json:"score,omitempty"`
	Candidates []string          `json:"candidates,omitempty"`
}

// Resolver maps free-text asset tokens to roster records. Resolution is
// read-only advice: it never touches the grid, and every stage is
// deterministic for a fixed roster and token.
type Resolver struct {
	// Threshold is the minimum similarity ratio the fuzzy stage accepts.
	Threshold float64
	// TieMargin rejects a fuzzy match when the runner-up is this close to the
	// best candidate; a silent coin-flip would reassign a real asset.
	TieMargin float64
}

func New() *Resolver {
	return &Resolver{Threshold: DefaultThreshold, TieMargin: DefaultTieMargin}
}

// SplitTokens splits comma-separated free text into trimmed tokens, dropping
// empties.
func SplitTokens(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveList resolves every comma-separated token in input against the
// roster, one outcome per token, in input order.
func (r *Resolver) ResolveList(input string, roster []grid.PlayerRecord) []Outcome {
	tokens := SplitTokens(input)
	out := make([]Outcome, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, r.Resolve(tok, roster))
	}
	return out
}

// Resolve applies the resolution stages in order: exact match, similarity
// ratio, initial+surname expansion. A token that survives none of them comes
// back unresolved.
func (r *Resolver) Resolve(token string, roster []grid.PlayerRecord) Outcome {
	tok := strings.TrimSpace(token)
	out := Outcome{Input: tok}
	if tok == "" {
		return out
	}

	if rec, ok := exactMatch(tok, roster); ok {
		out.Resolved = true
		out.Record = rec
		out.Method = MethodExact
		out.Score = 1
		return out
	}

	if res := r.fuzzyMatch(tok, roster); res.Resolved || len(res.Candidates) > 0 {
		res.Input = tok
		return res
	}

	if rec, ok := initialMatch(tok, roster); ok {
		out.Resolved = true
		out.Record = rec
		out.Method = MethodInitial
		return out
	}

	return out
}

func exactMatch(token string, roster []grid.PlayerRecord) (grid.PlayerRecord, bool) {
	for _, rec := range roster {
		if strings.EqualFold(token, rec.Name) {
			return rec, true
		}
	}
	return grid.PlayerRecord{}, false
}

// Similarity is a normalized edit-distance ratio in [0,1]: 1 for identical
// strings (case-insensitive), 0 for fully dissimilar.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func (r *Resolver) fuzzyMatch(token string, roster []grid.PlayerRecord) Outcome {
	var (
		best       grid.PlayerRecord
		bestScore  = -1.0
		runnerUp   grid.PlayerRecord
		runnerBest = -1.0
	)
	for _, rec := range roster {
		s := Similarity(token, rec.Name)
		if s > bestScore {
			runnerUp, runnerBest = best, bestScore
			best, bestScore = rec, s
		} else if s > runnerBest {
			runnerUp, runnerBest = rec, s
		}
	}

	if bestScore < r.Threshold {
		return Outcome{}
	}
	if runnerBest >= r.Threshold && bestScore-runnerBest < r.TieMargin {
		// Two plausible owners for one token: refuse rather than guess.
		return Outcome{Candidates: []string{best.Name, runnerUp.Name}}
	}
	return Outcome{Resolved: true, Record: best, Method: MethodFuzzy, Score: bestScore}
}

// initialPattern matches abbreviated names like "Z. Neto" or "J.  Soto":
// a single initial, a period, and a surname fragment.
var initialPattern = regexp.MustCompile(`^([A-Za-z])\.\s*(\S.*)$`)

func initialMatch(token string, roster []grid.PlayerRecord) (grid.PlayerRecord, bool) {
	m := initialPattern.FindStringSubmatch(token)
	if m == nil {
		return grid.PlayerRecord{}, false
	}
	initial := strings.ToLower(m[1])
	fragment := strings.ToLower(strings.TrimSpace(m[2]))
	for _, rec := range roster {
		name := strings.ToLower(rec.Name)
		if strings.HasPrefix(name, initial) && strings.Contains(name, fragment) {
			return rec, true
		}
	}
	return grid.PlayerRecord{}, false
}

// Unresolved collects the inputs of every failed outcome, in order.
func Unresolved(outcomes []Outcome) []string {
	out := make([]string, 0)
	for _, o := range outcomes {
		if !o.Resolved {
			out = append(out, o.Input)
		}
	}
	return out
}
