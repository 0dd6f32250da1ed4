package advisor

import (
	"fmt"
	"sort"
	"strings"

	"dynasty-gm-mcp/internal/grid"
	"dynasty-gm-mcp/internal/store"
)

// systemPrompt frames the completion model as a dynasty-league assistant GM.
// Its opinions are commentary; the ledger never takes instructions from it.
const systemPrompt = `Role: OOTP-style Executive Assistant GM. Window: 2026-2028.
Scoring (6x6): HR, RBI, R, SB, AVG, OPS | QS, BAA, ERA, SVH, K/9, WHIP.
Roster rules: 2-C, 1B, 2B, 3B, SS, CI, MI, 3 OF, 2 UTIL.

Valuation rules:
- Grade players 0-100 on CURRENT (2026) and POTENTIAL (2027-2028).
- FYPD pick valuation: 1.01-1.03 (85-95), 1.04-1.08 (70-84), late 1st (55-69).
- Trade grading: use surplus-value logic. Picks are currency.
- Scouting: monitor top 2026 names like Tatsuya Imai, Eli Willits, and Roch Cholowsky.`

// BuildTradePrompt assembles the advisory prompt for a proposed trade:
// valuation rules, current rosters, recent moves, and the trade under review.
func BuildTradePrompt(rosters map[string][]grid.PlayerRecord, history []store.LogEntry, teamA string, assetsA []string, teamB string, assetsB []string) string {
	b := &strings.Builder{}
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	writeRosters(b, rosters)
	writeHistory(b, history)
	fmt.Fprintf(b, "\nPROPOSED TRADE: %s sends %s to %s for %s.\n",
		teamA, strings.Join(assetsA, ", "), teamB, strings.Join(assetsB, ", "))
	b.WriteString("Grade both sides of this trade and state who wins and why.")
	return b.String()
}

// BuildScoutingPrompt assembles an open-ended scouting question against the
// current league state.
func BuildScoutingPrompt(rosters map[string][]grid.PlayerRecord, history []store.LogEntry, question string) string {
	b := &strings.Builder{}
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	writeRosters(b, rosters)
	writeHistory(b, history)
	b.WriteString("\nQUESTION: ")
	b.WriteString(strings.TrimSpace(question))
	return b.String()
}

func writeRosters(b *strings.Builder, rosters map[string][]grid.PlayerRecord) {
	teams := make([]string, 0, len(rosters))
	for t := range rosters {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	b.WriteString("ROSTERS:\n")
	for _, team := range teams {
		names := make([]string, 0, len(rosters[team]))
		for _, rec := range rosters[team] {
			names = append(names, rec.Name)
		}
		fmt.Fprintf(b, "- %s: %s\n", team, strings.Join(names, ", "))
	}
}

func writeHistory(b *strings.Builder, history []store.LogEntry) {
	if len(history) == 0 {
		return
	}
	b.WriteString("RECENT MOVES:\n")
	start := 0
	if len(history) > 20 {
		start = len(history) - 20
	}
	for _, e := range history[start:] {
		fmt.Fprintf(b, "- %s %s\n", e.LoggedAtUTC, e.Text)
	}
}
