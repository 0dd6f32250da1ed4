package ledger

import (
	"fmt"
	"strings"
)

// FormatTradeEntry renders the human-readable log line for a committed trade.
// The store's log surface stamps the commit time; entries are append-only and
// never edited.
func FormatTradeEntry(teamA string, sentA []string, teamB string, sentB []string) string {
	return fmt.Sprintf("TRADE: %s sends %s to %s for %s",
		teamA, joinAssets(sentA), teamB, joinAssets(sentB))
}

// FormatWaiverEntry renders the log line for an add/drop.
func FormatWaiverEntry(team string, added []string, dropped []string) string {
	switch {
	case len(added) > 0 && len(dropped) > 0:
		return fmt.Sprintf("WAIVER: %s adds %s, drops %s", team, joinAssets(added), joinAssets(dropped))
	case len(added) > 0:
		return fmt.Sprintf("WAIVER: %s adds %s", team, joinAssets(added))
	default:
		return fmt.Sprintf("WAIVER: %s drops %s", team, joinAssets(dropped))
	}
}

// FormatBudgetEntry renders the log line for a FAAB adjustment.
func FormatBudgetEntry(team string, delta float64, balance float64) string {
	verb := "spends"
	amount := -delta
	if delta >= 0 {
		verb = "receives"
		amount = delta
	}
	return fmt.Sprintf("FAAB: %s %s $%.2f (balance $%.2f)", team, verb, amount, balance)
}

func joinAssets(assets []string) string {
	if len(assets) == 0 {
		return "nothing"
	}
	return strings.Join(assets, ", ")
}
