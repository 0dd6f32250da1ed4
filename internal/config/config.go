package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// League is the season configuration: the closed set of canonical team names
// plus the resolver and orchestration knobs. It is read once at startup and
// treated as read-only for the life of the process.
type League struct {
	// Season labels the config file, e.g. "2026".
	Season string `yaml:"season"`

	// Teams is the canonical team-name list. Column headers in the grid bind
	// to these names; headers matching none of them are ignored.
	Teams []string `yaml:"teams"`

	// ResolveThreshold is the minimum similarity ratio the fuzzy resolver
	// accepts. Zero means the resolver default.
	ResolveThreshold float64 `yaml:"resolve_threshold"`

	// ProposalTTLMinutes bounds how long a pending proposal waits for
	// confirmation. Zero means the engine default.
	ProposalTTLMinutes int `yaml:"proposal_ttl_minutes"`

	// Workbook is the path to the league XLSX workbook.
	Workbook string `yaml:"workbook"`

	// AdvisorModel is the completion model used for trade commentary.
	AdvisorModel string `yaml:"advisor_model"`

	// SeedRosters and SeedBudgets initialize a fresh store (cmd/dev -init).
	SeedRosters map[string][]string `yaml:"seed_rosters"`
	SeedBudgets map[string]float64  `yaml:"seed_budgets"`
}

// Load reads the league YAML and pulls .env into the process environment for
// the API-key lookups that follow.
func Load(path string) (*League, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league config: %w", err)
	}
	var cfg League
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse league config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("league config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *League) validate() error {
	if len(c.Teams) == 0 {
		return fmt.Errorf("teams list is empty")
	}
	seen := make(map[string]bool, len(c.Teams))
	for _, t := range c.Teams {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			return fmt.Errorf("blank team name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate team name: %s", t)
		}
		seen[name] = true
	}
	if c.ResolveThreshold < 0 || c.ResolveThreshold > 1 {
		return fmt.Errorf("resolve_threshold %v out of range [0,1]", c.ResolveThreshold)
	}
	for team := range c.SeedRosters {
		if !c.HasTeam(team) {
			return fmt.Errorf("seed_rosters names unknown team: %s", team)
		}
	}
	for team := range c.SeedBudgets {
		if !c.HasTeam(team) {
			return fmt.Errorf("seed_budgets names unknown team: %s", team)
		}
	}
	return nil
}

func (c *League) applyDefaults() {
	if c.Workbook == "" {
		c.Workbook = "data/league.xlsx"
	}
	if c.AdvisorModel == "" {
		c.AdvisorModel = "gemini-2.0-flash"
	}
}

// HasTeam reports whether name matches a canonical team, case-insensitively.
func (c *League) HasTeam(name string) bool {
	return c.Canonical(name) != ""
}

// Canonical returns the canonical spelling for a team name supplied by the
// user, or "" when it matches no team.
func (c *League) Canonical(name string) string {
	name = strings.TrimSpace(name)
	for _, t := range c.Teams {
		if strings.EqualFold(t, name) {
			return t
		}
	}
	return ""
}
