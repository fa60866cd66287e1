package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// ExcludeRule hides players from views and reports, optionally only for
// players enrolled inside a date window.
type ExcludeRule struct {
	Pattern string `yaml:"pattern"`
	Before  string `yaml:"before,omitempty"` // Exclude only players enrolled before this date (YYYY-MM-DD)
	After   string `yaml:"after,omitempty"`  // Exclude only players enrolled on or after this date (YYYY-MM-DD)

	// compiled fields
	regex      *regexp.Regexp `yaml:"-"`
	beforeDate time.Time      `yaml:"-"`
	afterDate  time.Time      `yaml:"-"`
}

type Config struct {
	// Academy is the academy name used when the data source has none
	Academy string `yaml:"academy,omitempty"`

	// Currency is an ISO 4217 code, e.g. ILS
	Currency string `yaml:"currency,omitempty"`

	// Database is the SQLite file used by the recording commands
	Database string `yaml:"database,omitempty"`

	// LogLevel is a zap level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFile enables a rotated log file next to stderr logging
	LogFile string `yaml:"log_file,omitempty"`

	// Notes maps player names to a free-text note shown in detail views
	Notes map[string]string `yaml:"notes,omitempty"`

	// Exclude is a list of exclusion rules (can be strings or objects with time bounds)
	Exclude []yaml.Node `yaml:"exclude,omitempty"`

	// compiled exclusion rules (not serialized)
	excludeRules []ExcludeRule `yaml:"-"`
}

// DefaultConfigPath returns the default config file path (~/.acad/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".acad", "config.yaml")
}

// DefaultDatabasePath returns the default SQLite file (~/.acad/academy.db)
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "academy.db"
	}
	return filepath.Join(home, ".acad", "academy.db")
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes and compiles its exclude rules.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for _, node := range cfg.Exclude {
		rule, err := compileExcludeRule(node)
		if err != nil {
			return nil, err
		}
		cfg.excludeRules = append(cfg.excludeRules, rule)
	}

	if cfg.Currency != "" {
		if _, err := parseISOCurrency(cfg.Currency); err != nil {
			return nil, fmt.Errorf("invalid currency %q: %w", cfg.Currency, err)
		}
	}

	return &cfg, nil
}

// compileExcludeRule accepts a bare pattern or a {pattern, before, after}
// mapping. Patterns match case-insensitively.
func compileExcludeRule(node yaml.Node) (ExcludeRule, error) {
	var rule ExcludeRule
	switch node.Kind {
	case yaml.ScalarNode:
		rule.Pattern = node.Value
	case yaml.MappingNode:
		if err := node.Decode(&rule); err != nil {
			return rule, fmt.Errorf("exclude rule at line %d: %w", node.Line, err)
		}
	default:
		return rule, fmt.Errorf("exclude rule at line %d: want a pattern or a mapping", node.Line)
	}

	var err error
	if rule.regex, err = regexp.Compile("(?i)" + rule.Pattern); err != nil {
		return rule, fmt.Errorf("exclude pattern %q: %w", rule.Pattern, err)
	}
	if rule.Before != "" {
		if rule.beforeDate, err = ParseDate(rule.Before); err != nil {
			return rule, fmt.Errorf("exclude %q before: %w", rule.Pattern, err)
		}
	}
	if rule.After != "" {
		if rule.afterDate, err = ParseDate(rule.After); err != nil {
			return rule, fmt.Errorf("exclude %q after: %w", rule.Pattern, err)
		}
	}
	return rule, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ShouldExclude returns true if the player matches any exclude rule, taking
// the rule's enrollment window into account.
func (c *Config) ShouldExclude(p Player) bool {
	if c == nil {
		return false
	}
	for _, rule := range c.excludeRules {
		if !rule.regex.MatchString(p.Name) {
			continue
		}
		if !rule.beforeDate.IsZero() && !p.EnrollmentDate.Before(rule.beforeDate) {
			continue
		}
		if !rule.afterDate.IsZero() && p.EnrollmentDate.Before(rule.afterDate) {
			continue
		}
		return true
	}
	return false
}

// FilterExcluded drops excluded players and returns how many were dropped.
func (c *Config) FilterExcluded(players []Player) ([]Player, int) {
	if c == nil || len(c.excludeRules) == 0 {
		return players, 0
	}
	kept := make([]Player, 0, len(players))
	for _, p := range players {
		if !c.ShouldExclude(p) {
			kept = append(kept, p)
		}
	}
	return kept, len(players) - len(kept)
}

// GetNote returns the note for a player, or empty string
func (c *Config) GetNote(name string) string {
	if c == nil || c.Notes == nil {
		return ""
	}
	return c.Notes[name]
}

// GenerateConfigTemplate creates a config template with an empty note for
// every player, ready to be filled in.
func GenerateConfigTemplate(academy string, players []Player) *Config {
	cfg := &Config{
		Academy:  academy,
		Currency: DefaultCurrency,
		Notes:    make(map[string]string),
	}
	for _, p := range players {
		cfg.Notes[p.Name] = ""
	}
	return cfg
}
