package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
academy: Falcons
currency: ILS
log_level: debug
notes:
  Omar: pays on the 5th
exclude:
  - "^test"
  - pattern: "Sami"
    before: "2023-01-01"
  - pattern: "Lina"
    after: "2024-01-01"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Academy != "Falcons" || cfg.Currency != "ILS" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected scalar fields: %+v", cfg)
	}
	if got := cfg.GetNote("Omar"); got != "pays on the 5th" {
		t.Errorf("GetNote(Omar) = %q", got)
	}
	if got := cfg.GetNote("Nobody"); got != "" {
		t.Errorf("GetNote(Nobody) = %q, want empty", got)
	}
	if len(cfg.excludeRules) != 3 {
		t.Fatalf("excludeRules = %d, want 3", len(cfg.excludeRules))
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad regex", "exclude:\n  - \"[\"\n", "exclude pattern \"[\""},
		{"bad before date", "exclude:\n  - pattern: x\n    before: 2023/01/01\n", "exclude \"x\" before: invalid date"},
		{"bad after date", "exclude:\n  - pattern: x\n    after: soon\n", "exclude \"x\" after: invalid date"},
		{"sequence rule", "exclude:\n  - [a, b]\n", "want a pattern or a mapping"},
		{"bad currency", "currency: shekels\n", "invalid currency"},
		{"not yaml", "academy: [", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ShouldExclude(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	tests := []struct {
		name   string
		player Player
		want   bool
	}{
		{"plain pattern, case-insensitive", Player{Name: "Test Player", EnrollmentDate: date("2023-05-01")}, true},
		{"no match", Player{Name: "Omar", EnrollmentDate: date("2023-05-01")}, false},
		{"before window matches", Player{Name: "Sami", EnrollmentDate: date("2022-06-01")}, true},
		{"before window misses", Player{Name: "Sami", EnrollmentDate: date("2023-01-01")}, false},
		{"after window matches", Player{Name: "Lina", EnrollmentDate: date("2024-01-01")}, true},
		{"after window misses", Player{Name: "Lina", EnrollmentDate: date("2023-12-31")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ShouldExclude(tt.player); got != tt.want {
				t.Errorf("ShouldExclude(%s) = %v, want %v", tt.player.Name, got, tt.want)
			}
		})
	}
}

func TestConfig_NilIsPermissive(t *testing.T) {
	var cfg *Config
	if cfg.ShouldExclude(Player{Name: "anyone"}) {
		t.Error("nil config must not exclude")
	}
	players, dropped := cfg.FilterExcluded(testPlayers())
	if len(players) != 3 || dropped != 0 {
		t.Errorf("FilterExcluded on nil config = %d kept, %d dropped", len(players), dropped)
	}
}

func TestConfig_FilterExcluded(t *testing.T) {
	cfg, err := ParseConfig([]byte("exclude:\n  - football-free\n  - ^sami$\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	players, dropped := cfg.FilterExcluded(testPlayers())
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	for _, p := range players {
		if p.Name == "Sami" {
			t.Error("Sami should have been excluded")
		}
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GenerateConfigTemplate("Falcons", testPlayers())
	cfg.Notes["Omar"] = "sibling discount"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Academy != "Falcons" || loaded.Currency != DefaultCurrency {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Notes) != 3 {
		t.Errorf("Notes = %d entries, want 3", len(loaded.Notes))
	}
	if loaded.GetNote("Omar") != "sibling discount" {
		t.Errorf("GetNote(Omar) = %q", loaded.GetNote("Omar"))
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("err = %v, want reading config file error", err)
	}
}
