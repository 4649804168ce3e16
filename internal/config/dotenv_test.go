package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDotEnv(t *testing.T) {
	src := `
# comment

A=one
export B=two
C="three # not a comment"
D='single quoted'
E=value # trailing comment
noequals
=novalue
`
	pairs, err := parseDotEnv(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parseDotEnv: %v", err)
	}

	want := [][2]string{
		{"A", "one"},
		{"B", "two"},
		{"C", "three # not a comment"},
		{"D", "single quoted"},
		{"E", "value"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs %v, want %d", len(pairs), pairs, len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pair %d = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("KEEP", "already")
	t.Setenv("FILL", "")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("KEEP=fromfile\nFILL=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("KEEP"); got != "already" {
		t.Fatalf("KEEP=%q, want %q", got, "already")
	}
	if got := os.Getenv("FILL"); got != "fromfile" {
		t.Fatalf("FILL=%q, want %q", got, "fromfile")
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "LOG_FORMAT", "RULES_FILE", "GLOBAL_CONTRACT_MONTHS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.GlobalContractMonths != 12 {
		t.Fatalf("GlobalContractMonths=%d, want 12", cfg.GlobalContractMonths)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("GLOBAL_CONTRACT_MONTHS", "24")
	t.Setenv("RULES_FILE", "rules.hcl")

	cfg := Load()
	if cfg.IsDev() {
		t.Fatalf("production must not be dev")
	}
	if cfg.Port != "9090" || cfg.GlobalContractMonths != 24 || cfg.RulesFile != "rules.hcl" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("GLOBAL_CONTRACT_MONTHS", "two years")
	if got := Load().GlobalContractMonths; got != 12 {
		t.Fatalf("invalid months should fall back, got %d", got)
	}
}
