package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Addr string `env:"SIKIYA_TEST_ADDR" envDefault:"localhost:8090"`
	Port int    `env:"SIKIYA_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Addr != "localhost:8090" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SIKIYA_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestFirstEnv(t *testing.T) {
	lookup := func(key string) (string, bool) {
		switch key {
		case "BLANK":
			return "   ", true
		case "LEGACY":
			return " http://api.example.com ", true
		case "PRIMARY":
			return "http://primary.example.com", true
		default:
			return "", false
		}
	}

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "first present wins", keys: []string{"PRIMARY", "LEGACY"}, want: "http://primary.example.com"},
		{name: "skips blank and missing", keys: []string{"MISSING", "BLANK", "LEGACY"}, want: "http://api.example.com"},
		{name: "fallback", keys: []string{"MISSING"}, want: "fallback"},
		{name: "no keys", keys: nil, want: "fallback"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FirstEnv(lookup, tc.keys, "fallback"); got != tc.want {
				t.Fatalf("FirstEnv() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFirstEnvDefaultsToProcessEnv(t *testing.T) {
	t.Setenv("SIKIYA_TEST_FIRST_ENV", "from-process")
	if got := FirstEnv(nil, []string{"SIKIYA_TEST_FIRST_ENV"}, ""); got != "from-process" {
		t.Fatalf("FirstEnv() = %q, want %q", got, "from-process")
	}
}
