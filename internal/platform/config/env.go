package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FirstEnv returns the first non-blank value among keys, or fallback.
//
// It covers settings that accept legacy aliases (for example the
// NEXT_PUBLIC_* names used by the previous browser bundle).
func FirstEnv(lookup EnvLookup, keys []string, fallback string) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keys {
		value, ok := lookup(key)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
