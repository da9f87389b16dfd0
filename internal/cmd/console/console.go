// Package console parses console command flags and launches the admin
// console HTTP server.
package console

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/sikiya/sikiya-console/internal/platform/cmd"
	"github.com/sikiya/sikiya-console/internal/platform/config"
	"github.com/sikiya/sikiya-console/internal/random"
	consoleservice "github.com/sikiya/sikiya-console/internal/services/console"
)

const (
	defaultAPIURL = "http://localhost:3000"
	defaultCDNURL = "https://d1flj35lnh82ng.cloudfront.net"

	keyLength = 32
)

// Legacy browser-bundle names are still honored after the SIKIYA_ ones.
var (
	apiURLEnv = []string{"SIKIYA_API_URL", "NEXT_PUBLIC_API_URL"}
	cdnURLEnv = []string{"SIKIYA_CLOUDFRONT_URL", "NEXT_PUBLIC_CLOUDFRONT_URL"}
)

// Config holds console command configuration.
type Config struct {
	HTTPAddr string `env:"SIKIYA_CONSOLE_HTTP_ADDR" envDefault:"localhost:8090"`
	// APIURL and CDNURL are resolved through their alias lists.
	APIURL              string
	CDNURL              string
	DBPath              string        `env:"SIKIYA_CONSOLE_DB_PATH" envDefault:"data/console.db"`
	SessionSecret       string        `env:"SIKIYA_SESSION_SECRET"`
	SessionTTL          time.Duration `env:"SIKIYA_SESSION_TTL" envDefault:"720h"`
	CSRFKey             string        `env:"SIKIYA_CSRF_KEY"`
	SecureCookies       bool          `env:"SIKIYA_SECURE_COOKIES"`
	TrustForwardedProto bool          `env:"SIKIYA_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.EnvLookup) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.APIURL = config.FirstEnv(lookup, apiURLEnv, defaultAPIURL)
	cfg.CDNURL = config.FirstEnv(lookup, cdnURLEnv, defaultCDNURL)

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The console HTTP listen address")
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "The news API base URL")
	fs.StringVar(&cfg.CDNURL, "cdn-url", cfg.CDNURL, "The image CDN base URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The session database path")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the console server.
func Run(ctx context.Context, cfg Config) error {
	secret, err := sessionSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}
	csrfKey, err := decodeCSRFKey(cfg.CSRFKey)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceConsole, func(ctx context.Context) error {
		server, err := consoleservice.NewServer(ctx, consoleservice.Config{
			HTTPAddr:            cfg.HTTPAddr,
			APIBaseURL:          cfg.APIURL,
			CDNBaseURL:          cfg.CDNURL,
			SessionDBPath:       cfg.DBPath,
			SessionSecret:       secret,
			SessionTTL:          cfg.SessionTTL,
			CSRFKey:             csrfKey,
			SecureCookies:       cfg.SecureCookies,
			TrustForwardedProto: cfg.TrustForwardedProto,
		})
		if err != nil {
			return fmt.Errorf("init console server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve console: %w", err)
		}
		return nil
	})
}

func sessionSecret(value string) ([]byte, error) {
	if value != "" {
		if len(value) < keyLength {
			return nil, fmt.Errorf("SIKIYA_SESSION_SECRET must be at least %d bytes", keyLength)
		}
		return []byte(value), nil
	}
	log.Printf("SIKIYA_SESSION_SECRET is not set; sessions will not survive a restart")
	return random.Key(keyLength)
}

// decodeCSRFKey accepts a raw 32-byte key or its hex encoding. An empty value
// yields a per-process key.
func decodeCSRFKey(value string) ([]byte, error) {
	switch len(value) {
	case 0:
		return random.Key(keyLength)
	case keyLength:
		return []byte(value), nil
	case hex.EncodedLen(keyLength):
		key, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decode SIKIYA_CSRF_KEY: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("SIKIYA_CSRF_KEY must be %d bytes or %d hex characters", keyLength, hex.EncodedLen(keyLength))
	}
}
