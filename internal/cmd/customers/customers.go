// Package customers parses customers command flags and composes transport entrypoints.
package customers

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/tableside/internal/platform/cmd"
	server "github.com/louisbranch/tableside/internal/services/customers/app"
)

// Config holds customers command configuration.
type Config struct {
	HTTPAddr string `env:"TABLESIDE_CUSTOMERS_HTTP_ADDR" envDefault:":8081"`
	DBPath   string `env:"TABLESIDE_CUSTOMERS_DB_PATH"   envDefault:"data/customers.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "customers HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "customers SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the customers app and starts HTTP transport behavior.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCustomers, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
		}); err != nil {
			return fmt.Errorf("serve customers: %w", err)
		}
		return nil
	})
}
