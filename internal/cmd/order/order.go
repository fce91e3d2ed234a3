// Package order parses order command flags and composes transport entrypoints.
package order

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/tableside/internal/platform/cmd"
	server "github.com/louisbranch/tableside/internal/services/order/app"
)

// Config holds order command configuration.
type Config struct {
	HTTPAddr string `env:"TABLESIDE_ORDER_HTTP_ADDR" envDefault:":8080"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "order HTTP listen address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the order app and starts realtime transport behavior.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOrder, func(context.Context) error {
		if err := server.Run(ctx, server.Config{HTTPAddr: cfg.HTTPAddr}); err != nil {
			return fmt.Errorf("serve order: %w", err)
		}
		return nil
	})
}
