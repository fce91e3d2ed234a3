// Package main starts the order real-time service and handles termination.
//
// The process is a transport adapter around table room lifecycle and order
// event fan-out so order accounting remains owned by the table domain.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	ordercmd "github.com/louisbranch/tableside/internal/cmd/order"
)

func main() {
	cfg, err := ordercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ORDER] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ordercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
