// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package main calls one method on a game server and prints the result.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcwebapicmd "github.com/luxfi/mcwebapi/internal/cmd/mcwebapi"
)

func main() {
	cfg, err := mcwebapicmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcwebapicmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("call %s.%s: %v", cfg.Module, cfg.Method, err)
	}
}
