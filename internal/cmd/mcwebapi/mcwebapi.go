// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mcwebapi parses CLI flags and performs a single call.
package mcwebapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/luxfi/mcwebapi"
)

// Config holds command configuration.
type Config struct {
	Client  mcwebapi.Config
	Verbose bool
	Module  string
	Method  string
	Args    []any
}

var namedArg = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// ParseConfig loads MCWEBAPI_* defaults from the environment, then lets
// flags override them. The remaining arguments are <module> <method> [args...].
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	client, err := mcwebapi.ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Client: client}

	fs.StringVar(&cfg.Client.Host, "host", cfg.Client.Host, "game server host")
	fs.IntVar(&cfg.Client.Port, "port", cfg.Client.Port, "game server port")
	fs.StringVar(&cfg.Client.AuthKey, "key", cfg.Client.AuthKey, "auth key")
	fs.DurationVar(&cfg.Client.Timeout, "timeout", cfg.Client.Timeout, "per-call timeout")
	fs.StringVar(&cfg.Client.Transport, "transport", cfg.Client.Transport, "transport: ws or tcp")
	fs.BoolVar(&cfg.Client.TLS, "tls", cfg.Client.TLS, "use wss://")
	fs.BoolVar(&cfg.Verbose, "v", false, "debug logging")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return Config{}, errors.New("usage: mcwebapi [flags] <module> <method> [args...]")
	}
	cfg.Module, cfg.Method = rest[0], rest[1]
	for _, arg := range rest[2:] {
		cfg.Args = append(cfg.Args, parseArg(arg))
	}
	return cfg, nil
}

// parseArg turns name=value into a named argument and keeps valid JSON
// as-is; anything else is sent as a string.
func parseArg(arg string) any {
	if m := namedArg.FindStringSubmatch(arg); m != nil {
		return mcwebapi.Named(m[1], parseValue(m[2]))
	}
	return parseValue(arg)
}

func parseValue(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}

// Run connects, performs the call and writes the indented JSON result to out.
func Run(ctx context.Context, cfg Config, out, logOut io.Writer) error {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	api, err := mcwebapi.Open(ctx, cfg.Client, mcwebapi.WithLogger(logger))
	if err != nil {
		return err
	}
	defer api.Close()

	raw, err := api.Module(cfg.Module).Invoke(ctx, cfg.Method, cfg.Args...).WaitContext(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(out)
	return err
}
