// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults match the stock server plugin configuration.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 8765
	DefaultAuthKey = "default-secret-key-change-me"
	DefaultTimeout = 10 * time.Second
)

// Config is the connection configuration. The auth key is an opaque
// credential and is redacted whenever the config is logged.
type Config struct {
	Host      string        `env:"MCWEBAPI_HOST"      envDefault:"localhost"`
	Port      int           `env:"MCWEBAPI_PORT"      envDefault:"8765"`
	AuthKey   string        `env:"MCWEBAPI_AUTH_KEY"  envDefault:"default-secret-key-change-me"`
	Timeout   time.Duration `env:"MCWEBAPI_TIMEOUT"   envDefault:"10s"`
	Transport string        `env:"MCWEBAPI_TRANSPORT" envDefault:"ws"`
	Path      string        `env:"MCWEBAPI_PATH"      envDefault:"/"`
	TLS       bool          `env:"MCWEBAPI_TLS"`

	// MaxPending caps in-flight requests; 0 means unbounded.
	MaxPending int `env:"MCWEBAPI_MAX_PENDING"`
	// ConnectRetries is how many extra Connect attempts are made, with
	// exponential backoff, when dialing or the handshake fails.
	ConnectRetries uint `env:"MCWEBAPI_CONNECT_RETRIES"`
	// RateLimit caps outgoing requests per second; 0 disables limiting.
	RateLimit float64 `env:"MCWEBAPI_RATE_LIMIT"`
	RateBurst int     `env:"MCWEBAPI_RATE_BURST" envDefault:"1"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		AuthKey:   DefaultAuthKey,
		Timeout:   DefaultTimeout,
		Transport: DefaultTransport,
		Path:      "/",
		RateBurst: 1,
	}
}

// ConfigFromEnv loads configuration from MCWEBAPI_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the WebSocket endpoint.
func (c Config) URL() string {
	u := url.URL{Scheme: "ws", Host: c.Addr(), Path: c.Path}
	if c.TLS {
		u.Scheme = "wss"
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("negative timeout %s", c.Timeout))
	}
	if c.MaxPending < 0 {
		errs = append(errs, fmt.Errorf("negative max pending %d", c.MaxPending))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("negative rate limit %v", c.RateLimit))
	}
	if c.Transport != "" && !HasTransport(c.Transport) {
		errs = append(errs, fmt.Errorf("unknown transport %q (available: %s)",
			c.Transport, strings.Join(AvailableTransports(), ", ")))
	}
	return errors.Join(errs...)
}

// LogValue implements slog.LogValuer and never exposes the auth key.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr()),
		slog.String("transport", c.Transport),
		slog.Duration("timeout", c.Timeout),
		slog.Bool("tls", c.TLS),
		slog.String("auth_key", "[redacted]"),
	)
}
