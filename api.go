// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import "context"

// API bundles a Conn with one facade per server module.
type API struct {
	conn *Conn

	Player     *Player
	Level      *Level
	World      *World
	Command    *Command
	Block      *Block
	Entity     *Entity
	Scoreboard *Scoreboard
	Server     *Server
}

// New returns a disconnected API for cfg.
func New(cfg Config, opts ...Option) *API {
	conn := NewConn(cfg, opts...)
	return &API{
		conn:       conn,
		Player:     NewPlayer(conn),
		Level:      NewLevel(conn),
		World:      NewWorld(conn),
		Command:    NewCommand(conn),
		Block:      NewBlock(conn),
		Entity:     NewEntity(conn),
		Scoreboard: NewScoreboard(conn),
		Server:     NewServer(conn),
	}
}

// NewFromEnv is New with configuration read from MCWEBAPI_* variables.
func NewFromEnv(opts ...Option) (*API, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...), nil
}

// Open connects a new API. The caller must Close it.
//
//	api, err := mcwebapi.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer api.Close()
func Open(ctx context.Context, cfg Config, opts ...Option) (*API, error) {
	api := New(cfg, opts...)
	if err := api.Connect(ctx); err != nil {
		return nil, err
	}
	return api, nil
}

func (a *API) Connect(ctx context.Context) error {
	return a.conn.Connect(ctx)
}

func (a *API) Close() error {
	return a.conn.Disconnect()
}

func (a *API) IsConnected() bool {
	return a.conn.IsConnected()
}

func (a *API) IsAuthenticated() bool {
	return a.conn.IsAuthenticated()
}

// Conn returns the underlying connection.
func (a *API) Conn() *Conn {
	return a.conn
}

// Module returns a proxy for a module without a typed facade.
func (a *API) Module(name string) *Module {
	return NewModule(name, a.conn)
}
