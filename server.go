// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import "context"

// Server wraps the "server" module: administration and status.
type Server struct {
	*Module
}

// NewServer returns the server facade for caller.
func NewServer(caller Caller) *Server {
	return &Server{NewModule("server", caller)}
}

// GetInfo returns the server's name, version and load.
func (s *Server) GetInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := s.call(ctx, &info, "getInfo")
	return info, err
}

// GetOnlinePlayers returns the names of online players.
func (s *Server) GetOnlinePlayers(ctx context.Context) ([]string, error) {
	var names []string
	err := s.call(ctx, &names, "getOnlinePlayers")
	return names, err
}

// Broadcast sends message to every online player.
func (s *Server) Broadcast(ctx context.Context, message string) error {
	return s.call(ctx, nil, "broadcast", message)
}

// GetTPS returns the current ticks per second.
func (s *Server) GetTPS(ctx context.Context) (float64, error) {
	var tps float64
	err := s.call(ctx, &tps, "getTPS")
	return tps, err
}
