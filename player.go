// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Player wraps the "player" module. Players are addressed by name.
type Player struct {
	*Module
}

// NewPlayer returns the player facade for caller.
func NewPlayer(caller Caller) *Player {
	return &Player{NewModule("player", caller)}
}

// GetHealth returns the player's current health.
func (p *Player) GetHealth(ctx context.Context, name string) (float64, error) {
	var health float64
	err := p.call(ctx, &health, "getHealth", name)
	return health, err
}

// SetHealth sets the player's health.
func (p *Player) SetHealth(ctx context.Context, name string, health float64) error {
	return p.call(ctx, nil, "setHealth", name, health)
}

// GetPosition returns the player's position.
func (p *Player) GetPosition(ctx context.Context, name string) (mgl64.Vec3, error) {
	var pos Position
	if err := p.call(ctx, &pos, "getPosition", name); err != nil {
		return mgl64.Vec3{}, err
	}
	return pos.Vec3(), nil
}

// Teleport moves the player to pos in their current level.
func (p *Player) Teleport(ctx context.Context, name string, pos mgl64.Vec3) error {
	return p.call(ctx, nil, "teleport", name, pos.X(), pos.Y(), pos.Z())
}

// GetRotation returns the player's yaw and pitch.
func (p *Player) GetRotation(ctx context.Context, name string) (cube.Rotation, error) {
	var rot Rotation
	if err := p.call(ctx, &rot, "getRotation", name); err != nil {
		return cube.Rotation{}, err
	}
	return rot.Cube(), nil
}

// GetInfo returns a snapshot of the player.
func (p *Player) GetInfo(ctx context.Context, name string) (PlayerInfo, error) {
	var info PlayerInfo
	err := p.call(ctx, &info, "getInfo", name)
	return info, err
}

// GetUUID returns the player's UUID.
func (p *Player) GetUUID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := p.call(ctx, &id, "getUUID", name)
	return id, err
}

// SendMessage sends a chat message to the player.
func (p *Player) SendMessage(ctx context.Context, name, message string) error {
	return p.call(ctx, nil, "sendMessage", name, message)
}

// GetGameMode returns the player's game mode, e.g. "survival".
func (p *Player) GetGameMode(ctx context.Context, name string) (string, error) {
	var mode string
	err := p.call(ctx, &mode, "getGameMode", name)
	return mode, err
}

// SetGameMode changes the player's game mode.
func (p *Player) SetGameMode(ctx context.Context, name, mode string) error {
	return p.call(ctx, nil, "setGameMode", name, mode)
}
