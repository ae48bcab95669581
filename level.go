// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Level wraps the "level" module. Levels are addressed by id, for example
// "minecraft:overworld".
type Level struct {
	*Module
}

// NewLevel returns the level facade for caller.
func NewLevel(caller Caller) *Level {
	return &Level{NewModule("level", caller)}
}

// World wraps the "world" module, which exposes the same operations as
// Level on servers that still use the older name.
type World struct {
	*Level
}

// NewWorld returns the world facade for caller.
func NewWorld(caller Caller) *World {
	return &World{&Level{NewModule("world", caller)}}
}

// GetBlock returns the block at pos.
func (l *Level) GetBlock(ctx context.Context, levelID string, pos cube.Pos) (BlockState, error) {
	var state BlockState
	err := l.call(ctx, &state, "getBlock", levelID, pos.X(), pos.Y(), pos.Z())
	return state, err
}

// SetBlock places blockType at pos.
func (l *Level) SetBlock(ctx context.Context, levelID string, pos cube.Pos, blockType string) error {
	return l.call(ctx, nil, "setBlock", levelID, pos.X(), pos.Y(), pos.Z(), blockType)
}

// GetTime returns the level's day time in ticks.
func (l *Level) GetTime(ctx context.Context, levelID string) (int64, error) {
	var ticks int64
	err := l.call(ctx, &ticks, "getTime", levelID)
	return ticks, err
}

// SetTime sets the level's day time in ticks.
func (l *Level) SetTime(ctx context.Context, levelID string, ticks int64) error {
	return l.call(ctx, nil, "setTime", levelID, ticks)
}

// GetWeather returns the level's weather, e.g. "clear" or "rain".
func (l *Level) GetWeather(ctx context.Context, levelID string) (string, error) {
	var weather string
	err := l.call(ctx, &weather, "getWeather", levelID)
	return weather, err
}

// SetWeather changes the level's weather.
func (l *Level) SetWeather(ctx context.Context, levelID, weather string) error {
	return l.call(ctx, nil, "setWeather", levelID, weather)
}

// GetSpawn returns the level's spawn point.
func (l *Level) GetSpawn(ctx context.Context, levelID string) (cube.Pos, error) {
	var pos Position
	if err := l.call(ctx, &pos, "getSpawn", levelID); err != nil {
		return cube.Pos{}, err
	}
	return pos.BlockPos(), nil
}
