// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Position is a point in a level as the server reports it.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Level string  `json:"level,omitempty"`
}

// Vec3 returns the position as a vector.
func (p Position) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// BlockPos returns the block containing the position.
func (p Position) BlockPos() cube.Pos {
	return cube.Pos{int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(p.Z))}
}

// Rotation is a yaw/pitch pair in degrees.
type Rotation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Cube returns the rotation as a cube.Rotation.
func (r Rotation) Cube() cube.Rotation {
	return cube.Rotation{r.Yaw, r.Pitch}
}

// PlayerInfo describes an online player.
type PlayerInfo struct {
	Name      string    `json:"name"`
	UUID      uuid.UUID `json:"uuid"`
	Health    float64   `json:"health"`
	MaxHealth float64   `json:"maxHealth"`
	Food      int       `json:"food"`
	XPLevel   int       `json:"xpLevel"`
	GameMode  string    `json:"gameMode"`
	Position  Position  `json:"position"`
	Rotation  Rotation  `json:"rotation"`
	Ping      int       `json:"ping"`
}

// BlockState is a block type with its state properties.
type BlockState struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ItemStack is one inventory slot.
type ItemStack struct {
	Slot  int    `json:"slot"`
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// EntityInfo describes a loaded entity.
type EntityInfo struct {
	UUID     uuid.UUID `json:"uuid"`
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Position Position  `json:"position"`
	Health   float64   `json:"health,omitempty"`
}

// ServerInfo is the server's self-description.
type ServerInfo struct {
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	MOTD          string  `json:"motd"`
	OnlinePlayers int     `json:"onlinePlayers"`
	MaxPlayers    int     `json:"maxPlayers"`
	TPS           float64 `json:"tps"`
}

// CommandResult is the outcome of a server command.
type CommandResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Result  int    `json:"result"`
}

// Objective is a scoreboard objective.
type Objective struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Criteria    string `json:"criteria"`
}
