// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Entity wraps the "entity" module. Entities are addressed by UUID.
type Entity struct {
	*Module
}

// NewEntity returns the entity facade for caller.
func NewEntity(caller Caller) *Entity {
	return &Entity{NewModule("entity", caller)}
}

// Spawn creates an entity of entityType at pos and returns its UUID.
func (e *Entity) Spawn(ctx context.Context, levelID, entityType string, pos mgl64.Vec3) (uuid.UUID, error) {
	var id uuid.UUID
	err := e.call(ctx, &id, "spawn", levelID, entityType, pos.X(), pos.Y(), pos.Z())
	return id, err
}

// Remove despawns the entity.
func (e *Entity) Remove(ctx context.Context, id uuid.UUID) error {
	return e.call(ctx, nil, "remove", id.String())
}

// Teleport moves the entity to pos.
func (e *Entity) Teleport(ctx context.Context, id uuid.UUID, pos mgl64.Vec3) error {
	return e.call(ctx, nil, "teleport", id.String(), pos.X(), pos.Y(), pos.Z())
}

// List returns the entities loaded in a level.
func (e *Entity) List(ctx context.Context, levelID string) ([]EntityInfo, error) {
	var entities []EntityInfo
	err := e.call(ctx, &entities, "list", levelID)
	return entities, err
}
