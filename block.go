// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Block wraps the "block" module: single blocks and their inventories.
type Block struct {
	*Module
}

// NewBlock returns the block facade for caller.
func NewBlock(caller Caller) *Block {
	return &Block{NewModule("block", caller)}
}

// Get returns the block at pos.
func (b *Block) Get(ctx context.Context, levelID string, pos cube.Pos) (BlockState, error) {
	var state BlockState
	err := b.call(ctx, &state, "getBlock", levelID, pos.X(), pos.Y(), pos.Z())
	return state, err
}

// Set places blockType at pos.
func (b *Block) Set(ctx context.Context, levelID string, pos cube.Pos, blockType string) error {
	return b.call(ctx, nil, "setBlock", levelID, pos.X(), pos.Y(), pos.Z(), blockType)
}

// Break destroys the block at pos, optionally dropping its item.
func (b *Block) Break(ctx context.Context, levelID string, pos cube.Pos, drop bool) error {
	return b.call(ctx, nil, "breakBlock", levelID, pos.X(), pos.Y(), pos.Z(), drop)
}

// GetInventory returns the contents of a container block.
func (b *Block) GetInventory(ctx context.Context, levelID string, pos cube.Pos) ([]ItemStack, error) {
	var items []ItemStack
	err := b.call(ctx, &items, "getInventory", levelID, pos.X(), pos.Y(), pos.Z())
	return items, err
}
