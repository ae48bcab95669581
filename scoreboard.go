// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import "context"

// Scoreboard wraps the "scoreboard" module.
type Scoreboard struct {
	*Module
}

// NewScoreboard returns the scoreboard facade for caller.
func NewScoreboard(caller Caller) *Scoreboard {
	return &Scoreboard{NewModule("scoreboard", caller)}
}

// CreateObjective adds obj to the scoreboard.
func (s *Scoreboard) CreateObjective(ctx context.Context, obj Objective) error {
	return s.call(ctx, nil, "createObjective", obj.Name, obj.Criteria, obj.DisplayName)
}

// RemoveObjective deletes the named objective.
func (s *Scoreboard) RemoveObjective(ctx context.Context, name string) error {
	return s.call(ctx, nil, "removeObjective", name)
}

// ListObjectives returns every objective.
func (s *Scoreboard) ListObjectives(ctx context.Context) ([]Objective, error) {
	var objectives []Objective
	err := s.call(ctx, &objectives, "listObjectives")
	return objectives, err
}

// GetScore returns target's score for objective.
func (s *Scoreboard) GetScore(ctx context.Context, objective, target string) (int, error) {
	var score int
	err := s.call(ctx, &score, "getScore", objective, target)
	return score, err
}

// SetScore sets target's score for objective.
func (s *Scoreboard) SetScore(ctx context.Context, objective, target string, score int) error {
	return s.call(ctx, nil, "setScore", objective, target, score)
}
