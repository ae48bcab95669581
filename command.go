// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import "context"

// Command wraps the "command" module.
type Command struct {
	*Module
}

// NewCommand returns the command facade for caller.
func NewCommand(caller Caller) *Command {
	return &Command{NewModule("command", caller)}
}

// ExecuteCommand runs command on the server console, without a leading slash.
func (c *Command) ExecuteCommand(ctx context.Context, command string) (CommandResult, error) {
	var result CommandResult
	err := c.call(ctx, &result, "executeCommand", command)
	return result, err
}
