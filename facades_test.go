// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi_test

import (
	"encoding/json"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/luxfi/mcwebapi"
	"github.com/luxfi/mcwebapi/internal/mcwebapitest"
)

func openAPI(t *testing.T, srv *mcwebapitest.Server) *mcwebapi.API {
	t.Helper()
	api, err := mcwebapi.Open(t.Context(), testConfig(srv))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { api.Close() })
	return api
}

func rawArgs(req mcwebapitest.Request) string {
	data, _ := json.Marshal(req.Args)
	return string(data)
}

func TestPlayerFacade(t *testing.T) {
	srv := mcwebapitest.NewWebSocket(t)
	srv.Handle("player.getPosition", func(mcwebapitest.Request) (any, error) {
		return map[string]any{"x": 1.5, "y": 64, "z": -3.25, "level": "minecraft:overworld"}, nil
	})
	srv.Handle("player.getRotation", func(mcwebapitest.Request) (any, error) {
		return map[string]any{"yaw": 90, "pitch": -15}, nil
	})
	srv.Handle("player.teleport", func(mcwebapitest.Request) (any, error) { return nil, nil })
	api := openAPI(t, srv)

	pos, err := api.Player.GetPosition(t.Context(), "Steve")
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if pos != (mgl64.Vec3{1.5, 64, -3.25}) {
		t.Errorf("position = %v", pos)
	}

	rot, err := api.Player.GetRotation(t.Context(), "Steve")
	if err != nil {
		t.Fatalf("GetRotation: %v", err)
	}
	if rot.Yaw() != 90 || rot.Pitch() != -15 {
		t.Errorf("rotation = %v", rot)
	}

	if err := api.Player.Teleport(t.Context(), "Steve", mgl64.Vec3{0, 100, 0}); err != nil {
		t.Fatalf("Teleport: %v", err)
	}
	reqs := srv.Requests()
	if got, want := rawArgs(reqs[len(reqs)-1]), `["Steve",0,100,0]`; got != want {
		t.Errorf("teleport args = %s, want %s", got, want)
	}
}

func TestLevelAndBlockFacades(t *testing.T) {
	srv := mcwebapitest.NewWebSocket(t)
	state := func(mcwebapitest.Request) (any, error) {
		return map[string]any{"type": "minecraft:chest", "properties": map[string]string{"facing": "north"}}, nil
	}
	srv.Handle("level.getBlock", state)
	srv.Handle("world.getBlock", state)
	srv.Handle("block.getInventory", func(mcwebapitest.Request) (any, error) {
		return []map[string]any{{"slot": 0, "item": "minecraft:diamond", "count": 3}}, nil
	})
	srv.Handle("level.getSpawn", func(mcwebapitest.Request) (any, error) {
		return map[string]any{"x": -0.5, "y": 70, "z": 12.9}, nil
	})
	api := openAPI(t, srv)
	ctx := t.Context()
	pos := cube.Pos{10, 64, -5}

	want := mcwebapi.BlockState{Type: "minecraft:chest", Properties: map[string]string{"facing": "north"}}
	for _, get := range []func() (mcwebapi.BlockState, error){
		func() (mcwebapi.BlockState, error) { return api.Level.GetBlock(ctx, "minecraft:overworld", pos) },
		func() (mcwebapi.BlockState, error) { return api.World.GetBlock(ctx, "minecraft:overworld", pos) },
	} {
		got, err := get()
		if err != nil {
			t.Fatalf("GetBlock: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("block (-want +got):\n%s", diff)
		}
	}
	for _, req := range srv.Requests() {
		if got, want := rawArgs(req), `["minecraft:overworld",10,64,-5]`; got != want {
			t.Errorf("%s args = %s, want %s", req.Key(), got, want)
		}
	}

	items, err := api.Block.GetInventory(ctx, "minecraft:overworld", pos)
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if diff := cmp.Diff([]mcwebapi.ItemStack{{Slot: 0, Item: "minecraft:diamond", Count: 3}}, items); diff != "" {
		t.Errorf("inventory (-want +got):\n%s", diff)
	}

	spawn, err := api.Level.GetSpawn(ctx, "minecraft:overworld")
	if err != nil {
		t.Fatalf("GetSpawn: %v", err)
	}
	if spawn != (cube.Pos{-1, 70, 12}) {
		t.Errorf("spawn = %v", spawn)
	}
}

func TestEntityAndCommandFacades(t *testing.T) {
	id := uuid.New()
	srv := mcwebapitest.NewWebSocket(t)
	srv.Handle("entity.spawn", func(mcwebapitest.Request) (any, error) { return id.String(), nil })
	srv.Handle("command.executeCommand", func(req mcwebapitest.Request) (any, error) {
		var cmd string
		req.Arg(0, &cmd)
		return map[string]any{"success": true, "output": "ran " + cmd, "result": 1}, nil
	})
	api := openAPI(t, srv)

	got, err := api.Entity.Spawn(t.Context(), "minecraft:overworld", "minecraft:zombie", mgl64.Vec3{1, 2, 3})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if got != id {
		t.Errorf("uuid = %s, want %s", got, id)
	}

	res, err := api.Command.ExecuteCommand(t.Context(), "time set day")
	if err != nil {
		t.Fatalf("ExecuteCommand: %v", err)
	}
	if diff := cmp.Diff(mcwebapi.CommandResult{Success: true, Output: "ran time set day", Result: 1}, res); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}
}

func TestAPIModuleInvokeNamedArgs(t *testing.T) {
	srv := mcwebapitest.NewWebSocket(t)
	srv.Handle("player.kick", func(mcwebapitest.Request) (any, error) { return true, nil })
	api := openAPI(t, srv)

	p := api.Module("player").Invoke(t.Context(), "kick", mcwebapi.Named("reason", "afk"), "Steve")
	ok, err := mcwebapi.Await[bool](t.Context(), p)
	if err != nil || !ok {
		t.Fatalf("kick = %v, %v", ok, err)
	}
	if got, want := rawArgs(srv.Requests()[0]), `["Steve","afk"]`; got != want {
		t.Errorf("args = %s, want %s", got, want)
	}
}

func TestScoreboardFacade(t *testing.T) {
	srv := mcwebapitest.NewWebSocket(t)
	scores := map[string]int{}
	srv.Handle("scoreboard.createObjective", func(mcwebapitest.Request) (any, error) { return nil, nil })
	srv.Handle("scoreboard.listObjectives", func(mcwebapitest.Request) (any, error) {
		return []map[string]string{{"name": "kills", "displayName": "Kills", "criteria": "playerKillCount"}}, nil
	})
	srv.Handle("scoreboard.setScore", func(req mcwebapitest.Request) (any, error) {
		var target string
		var score int
		if err := req.Arg(1, &target); err != nil {
			return nil, err
		}
		if err := req.Arg(2, &score); err != nil {
			return nil, err
		}
		scores[target] = score
		return nil, nil
	})
	srv.Handle("scoreboard.getScore", func(req mcwebapitest.Request) (any, error) {
		var target string
		if err := req.Arg(1, &target); err != nil {
			return nil, err
		}
		return scores[target], nil
	})
	api := openAPI(t, srv)

	obj := mcwebapi.Objective{Name: "kills", DisplayName: "Kills", Criteria: "playerKillCount"}
	if err := api.Scoreboard.CreateObjective(t.Context(), obj); err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}
	if got, want := rawArgs(srv.Requests()[0]), `["kills","playerKillCount","Kills"]`; got != want {
		t.Errorf("createObjective args = %s, want %s", got, want)
	}

	objectives, err := api.Scoreboard.ListObjectives(t.Context())
	if err != nil {
		t.Fatalf("ListObjectives: %v", err)
	}
	if diff := cmp.Diff([]mcwebapi.Objective{obj}, objectives); diff != "" {
		t.Errorf("objectives (-want +got):\n%s", diff)
	}

	if err := api.Scoreboard.SetScore(t.Context(), "kills", "Steve", 7); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	score, err := api.Scoreboard.GetScore(t.Context(), "kills", "Steve")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if score != 7 {
		t.Errorf("score = %d, want 7", score)
	}
}
