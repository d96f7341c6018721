package server_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

func startTestActor(t *testing.T) server.Handle {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := server.New(config.Snapshot{MaxPlayers: 20, Motd: "test"})
	go s.Run(ctx)
	return s.Handle()
}

func TestGetServerStatusReflectsRoster(t *testing.T) {
	h := startTestActor(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, h.JoinGame(ctx, server.Player{UUID: uuid.New(), Username: "Alex"}))

	raw, err := h.GetServerStatus(ctx)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	players := decoded["players"].(map[string]any)
	assert.Equal(t, float64(1), players["online"])

	version := decoded["version"].(map[string]any)
	assert.Equal(t, float64(756), version["protocol"])
}

func TestGetDimensionInfoReturnsNonEmptyBlobs(t *testing.T) {
	h := startTestActor(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	info, err := h.GetDimensionInfo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Codec)
	assert.NotEmpty(t, info.CurrentDim)
	assert.Equal(t, "hieronymus:wonderland", info.WorldName)
}
