package events_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/testutil"
)

func TestLogSink(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink := events.NewLogSink(logger)

	sink.Emit(events.Event{Kind: events.MiningSucceeded, BlockID: 2, Nonce: 42, Hash: "0000ab", Attempts: 42})
	sink.Emit(events.Event{Kind: events.MiningProgress, BlockID: 2, Attempts: 10})
	sink.Emit(events.Event{Kind: events.BlockRejected, BlockID: 3, Err: errors.New("wrong previous hash")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "debug progress events are filtered at info level")

	var mined map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &mined))
	assert.Equal(t, "Block mined", mined["msg"])
	assert.Equal(t, float64(42), mined["nonce"])
	assert.Equal(t, "0000ab", mined["hash"])

	var rejected map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rejected))
	assert.Equal(t, "WARN", rejected["level"])
	assert.Equal(t, "wrong previous hash", rejected["error"])
}

func TestMulti(t *testing.T) {
	a := testutil.NewRecorder()
	b := testutil.NewRecorder()
	sink := events.Multi(a, nil, b, events.Nop)

	sink.Emit(events.Event{Kind: events.BlockAccepted, BlockID: 1})

	assert.Equal(t, []events.Kind{events.BlockAccepted}, a.Kinds())
	assert.Equal(t, []events.Kind{events.BlockAccepted}, b.Kinds())
}
