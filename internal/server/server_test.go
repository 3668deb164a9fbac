package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/powchain/internal/ledger"
	"github.com/manifest-network/powchain/internal/metrics"
	"github.com/manifest-network/powchain/internal/metrics/collectors"
	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/server"
)

func newChain(t *testing.T) (*ledger.Ledger, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(reg)
	require.NoError(t, err)

	l := ledger.New(ledger.WithSink(sink))
	cs, err := collectors.DefaultRegistry.CreateCollectors(l)
	require.NoError(t, err)
	reg.MustRegister(cs...)

	ctx := context.Background()
	_, err = l.InitializeGenesis(ctx, "Genesis Block")
	require.NoError(t, err)
	_, err = l.TryAppend(ctx, "Second block", []models.Transaction{models.NewTransaction("A", "B", 5.0)})
	require.NoError(t, err)
	return l, reg
}

func TestRouter(t *testing.T) {
	l, reg := newChain(t)
	ts := httptest.NewServer(server.NewRouter(l, reg))
	defer ts.Close()

	client := resty.New().SetBaseURL(ts.URL)

	t.Run("Blocks", func(t *testing.T) {
		var body server.BlocksResponse
		resp, err := client.R().SetResult(&body).Get("/blocks")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, l.ID().String(), body.LedgerID)
		assert.Equal(t, 2, body.Length)
		assert.Equal(t, l.Blocks(), body.Blocks)
	})

	t.Run("Block", func(t *testing.T) {
		var block models.Block
		resp, err := client.R().SetResult(&block).Get("/blocks/2")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		want, err := l.Block(1)
		require.NoError(t, err)
		assert.Equal(t, want, block)
	})

	t.Run("BlockNotFound", func(t *testing.T) {
		resp, err := client.R().Get("/blocks/3")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
		assert.Contains(t, resp.String(), "block 3 not found")
	})

	t.Run("BadBlockID", func(t *testing.T) {
		for _, id := range []string{"0", "abc", "-1"} {
			resp, err := client.R().Get("/blocks/" + id)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode(), id)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		var body server.ValidationResponse
		resp, err := client.R().SetResult(&body).Get("/chain/validate")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.True(t, body.Valid)
		assert.Empty(t, body.Reason)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := client.R().Get("/metrics")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Contains(t, resp.String(), "powchain_chain_length 2")
		assert.Contains(t, resp.String(), "powchain_ledger_blocks_accepted_total 2")
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		resp, err := client.R().Post("/blocks")
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode())
	})
}

func TestValidateEmptyChain(t *testing.T) {
	l := ledger.New()
	ts := httptest.NewServer(server.NewRouter(l, prometheus.NewRegistry()))
	defer ts.Close()

	resp, err := resty.New().R().Get(ts.URL + "/chain/validate")
	require.NoError(t, err)

	var body server.ValidationResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.False(t, body.Valid)
	assert.Equal(t, "empty_chain", body.Kind)
	assert.Equal(t, "chain has no blocks", body.Reason)
}

func TestCreateServer(t *testing.T) {
	t.Run("StartServer", func(t *testing.T) {
		l, reg := newChain(t)
		srv, err := server.CreateServer("127.0.0.1:0", l, reg)
		require.NoError(t, err)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			require.NoError(t, srv.Shutdown(ctx))
		}()

		resp, err := resty.New().R().Get("http://" + srv.Addr() + "/metrics")
		require.NoError(t, err, "Failed to connect to metrics server")
		require.Equal(t, http.StatusOK, resp.StatusCode())
	})

	t.Run("WhenInvalidAddress", func(t *testing.T) {
		_, err := server.CreateServer("invalid-address😆", ledger.New(), prometheus.NewRegistry())
		require.Error(t, err)
	})

	t.Run("WhenInvalidPort", func(t *testing.T) {
		_, err := server.CreateServer("localhost:99999", ledger.New(), prometheus.NewRegistry())
		require.Error(t, err)
	})
}
