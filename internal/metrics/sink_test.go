package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/ledger"
	"github.com/manifest-network/powchain/internal/metrics"
	"github.com/manifest-network/powchain/internal/validator"
)

func TestSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(reg)
	require.NoError(t, err)

	sink.Emit(events.Event{Kind: events.MiningSucceeded, Attempts: 10})
	sink.Emit(events.Event{Kind: events.MiningAborted, Attempts: 5})
	sink.Emit(events.Event{Kind: events.MiningProgress, Attempts: 1000})
	sink.Emit(events.Event{Kind: events.BlockAccepted})
	sink.Emit(events.Event{Kind: events.BlockRejected, Err: &validator.ValidationError{Kind: validator.StructuralMismatch, Err: validator.ErrWrongPreviousHash}})
	sink.Emit(events.Event{Kind: events.ChainValidationFailed, Err: &validator.ValidationError{Kind: validator.EmptyChain, Err: validator.ErrEmptyChain}})

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			values[name] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 15.0, values["powchain_mining_attempts_total"])
	assert.Equal(t, 1.0, values["powchain_mining_blocks_mined_total"])
	assert.Equal(t, 1.0, values["powchain_mining_aborted_total"])
	assert.Equal(t, 1.0, values["powchain_ledger_blocks_accepted_total"])
	assert.Equal(t, 1.0, values["powchain_ledger_blocks_rejected_total{kind=structural_mismatch}"])
	assert.Equal(t, 1.0, values["powchain_ledger_chain_validation_failures_total{kind=empty_chain}"])
}

func TestSinkDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewSink(reg)
	require.NoError(t, err)
	_, err = metrics.NewSink(reg)
	assert.Error(t, err)
}

func TestSinkWithLedger(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(reg)
	require.NoError(t, err)

	l := ledger.New(ledger.WithSink(sink))
	genesis, err := l.InitializeGenesis(context.Background(), "Genesis Block")
	require.NoError(t, err)

	count, err := promtestutil.GatherAndCount(reg, "powchain_ledger_blocks_accepted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	mf, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range mf {
		if f.GetName() == "powchain_mining_attempts_total" {
			assert.Equal(t, float64(genesis.Nonce), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}
