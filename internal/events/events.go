package events

import (
	"context"
	"log/slog"
)

type Kind string

const (
	MiningStarted         Kind = "mining_started"
	MiningProgress        Kind = "mining_progress"
	MiningSucceeded       Kind = "mining_succeeded"
	MiningAborted         Kind = "mining_aborted"
	BlockAccepted         Kind = "block_accepted"
	BlockRejected         Kind = "block_rejected"
	ChainValidationFailed Kind = "chain_validation_failed"
)

// Event is a single observation emitted by the miner or the ledger.
// Fields that do not apply to a Kind are left zero.
type Event struct {
	Kind     Kind
	BlockID  uint64
	Nonce    uint64
	Attempts uint64
	Hash     string
	Err      error
}

// Sink receives events. Implementations must not block for long: they are
// called from the mining loop.
type Sink interface {
	Emit(Event)
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// Nop discards every event.
var Nop Sink = nopSink{}

type multiSink []Sink

func (m multiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans an event out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// LogSink writes events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(e Event) {
	level := slog.LevelInfo
	msg := ""
	attrs := []any{"block_id", e.BlockID}

	switch e.Kind {
	case MiningStarted:
		msg = "Mining block"
	case MiningProgress:
		level = slog.LevelDebug
		msg = "Mining in progress"
		attrs = append(attrs, "attempts", e.Attempts)
	case MiningSucceeded:
		msg = "Block mined"
		attrs = append(attrs, "nonce", e.Nonce, "hash", e.Hash, "attempts", e.Attempts)
	case MiningAborted:
		level = slog.LevelWarn
		msg = "Mining aborted"
		attrs = append(attrs, "attempts", e.Attempts, "error", e.Err)
	case BlockAccepted:
		msg = "Block added to the chain"
		attrs = append(attrs, "hash", e.Hash)
	case BlockRejected:
		level = slog.LevelWarn
		msg = "Block rejected"
		attrs = append(attrs, "error", e.Err)
	case ChainValidationFailed:
		level = slog.LevelWarn
		msg = "Chain validation failed"
		attrs = append(attrs, "error", e.Err)
	default:
		msg = string(e.Kind)
	}

	s.logger.Log(context.Background(), level, msg, attrs...)
}
