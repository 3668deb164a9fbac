package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/validator"
)

const namespace = "powchain"

// Sink turns miner and ledger events into prometheus metrics.
type Sink struct {
	miningAttempts     prometheus.Counter
	blocksMined        prometheus.Counter
	miningAborted      prometheus.Counter
	blocksAccepted     prometheus.Counter
	blocksRejected     *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// NewSink creates the event counters and registers them with reg.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		miningAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "attempts_total",
			Help:      "Number of nonces tried",
		}),
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "blocks_mined_total",
			Help:      "Number of successful nonce searches",
		}),
		miningAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "aborted_total",
			Help:      "Number of nonce searches stopped before success",
		}),
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "blocks_accepted_total",
			Help:      "Number of blocks appended to the chain",
		}),
		blocksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "blocks_rejected_total",
			Help:      "Number of candidate blocks rejected by validation",
		}, []string{"kind"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "chain_validation_failures_total",
			Help:      "Number of failed full chain validations",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		s.miningAttempts, s.blocksMined, s.miningAborted,
		s.blocksAccepted, s.blocksRejected, s.validationFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) Emit(e events.Event) {
	switch e.Kind {
	case events.MiningSucceeded:
		s.miningAttempts.Add(float64(e.Attempts))
		s.blocksMined.Inc()
	case events.MiningAborted:
		s.miningAttempts.Add(float64(e.Attempts))
		s.miningAborted.Inc()
	case events.BlockAccepted:
		s.blocksAccepted.Inc()
	case events.BlockRejected:
		s.blocksRejected.WithLabelValues(validator.KindOf(e.Err).String()).Inc()
	case events.ChainValidationFailed:
		s.validationFailures.WithLabelValues(validator.KindOf(e.Err).String()).Inc()
	}
}
