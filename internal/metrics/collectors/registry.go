package collectors

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/manifest-network/powchain/internal/models"
)

// ChainReader is the read-only view of a ledger the collectors scrape.
type ChainReader interface {
	Len() int
	Tail() (models.Block, error)
}

// CollectorFactory is a function type that creates a collector for a chain
type CollectorFactory func(chain ChainReader) (prometheus.Collector, error)

type Registry struct {
	factories []CollectorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make([]CollectorFactory, 0),
	}
}

func (r *Registry) Register(factory CollectorFactory) {
	r.factories = append(r.factories, factory)
}

// CreateCollectors instantiates all collectors for the provided chain
func (r *Registry) CreateCollectors(chain ChainReader) ([]prometheus.Collector, error) {
	if chain == nil {
		return nil, errors.New("chain is nil")
	}

	collectors := make([]prometheus.Collector, 0, len(r.factories))
	for _, factory := range r.factories {
		collector, err := factory(chain)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, collector)
	}
	return collectors, nil
}

var DefaultRegistry = NewRegistry()

func RegisterCollectorFactory(factory CollectorFactory) {
	DefaultRegistry.Register(factory)
}
