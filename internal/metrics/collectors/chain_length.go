package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChainLengthCollector reports the number of blocks in the chain
type ChainLengthCollector struct {
	chain       ChainReader
	chainLength *prometheus.Desc
}

func NewChainLengthCollector(chain ChainReader) *ChainLengthCollector {
	return &ChainLengthCollector{
		chain: chain,
		chainLength: prometheus.NewDesc(
			prometheus.BuildFQName("powchain", "chain", "length"),
			"Number of blocks in the chain",
			nil,
			nil,
		),
	}
}

func (c *ChainLengthCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chainLength
}

func (c *ChainLengthCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.chainLength, prometheus.GaugeValue, float64(c.chain.Len()))
}

func init() {
	RegisterCollectorFactory(func(chain ChainReader) (prometheus.Collector, error) {
		return NewChainLengthCollector(chain), nil
	})
}
