package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChainTipCollector reports the id and timestamp of the last block
type ChainTipCollector struct {
	chain        ChainReader
	tipID        *prometheus.Desc
	tipTimestamp *prometheus.Desc
}

func NewChainTipCollector(chain ChainReader) *ChainTipCollector {
	return &ChainTipCollector{
		chain: chain,
		tipID: prometheus.NewDesc(
			prometheus.BuildFQName("powchain", "chain", "tip_id"),
			"ID of the last block in the chain",
			nil,
			nil,
		),
		tipTimestamp: prometheus.NewDesc(
			prometheus.BuildFQName("powchain", "chain", "tip_timestamp_seconds"),
			"Timestamp of the last block in the chain",
			nil,
			nil,
		),
	}
}

func (c *ChainTipCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tipID
	ch <- c.tipTimestamp
}

func (c *ChainTipCollector) Collect(ch chan<- prometheus.Metric) {
	tip, err := c.chain.Tail()
	if err != nil {
		// No genesis yet.
		return
	}

	ch <- prometheus.MustNewConstMetric(c.tipID, prometheus.GaugeValue, float64(tip.ID))
	ch <- prometheus.MustNewConstMetric(c.tipTimestamp, prometheus.GaugeValue, float64(tip.Timestamp))
}

func init() {
	RegisterCollectorFactory(func(chain ChainReader) (prometheus.Collector, error) {
		return NewChainTipCollector(chain), nil
	})
}
