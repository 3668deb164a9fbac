package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/manifest-network/powchain/internal/models"
)

type RunConfig struct {
	GenesisData      string
	Data             []string
	Transactions     []models.Transaction
	MaxAttempts      uint64
	MiningTimeout    time.Duration
	EnablePrometheus bool
	PrometheusAddr   string
	Serve            bool
}

func (c RunConfig) Validate() error {
	if c.MiningTimeout < 0 {
		return fmt.Errorf("mining timeout must not be negative")
	}
	if c.EnablePrometheus && c.PrometheusAddr == "" {
		return fmt.Errorf("missing Prometheus server address")
	}
	if c.Serve && !c.EnablePrometheus {
		return fmt.Errorf("--serve requires --enable-prometheus")
	}
	return nil
}

func LoadRunConfigFromCLI() (RunConfig, error) {
	rawTxs := viper.GetStringSlice("tx")
	txs := make([]models.Transaction, 0, len(rawTxs))
	for _, raw := range rawTxs {
		tx, err := models.ParseTransaction(raw)
		if err != nil {
			return RunConfig{}, err
		}
		txs = append(txs, tx)
	}

	return RunConfig{
		GenesisData:      viper.GetString("genesis-data"),
		Data:             viper.GetStringSlice("data"),
		Transactions:     txs,
		MaxAttempts:      viper.GetUint64("max-attempts"),
		MiningTimeout:    viper.GetDuration("mining-timeout"),
		EnablePrometheus: viper.GetBool("enable-prometheus"),
		PrometheusAddr:   viper.GetString("prometheus-addr"),
		Serve:            viper.GetBool("serve"),
	}, nil
}
