package powchain

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manifest-network/powchain/internal/config"
	"github.com/manifest-network/powchain/internal/output"
)

var tsvCmd = &cobra.Command{
	Use:   "tsv [flags]",
	Short: "Mine a chain and write it to TSV files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tsvConfig := config.LoadTSVConfigFromCLI()
		if err := tsvConfig.Validate(); err != nil {
			return fmt.Errorf("invalid TSV configuration: %w", err)
		}
		slog.Debug("Command-line argument", "tsv-out", tsvConfig.Output)

		outputHandler, err := output.NewTSVOutputHandler(tsvConfig.Output)
		if err != nil {
			return fmt.Errorf("failed to create TSV output handler: %w", err)
		}

		runErr := runChain(cmd, outputHandler)
		if err := outputHandler.Close(); err != nil && runErr == nil {
			return fmt.Errorf("failed to close TSV output handler: %w", err)
		}
		return runErr
	},
}

func init() {
	tsvCmd.Flags().StringP("tsv-out", "o", "tsv", "TSV output directory")
	if err := viper.BindPFlags(tsvCmd.Flags()); err != nil {
		slog.Error("Failed to bind tsvCmd flags", "error", err)
	}
}
