package powchain

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/manifest-network/powchain/internal/config"
	"github.com/manifest-network/powchain/internal/reader"
	"github.com/manifest-network/powchain/internal/validator"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [input]",
	Short: "Validate a chain exported with run json",
	Long:  "Reads the blocks of a JSON export from the input directory and checks every block against its predecessor.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyConfig := config.VerifyConfig{Input: args[0]}
		if err := verifyConfig.Validate(); err != nil {
			return fmt.Errorf("invalid Verify configuration: %w", err)
		}

		blocks, err := reader.LoadBlocksJSON(verifyConfig.Input)
		if err != nil {
			return fmt.Errorf("failed to load chain: %w", err)
		}
		slog.Info("Loaded chain", "input", verifyConfig.Input, "blocks", len(blocks))

		table, err := renderChain(blocks)
		if err != nil {
			return fmt.Errorf("failed to render chain: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), table)

		verr := validator.ValidateChain(blocks)
		fmt.Fprintln(cmd.OutOrStdout(), renderValidation(verr))
		if verr != nil {
			return fmt.Errorf("chain validation failed: %w", verr)
		}
		return nil
	},
}
