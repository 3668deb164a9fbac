package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/manifest-network/powchain/internal/config"
	"github.com/manifest-network/powchain/internal/ledger"
	"github.com/manifest-network/powchain/internal/output"
)

// Run mines the genesis block, appends one block per data item and hands
// every committed block to outputHandler, which may be nil. Progress is drawn
// on progressOut when more than one block is appended.
func Run(ctx context.Context, l *ledger.Ledger, cfg config.RunConfig, outputHandler output.OutputHandler, progressOut io.Writer) error {
	slog.Info("Initializing ledger", "ledger", l.ID(), "genesis_data", cfg.GenesisData)
	if _, err := l.InitializeGenesis(ctx, cfg.GenesisData); err != nil {
		return err
	}

	if err := appendBlocks(ctx, l, cfg, progressOut); err != nil {
		return err
	}

	if outputHandler == nil {
		return nil
	}

	for _, block := range l.Blocks() {
		if err := outputHandler.WriteBlock(ctx, block); err != nil {
			return errors.WithMessage(err, fmt.Sprintf("failed to write block %d", block.ID))
		}
	}
	return nil
}

func appendBlocks(ctx context.Context, l *ledger.Ledger, cfg config.RunConfig, progressOut io.Writer) error {
	if len(cfg.Data) == 0 {
		return nil
	}
	slog.Info("Appending blocks", "count", len(cfg.Data), "transactions_per_block", len(cfg.Transactions))

	var bar *progressbar.ProgressBar
	if len(cfg.Data) > 1 && progressOut != nil {
		bar = progressbar.NewOptions(
			len(cfg.Data),
			progressbar.OptionSetWriter(progressOut),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Mining blocks..."),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		if err := bar.RenderBlank(); err != nil {
			return fmt.Errorf("failed to render progress bar: %w", err)
		}
	}

	for _, data := range cfg.Data {
		if ctx.Err() != nil {
			slog.Info("Mining cancelled by user")
			return ctx.Err()
		}

		if _, err := l.TryAppend(ctx, data, cfg.Transactions); err != nil {
			return errors.WithMessage(err, fmt.Sprintf("failed to append block %q", data))
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			return fmt.Errorf("failed to finish progress bar: %w", err)
		}
	}
	return nil
}
