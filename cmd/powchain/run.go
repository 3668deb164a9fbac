package powchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/manifest-network/powchain/internal/config"
	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/ledger"
	"github.com/manifest-network/powchain/internal/metrics"
	"github.com/manifest-network/powchain/internal/metrics/collectors"
	"github.com/manifest-network/powchain/internal/output"
	"github.com/manifest-network/powchain/internal/runner"
	"github.com/manifest-network/powchain/internal/server"
)

const shutdownTimeout = 5 * time.Second

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Mine a chain and print it",
	Long:  `Mine a genesis block and one block per data item, then print the chain and its validation status.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChain(cmd, nil)
	},
}

func init() {
	RunCmd.PersistentFlags().String("genesis-data", "Genesis Block", "Data carried by the genesis block")
	RunCmd.PersistentFlags().StringSliceP("data", "d", []string{"Test", "Test2", "Test3"}, "Data of the blocks to append, in order")
	RunCmd.PersistentFlags().StringArray("tx", nil, "Transaction attached to every appended block, as sender,receiver,amount (repeatable)")
	RunCmd.PersistentFlags().Uint64("max-attempts", 0, "Maximum nonces tried per block, 0 for unbounded")
	RunCmd.PersistentFlags().Duration("mining-timeout", 0, "Abort mining after this duration, 0 for no timeout")
	RunCmd.PersistentFlags().Bool("enable-prometheus", false, "Enable Prometheus metrics server")
	RunCmd.PersistentFlags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")
	RunCmd.PersistentFlags().Bool("serve", false, "Keep serving metrics and blocks after the run until interrupted")

	if err := viper.BindPFlags(RunCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind RunCmd flags", "error", err)
	}

	RunCmd.AddCommand(jsonCmd)
	RunCmd.AddCommand(tsvCmd)
}

// runChain mines a chain per the run configuration, writes it to
// outputHandler when set and prints it.
func runChain(cmd *cobra.Command, outputHandler output.OutputHandler) error {
	cfg, err := config.LoadRunConfigFromCLI()
	if err != nil {
		return fmt.Errorf("invalid Run configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid Run configuration: %w", err)
	}
	slog.Debug("Command-line arguments", "runConfig", cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	handleInterrupt(ctx, cancel)

	sinks := []events.Sink{events.NewLogSink(slog.Default())}
	reg := prometheus.NewRegistry()
	if cfg.EnablePrometheus {
		metricsSink, err := metrics.NewSink(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		sinks = append(sinks, metricsSink)
	}

	l := ledger.New(
		ledger.WithSink(events.Multi(sinks...)),
		ledger.WithMaxAttempts(cfg.MaxAttempts),
	)

	var srv *server.Server
	if cfg.EnablePrometheus {
		srv, err = startServer(cfg.PrometheusAddr, l, reg)
		if err != nil {
			return err
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	if srv != nil {
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			slog.Info("Shutting down HTTP server", "address", srv.Addr())
			return srv.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		if err := mineAndPrint(ctx, cmd, l, cfg, outputHandler); err != nil {
			return err
		}
		if cfg.Serve {
			slog.Info("Serving until interrupted", "address", srv.Addr())
			return nil
		}
		cancel()
		return nil
	})

	return eg.Wait()
}

func mineAndPrint(ctx context.Context, cmd *cobra.Command, l *ledger.Ledger, cfg config.RunConfig, outputHandler output.OutputHandler) error {
	mineCtx := ctx
	if cfg.MiningTimeout > 0 {
		var cancel context.CancelFunc
		mineCtx, cancel = context.WithTimeout(ctx, cfg.MiningTimeout)
		defer cancel()
	}

	if err := runner.Run(mineCtx, l, cfg, outputHandler, cmd.ErrOrStderr()); err != nil {
		return err
	}

	table, err := renderChain(l.Blocks())
	if err != nil {
		return fmt.Errorf("failed to render chain: %w", err)
	}
	verr := l.Verify()
	fmt.Fprint(cmd.OutOrStdout(), table)
	fmt.Fprintln(cmd.OutOrStdout(), renderValidation(verr))
	if verr != nil {
		return fmt.Errorf("chain validation failed: %w", verr)
	}
	return nil
}

func startServer(addr string, l *ledger.Ledger, reg *prometheus.Registry) (*server.Server, error) {
	cs, err := collectors.DefaultRegistry.CreateCollectors(l)
	if err != nil {
		return nil, fmt.Errorf("failed to create collectors: %w", err)
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	srv, err := server.CreateServer(addr, l, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return srv, nil
}

// handleInterrupt cancels the run on SIGINT or SIGTERM.
func handleInterrupt(ctx context.Context, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			slog.Info("Received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
}
