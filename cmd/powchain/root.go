package powchain

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(slices.Sorted(maps.Keys(validLogLevels)), "|")

	prettyLogLevels = map[slog.Level]pterm.LogLevel{
		slog.LevelDebug: pterm.LogLevelDebug,
		slog.LevelInfo:  pterm.LogLevelInfo,
		slog.LevelWarn:  pterm.LogLevelWarn,
		slog.LevelError: pterm.LogLevelError,
	}

	validLogFormats    = []string{"json", "pretty"}
	validLogFormatsStr = strings.Join(validLogFormats, "|")
)

var RootCmd = &cobra.Command{
	Use:   "powchain",
	Short: "Mine and verify a proof-of-work chain",
	Long:  `powchain mines an in-memory proof-of-work blockchain, validates it and exports it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := viper.GetString("logLevel")
		logFormat := viper.GetString("logFormat")
		if err := setLogger(logLevel, logFormat); err != nil {
			return err
		}
		slog.Debug("Application started", "version", Version)
		return nil
	},
}

// setLogger installs the default logger for the given level and format.
func setLogger(logLevel, logFormat string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	case "pretty":
		handler = pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(prettyLogLevels[level]))
	default:
		return fmt.Errorf("invalid log format: %s. Valid log formats are: %s", logFormat, validLogFormatsStr)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}

func init() {
	RootCmd.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	RootCmd.PersistentFlags().String("logFormat", "json", fmt.Sprintf("set log format (%s)", validLogFormatsStr))
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind rootCmd flags", "error", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.powchain")
	viper.AddConfigPath("/etc/powchain")

	viper.SetEnvPrefix("powchain")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(RunCmd)
	RootCmd.AddCommand(verifyCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	} else {
		slog.Info("No config file found")
	}

	if err := RootCmd.Execute(); err != nil {
		slog.Error("An error occurred", "error", err)
		os.Exit(1)
	}
}
