package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/config"
	"github.com/newthinker/sigchart/internal/logger"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "sigchart",
	Short: "sigchart - trading signal chart server",
	Long: `sigchart renders OHLCV candles with entry, stop-loss and take-profit
markers derived from a trades CSV, and serves them as an interactive chart.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the dotenv and config files, falling back to defaults
// when no config file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	return logger.Must("release", debug)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
