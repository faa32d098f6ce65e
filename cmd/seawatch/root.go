package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LdDl/seawatch/internal/config"
	"github.com/LdDl/seawatch/internal/log"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "seawatch",
	Short: "Maritime obstacle detection and tracking",
	Long: `Seawatch reads vessel orientation from IMU, stabilizes camera frames,
detects boats, buoys and other obstacles, and tracks them across frames,
reporting bearing and closing rate of every object.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Report every tracked object on every frame")
}

// loadConfig reads config file (if any) and overlays flags that were explicitly set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	if cfg.Verbose && log.ParseLevel(level) > slog.LevelInfo {
		level = "info"
	}
	return log.Init(level, cfg.Log.JSON)
}
