package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LdDl/seawatch/imu"
	"github.com/LdDl/seawatch/internal/config"
)

var imuFlags struct {
	source string
	kind   string
	wait   time.Duration
}

var imuCmd = &cobra.Command{
	Use:   "imu",
	Short: "Print last valid vessel orientation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyIMUFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := initLogger(cfg)

		provider, closer, err := openProvider(cfg.IMU, logger)
		if err != nil {
			return err
		}
		defer closer()

		ctx, cancel := context.WithTimeout(cmd.Context(), imuFlags.wait)
		defer cancel()
		o, err := waitOrientation(ctx, provider)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "timestamp=%v heading=%.6f pitch=%.6f roll=%.6f yaw=%.6f\n", o.Timestamp, o.Heading, o.Pitch, o.Roll, o.Yaw)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(imuCmd)
	imuCmd.Flags().StringVar(&imuFlags.source, "imu", "", "Path to IMU record log or serial device")
	imuCmd.Flags().StringVar(&imuFlags.kind, "imu-kind", "", `IMU source kind: "file", "serial" or "none"`)
	imuCmd.Flags().DurationVar(&imuFlags.wait, "wait", 5*time.Second, "How long to wait for the first valid record of serial IMU")
}

// applyIMUFlags overlays IMU flags. Source without explicit kind means record log file
func applyIMUFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("imu") {
		cfg.IMU.Source = imuFlags.source
		if cfg.IMU.Kind == config.IMUKindNone {
			cfg.IMU.Kind = config.IMUKindFile
		}
	}
	if cmd.Flags().Changed("imu-kind") {
		cfg.IMU.Kind = imuFlags.kind
	}
}

// openProvider creates orientation provider for configured source. Returned closer is never nil
func openProvider(cfg config.IMUConfig, logger *slog.Logger) (imu.Provider, func(), error) {
	switch cfg.Kind {
	case config.IMUKindFile:
		return imu.NewFileProvider(cfg.Source), func() {}, nil
	case config.IMUKindSerial:
		provider, err := imu.OpenSerial(cfg.Source, cfg.BaudRate, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return provider, func() {
			if err := provider.Close(); err != nil {
				logger.Warn("can't close serial IMU", "error", err)
			}
		}, nil
	case config.IMUKindNone:
		return imu.StaticProvider{Orientation: imu.Orientation{Valid: true}}, func() {}, nil
	default:
		return nil, func() {}, errors.Errorf("unknown IMU kind %q", cfg.Kind)
	}
}

// waitOrientation polls provider until it has valid record or context is done
func waitOrientation(ctx context.Context, provider imu.Provider) (imu.Orientation, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		o, err := provider.LastOrientation(ctx)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, imu.ErrNoOrientation) {
			return imu.Orientation{}, err
		}
		select {
		case <-ctx.Done():
			return imu.Orientation{}, errors.Wrap(err, "gave up waiting")
		case <-ticker.C:
		}
	}
}
