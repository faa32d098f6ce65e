package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/LdDl/seawatch/geometry"
	"github.com/LdDl/seawatch/imu"
	"github.com/LdDl/seawatch/internal/config"
	"github.com/LdDl/seawatch/internal/report"
	"github.com/LdDl/seawatch/mot"
	"github.com/LdDl/seawatch/vision"
)

const escapeKey = 27

var runFlags struct {
	source         string
	model          string
	graph          string
	viewportAngle  float64
	maxDisappeared int
	matching       string
	draw           bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run detection and tracking pipeline",
	Long: `Run reads frames from camera or video file, stabilizes them using IMU orientation,
detects obstacles with SSD network and tracks them across frames.

Press ESC in the preview window (--draw) to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyIMUFlags(cmd, cfg)
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := initLogger(cfg)
		return runPipeline(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&imuFlags.source, "imu", "", "Path to IMU record log or serial device")
	runCmd.Flags().StringVar(&imuFlags.kind, "imu-kind", "", `IMU source kind: "file", "serial" or "none"`)
	runCmd.Flags().StringVar(&runFlags.source, "source", "", "Video file, stream URL or camera device id")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "Path to frozen Tensorflow graph (.pb)")
	runCmd.Flags().StringVar(&runFlags.graph, "graph", "", "Path to graph text description (.pbtxt)")
	runCmd.Flags().Float64Var(&runFlags.viewportAngle, "viewport-angle", 78, "Camera field of view, degrees")
	runCmd.Flags().IntVar(&runFlags.maxDisappeared, "max-disappeared", mot.DefaultMaxDisappeared, "Frames an object may stay unmatched before it is dropped")
	runCmd.Flags().StringVar(&runFlags.matching, "matching", "greedy", `Matching algorithm: "greedy" or "hungarian"`)
	runCmd.Flags().BoolVar(&runFlags.draw, "draw", true, "Show preview window with tracked objects")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Video.Source = runFlags.source
	}
	if flags.Changed("model") {
		cfg.Model.Path = runFlags.model
	}
	if flags.Changed("graph") {
		cfg.Model.Graph = runFlags.graph
	}
	if flags.Changed("viewport-angle") {
		cfg.ViewportAngle = runFlags.viewportAngle
	}
	if flags.Changed("max-disappeared") {
		cfg.MaxDisappeared = runFlags.maxDisappeared
	}
	if flags.Changed("matching") {
		cfg.Matching = runFlags.matching
	}
	if flags.Changed("draw") {
		cfg.Draw = runFlags.draw
	}
}

func runPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	provider, closeProvider, err := openProvider(cfg.IMU, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	capture, err := vision.OpenCapture(cfg.Video.Source)
	if err != nil {
		return err
	}
	defer capture.Close()
	if cfg.Video.Width > 0 && cfg.Video.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Video.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Video.Height))
	}

	net, err := vision.NewSSDNet(vision.SSDConfig{
		ModelPath:      cfg.Model.Path,
		GraphPath:      cfg.Model.Graph,
		ScoreThreshold: cfg.ScoreThreshold,
		SuppressIoU:    cfg.SuppressIoU,
	})
	if err != nil {
		return err
	}
	defer net.Close()

	stabilizer := vision.NewStabilizer(geometry.CameraIntrinsics{
		FocalMM:       cfg.Camera.FocalMM,
		SensorWidthMM: cfg.Camera.SensorWidthMM,
	})
	tracker := mot.NewCentroidTracker(
		cfg.MaxDisappeared,
		mot.WithMatchingAlgorithm(cfg.MatchingAlgorithm()),
		mot.WithKalmanTimeStep(cfg.KalmanTimeStep),
		mot.WithMaxTrackLen(cfg.MaxTrackLen),
		mot.WithLogger(logger),
	)
	logger.Info("pipeline started",
		"tracker", tracker.InstanceID().String(),
		"source", cfg.Video.Source,
		"imu", cfg.IMU.Kind,
		"matching", cfg.Matching,
	)

	var window *gocv.Window
	if cfg.Draw {
		window = gocv.NewWindow("seawatch")
		defer window.Close()
	}

	reportLevel := slog.LevelDebug
	if cfg.Verbose {
		reportLevel = slog.LevelInfo
	}

	frame := gocv.NewMat()
	defer frame.Close()
	start := time.Now()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("pipeline interrupted", "frames", frames)
			return nil
		default:
		}
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			logger.Info("video source exhausted", "frames", frames)
			return nil
		}
		frames++
		timestamp := time.Since(start).Seconds()

		stop, err := processFrame(ctx, frame, timestamp, provider, stabilizer, net, tracker, window, logger)
		if err != nil {
			return errors.Wrapf(err, "frame %d", frames)
		}
		if stop {
			logger.Info("pipeline stopped by user", "frames", frames)
			return nil
		}
		report.Log(logger, reportLevel, report.Build(tracker, frame.Cols(), frame.Rows(), cfg.ViewportAngle))
	}
}

// processFrame runs single frame through the pipeline. Returns true when user asked to stop
func processFrame(ctx context.Context, frame gocv.Mat, timestamp float64, provider imu.Provider, stabilizer *vision.Stabilizer, net *vision.SSDNet, tracker *mot.CentroidTracker, window *gocv.Window, logger *slog.Logger) (bool, error) {
	orientation, err := provider.LastOrientation(ctx)
	if err != nil {
		if !errors.Is(err, imu.ErrNoOrientation) {
			return false, err
		}
		logger.Debug("no orientation yet, frame is not stabilized")
		orientation = imu.Orientation{}
	}

	stabilized, err := stabilizer.Stabilize(frame, orientation)
	if err != nil {
		return false, err
	}
	defer stabilized.Close()

	detections, err := net.Detect(stabilized, timestamp)
	if err != nil {
		return false, err
	}
	if _, err := tracker.Update(detections); err != nil {
		return false, err
	}

	if window == nil {
		return false, nil
	}
	if err := tracker.DrawObjects(vision.NewMatCanvas(&stabilized)); err != nil {
		return false, err
	}
	window.IMShow(stabilized)
	return window.WaitKey(1) == escapeKey, nil
}
