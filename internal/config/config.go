// Package config holds seawatch settings loaded from JSON file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/LdDl/seawatch/detect"
	"github.com/LdDl/seawatch/mot"
)

const (
	// MaxFileSize is the largest accepted config file
	MaxFileSize = 1 * 1024 * 1024

	IMUKindFile   = "file"
	IMUKindSerial = "serial"
	IMUKindNone   = "none"
)

// Config represents the root configuration
type Config struct {
	// ViewportAngle is horizontal camera field of view, degrees
	ViewportAngle  float64 `json:"viewport_angle"`
	MaxDisappeared int     `json:"max_disappeared"`
	// KalmanTimeStep is time step of per-object position filter, in frames
	KalmanTimeStep float64 `json:"kalman_time_step"`
	// MaxTrackLen limits drawn trail of every object
	MaxTrackLen int `json:"max_track_len"`
	// Matching is "greedy" or "hungarian"
	Matching       string  `json:"matching"`
	ScoreThreshold float64 `json:"score_threshold"`
	// SuppressIoU drops overlapping detections of different classes, zero disables it
	SuppressIoU float64 `json:"suppress_iou"`
	Draw        bool    `json:"draw"`
	Verbose     bool    `json:"verbose"`

	IMU    IMUConfig    `json:"imu"`
	Video  VideoConfig  `json:"video"`
	Model  ModelConfig  `json:"model"`
	Camera CameraConfig `json:"camera"`
	Log    LogConfig    `json:"log"`
}

// IMUConfig describes orientation source
type IMUConfig struct {
	// Kind is one of "file", "serial", "none"
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	BaudRate int    `json:"baud_rate"`
}

// VideoConfig describes frame source
type VideoConfig struct {
	Source string `json:"source"`
	// Width and Height request capture resolution, zero keeps source default
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ModelConfig points to frozen Tensorflow graph and its text description
type ModelConfig struct {
	Path  string `json:"path"`
	Graph string `json:"graph"`
}

// CameraConfig holds lens parameters used for stabilization
type CameraConfig struct {
	FocalMM       float64 `json:"focal_mm"`
	SensorWidthMM float64 `json:"sensor_width_mm"`
}

// LogConfig configures logger
type LogConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

// Default returns configuration with production defaults
func Default() *Config {
	return &Config{
		ViewportAngle:  78,
		MaxDisappeared: mot.DefaultMaxDisappeared,
		KalmanTimeStep: mot.DefaultKalmanTimeStep,
		MaxTrackLen:    mot.DefaultMaxTrackLen,
		Matching:       mot.MatchingAlgorithmGreedy.String(),
		ScoreThreshold: detect.DefaultScoreThreshold,
		SuppressIoU:    detect.DefaultSuppressIoU,
		Draw:           true,
		IMU: IMUConfig{
			Kind:     IMUKindNone,
			BaudRate: 115200,
		},
		Video: VideoConfig{
			Source: "/dev/video-cam",
		},
		Model: ModelConfig{
			Path:  "models/ssd_inception_v2_smd/frozen_inference_graph.pb",
			Graph: "models/ssd_inception_v2_smd/graph.pbtxt",
		},
		Camera: CameraConfig{
			FocalMM:       3.67,
			SensorWidthMM: 4.8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from JSON file.
// The file must have .json extension and be under MaxFileSize.
// Fields omitted from the file keep their default values
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid
func (c *Config) Validate() error {
	if c.ViewportAngle <= 0 || c.ViewportAngle >= 180 {
		return errors.Errorf("viewport_angle must be in (0; 180), got %f", c.ViewportAngle)
	}
	if c.MaxDisappeared < 0 {
		return errors.Errorf("max_disappeared must be non-negative, got %d", c.MaxDisappeared)
	}
	if c.KalmanTimeStep <= 0 {
		return errors.Errorf("kalman_time_step must be positive, got %f", c.KalmanTimeStep)
	}
	if c.MaxTrackLen < 1 {
		return errors.Errorf("max_track_len must be positive, got %d", c.MaxTrackLen)
	}
	if _, err := mot.ParseMatchingAlgorithm(c.Matching); err != nil {
		return errors.Wrap(err, "matching")
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold >= 1 {
		return errors.Errorf("score_threshold must be in [0; 1), got %f", c.ScoreThreshold)
	}
	if c.SuppressIoU < 0 || c.SuppressIoU > 1 {
		return errors.Errorf("suppress_iou must be in [0; 1], got %f", c.SuppressIoU)
	}
	switch c.IMU.Kind {
	case IMUKindFile, IMUKindSerial:
		if c.IMU.Source == "" {
			return errors.Errorf("imu.source is required for imu.kind %q", c.IMU.Kind)
		}
	case IMUKindNone:
	default:
		return errors.Errorf("imu.kind must be one of %q, %q, %q, got %q", IMUKindFile, IMUKindSerial, IMUKindNone, c.IMU.Kind)
	}
	if c.IMU.Kind == IMUKindSerial && c.IMU.BaudRate <= 0 {
		return errors.Errorf("imu.baud_rate must be positive, got %d", c.IMU.BaudRate)
	}
	if c.Video.Width < 0 || c.Video.Height < 0 {
		return errors.Errorf("video.width and video.height must be non-negative, got %dx%d", c.Video.Width, c.Video.Height)
	}
	if c.Camera.FocalMM <= 0 || c.Camera.SensorWidthMM <= 0 {
		return errors.Errorf("camera.focal_mm and camera.sensor_width_mm must be positive, got %f and %f", c.Camera.FocalMM, c.Camera.SensorWidthMM)
	}
	return nil
}

// MatchingAlgorithm returns parsed Matching value
func (c *Config) MatchingAlgorithm() mot.MatchingAlgorithm {
	alg, err := mot.ParseMatchingAlgorithm(c.Matching)
	if err != nil {
		return mot.MatchingAlgorithmGreedy
	}
	return alg
}
