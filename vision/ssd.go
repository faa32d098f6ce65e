package vision

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/LdDl/seawatch/detect"
	"github.com/LdDl/seawatch/mot"
)

// SSDInputSize is network input resolution
var SSDInputSize = image.Pt(300, 300)

// SSDConfig holds detector configuration
type SSDConfig struct {
	// Frozen Tensorflow graph (.pb)
	ModelPath string
	// Text graph description (.pbtxt)
	GraphPath      string
	ScoreThreshold float64
	// Cross-class overlap limit, see detect.Suppress
	SuppressIoU float64
}

// SSDNet runs Tensorflow SSD maritime detector
type SSDNet struct {
	net    gocv.Net
	mu     sync.Mutex
	config SSDConfig
}

// NewSSDNet loads frozen graph and its text description
func NewSSDNet(cfg SSDConfig) (*SSDNet, error) {
	for _, path := range []string{cfg.ModelPath, cfg.GraphPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "model file not found: %s", path)
		}
	}
	net := gocv.ReadNetFromTensorflow(cfg.ModelPath, cfg.GraphPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load SSD model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)
	return &SSDNet{
		net:    net,
		config: cfg,
	}, nil
}

// Detect runs network on frame and returns detections stamped with timestamp
func (d *SSDNet) Detect(img gocv.Mat, timestamp float64) ([]mot.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, errors.New("empty image")
	}

	blob := gocv.BlobFromImage(img, 1.0, SSDInputSize, gocv.NewScalar(0, 0, 0, 0), true, true)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	// Output shape is [1, 1, N, 7]
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "can't read network output")
	}
	detections, err := detect.Parse(data, img.Rows(), img.Cols(), timestamp, d.config.ScoreThreshold)
	if err != nil {
		return nil, err
	}
	return detect.Suppress(detections, d.config.SuppressIoU), nil
}

// Close releases network
func (d *SSDNet) Close() error {
	return d.net.Close()
}
