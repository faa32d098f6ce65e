// Package detect turns raw output of the SSD maritime detector into tracker detections.
package detect

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/LdDl/seawatch/mot"
)

const (
	// DefaultScoreThreshold filters out weak detections
	DefaultScoreThreshold = 0.5
	// RowSize is number of values per detection: image id, class id, score, x1, y1, x2, y2
	RowSize = 7
)

// Labels are the classes of the Singapore Maritime Dataset SSD model, in class id order (class id 1 is Labels[0])
var Labels = []string{
	"Ferry",
	"Buoy",
	"Vessel/ship",
	"Speed boat",
	"Boat",
	"Kayak",
	"Sail boat",
	"Swimming person",
	"Flying bird/plane",
	"Other",
	"Unknown",
	"Dock",
}

// Colors are per-label drawing colors, same order as Labels
var Colors = []color.RGBA{
	{230, 25, 75, 0},
	{60, 180, 75, 0},
	{255, 225, 25, 0},
	{0, 130, 200, 0},
	{245, 130, 48, 0},
	{145, 30, 180, 0},
	{70, 240, 240, 0},
	{240, 50, 230, 0},
	{210, 245, 60, 0},
	{250, 190, 212, 0},
	{0, 128, 128, 0},
	{170, 110, 40, 0},
}

// Parse converts flat network output (RowSize values per detection, coordinates normalized to [0; 1])
// into detections for a frame of frameRows x frameCols pixels.
// Detections with score not greater than threshold are skipped. Coordinates are clipped to the frame
func Parse(output []float32, frameRows, frameCols int, timestamp, threshold float64) ([]mot.Detection, error) {
	if len(output)%RowSize != 0 {
		return nil, errors.Errorf("network output length %d is not multiple of %d", len(output), RowSize)
	}
	detections := make([]mot.Detection, 0)
	for offset := 0; offset < len(output); offset += RowSize {
		row := output[offset : offset+RowSize]
		score := float64(row[2])
		if score <= threshold {
			continue
		}
		classIdx := int(row[1]) - 1
		if classIdx < 0 || classIdx >= len(Labels) {
			return nil, errors.Errorf("detection %d: class id %d out of range", offset/RowSize, int(row[1]))
		}
		x1, y1 := clip(float64(row[3])), clip(float64(row[4]))
		x2, y2 := clip(float64(row[5])), clip(float64(row[6]))
		left := int(x1 * float64(frameCols))
		top := int(y1 * float64(frameRows))
		right := int(x2 * float64(frameCols))
		bottom := int(y2 * float64(frameRows))
		data := &mot.ObjData{
			Rect:       image.Rect(left, top, right, bottom),
			Timestamp:  timestamp,
			Label:      Labels[classIdx],
			Confidence: score,
			Color:      Colors[classIdx],
			// Size is a measure of the bounding box area
			Size: (y2 - y1) * (x2 - x1),
		}
		detections = append(detections, mot.NewDetection(float64(left), float64(top), float64(right), float64(bottom), data))
	}
	return detections, nil
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
