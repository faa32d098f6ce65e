package mot

import (
	"fmt"
	"image"
	"image/color"
)

// Payload is the caller-defined data attached to each detection.
// Tracker reads only timestamp and size of it (for growth rate estimation)
type Payload interface {
	// Monotonic time of detection in seconds
	GetTimestamp() float64
	// Bounding box area as fraction of the frame area
	GetSize() float64
}

// Canvas is a drawable surface. See vision.MatCanvas for OpenCV-backed implementation
type Canvas interface {
	DrawText(text string, at image.Point, c color.RGBA, scale float64, thickness int) error
	DrawCircle(center image.Point, radius int, c color.RGBA, thickness int) error
	DrawRectangle(r image.Rectangle, c color.RGBA, thickness int) error
	DrawLine(from, to image.Point, c color.RGBA, thickness int) error
}

// Drawable is optional capability of Payload
type Drawable interface {
	Draw(canvas Canvas) error
}

// ObjData is payload produced by detector for every found obstacle
type ObjData struct {
	Rect       image.Rectangle
	Timestamp  float64
	Label      string
	Confidence float64
	Color      color.RGBA
	Size       float64
}

// GetTimestamp returns time of detection
func (data *ObjData) GetTimestamp() float64 {
	return data.Timestamp
}

// GetSize returns normalized bounding box area
func (data *ObjData) GetSize() float64 {
	return data.Size
}

// Draw draws coloured bounding box and caption above it
func (data *ObjData) Draw(canvas Canvas) error {
	text := fmt.Sprintf("%s | %.4f | %v", data.Label, data.Confidence, data.Timestamp)
	err := canvas.DrawText(text, image.Pt(data.Rect.Min.X, data.Rect.Min.Y-5), data.Color, 0.5, 2)
	if err != nil {
		return err
	}
	return canvas.DrawRectangle(data.Rect, data.Color, 2)
}
