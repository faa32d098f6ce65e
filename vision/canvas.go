// Package vision binds tracking pipeline to OpenCV: capture, stabilization, detection and drawing.
package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatCanvas draws on top of gocv.Mat
type MatCanvas struct {
	img *gocv.Mat
}

// NewMatCanvas wraps image. Image is modified in place
func NewMatCanvas(img *gocv.Mat) *MatCanvas {
	return &MatCanvas{img: img}
}

// DrawText puts text with Hershey simplex font
func (c *MatCanvas) DrawText(text string, at image.Point, clr color.RGBA, scale float64, thickness int) error {
	gocv.PutText(c.img, text, at, gocv.FontHersheySimplex, scale, clr, thickness)
	return nil
}

// DrawCircle draws circle. Negative thickness fills it
func (c *MatCanvas) DrawCircle(center image.Point, radius int, clr color.RGBA, thickness int) error {
	gocv.Circle(c.img, center, radius, clr, thickness)
	return nil
}

// DrawRectangle draws rectangle outline
func (c *MatCanvas) DrawRectangle(r image.Rectangle, clr color.RGBA, thickness int) error {
	gocv.Rectangle(c.img, r, clr, thickness)
	return nil
}

// DrawLine draws line segment
func (c *MatCanvas) DrawLine(from, to image.Point, clr color.RGBA, thickness int) error {
	gocv.Line(c.img, from, to, clr, thickness)
	return nil
}
