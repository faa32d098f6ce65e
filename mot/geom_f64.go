package mot

import (
	"image"
	"math"
)

type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectLTRB creates rectangle from its corners (left, top, right, bottom)
func NewRectLTRB(left, top, right, bottom float64) Rectangle {
	return Rectangle{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// ToImage converts rectangle to image.Rectangle (coordinates are truncated)
func (rect Rectangle) ToImage() image.Rectangle {
	return image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.Width), int(rect.Y+rect.Height))
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// ToImage converts point to image.Point (coordinates are rounded)
func (p Point) ToImage() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Centroid is pixel-space midpoint of bounding box. Used for matching only.
type Centroid struct {
	X int
	Y int
}

// NewCentroidLTRB returns midpoint of box given by its corners.
// Both coordinates are truncated toward zero.
func NewCentroidLTRB(left, top, right, bottom float64) Centroid {
	return Centroid{
		X: int((left + right) / 2.0),
		Y: int((top + bottom) / 2.0),
	}
}

// ToPoint converts centroid to float point
func (c Centroid) ToPoint() Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

// ToImage converts centroid to image.Point
func (c Centroid) ToImage() image.Point {
	return image.Pt(c.X, c.Y)
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(float64(p1.X-p2.X), 2) + math.Pow(float64(p1.Y-p2.Y), 2))
}

func centroidDistance(c1, c2 Centroid) float64 {
	return euclideanDistance(c1.ToPoint(), c2.ToPoint())
}
