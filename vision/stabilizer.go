package vision

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"github.com/LdDl/seawatch/geometry"
	"github.com/LdDl/seawatch/imu"
)

// Stabilizer warps frames to compensate vessel motion reported by IMU
type Stabilizer struct {
	camera geometry.CameraIntrinsics
}

// NewStabilizer creates stabilizer for given camera
func NewStabilizer(camera geometry.CameraIntrinsics) *Stabilizer {
	return &Stabilizer{camera: camera}
}

// Stabilize returns new frame warped by orientation-based homography around frame center.
// Caller owns returned Mat and must close it
func (s *Stabilizer) Stabilize(src gocv.Mat, o imu.Orientation) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), errors.New("can't stabilize empty frame")
	}
	cx := float64(src.Cols()) / 2.0
	cy := float64(src.Rows()) / 2.0
	h := geometry.StabilizationHomography(o, cx, cy, s.camera)

	m := toMat(h)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(src, &dst, m, image.Pt(src.Cols(), src.Rows()), gocv.InterpolationLanczos4, gocv.BorderConstant, color.RGBA{})
	return dst, nil
}

func toMat(h mat.Matrix) gocv.Mat {
	rows, cols := h.Dims()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.SetDoubleAt(i, j, h.At(i, j))
		}
	}
	return m
}
