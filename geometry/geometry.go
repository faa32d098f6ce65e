// Package geometry holds image-space math of the pipeline: bearing of an object relative to
// the camera's optical axis and the perspective transform compensating vessel orientation.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/LdDl/seawatch/imu"
)

// Bearing returns angle in degrees between optical axis and object at horizontal pixel position objectX.
// Objects left of the frame center have negative bearing.
// viewportAngle is the diagonal field of view of the camera in degrees
func Bearing(width, height, viewportAngle, objectX float64) float64 {
	diagonal := math.Hypot(width, height)
	degreesPerPixel := viewportAngle / diagonal
	distanceFromCenter := math.Abs(objectX - width/2)
	angle := degreesPerPixel * distanceFromCenter
	if objectX < width/2 {
		angle *= -1
	}
	return angle
}

// CameraIntrinsics describes lens and sensor used to get focal length in pixels
type CameraIntrinsics struct {
	FocalMM       float64
	SensorWidthMM float64
}

// LogitechC920 is the default camera of the prototype
var LogitechC920 = CameraIntrinsics{
	FocalMM:       3.67,
	SensorWidthMM: 4.8,
}

// FocalPixels returns focal length in pixels for a frame with principal point x-coordinate cx
func (cam CameraIntrinsics) FocalPixels(cx float64) float64 {
	return (cam.FocalMM / cam.SensorWidthMM) * (cx * 2)
}

// StabilizationHomography returns 3x3 perspective transform which rotates the frame by the vessel orientation.
// (cx, cy) is the principal point, usually the frame center. Angles are in radians.
// Vessel pitch rotates around camera X axis, yaw around camera Y axis and roll around the optical (Z) axis
func StabilizationHomography(o imu.Orientation, cx, cy float64, cam CameraIntrinsics) *mat.Dense {
	f := cam.FocalPixels(cx)

	// Camera intrinsics: projection back to image plane
	a2 := mat.NewDense(3, 4, []float64{
		f, 0, cx, 0,
		0, f, cy, 0,
		0, 0, 1, 0,
	})
	// Inverted intrinsics: image plane to 3D
	a1 := mat.NewDense(4, 3, []float64{
		1 / f, 0, -cx / f,
		0, 1 / f, -cy / f,
		0, 0, 0,
		0, 0, 1,
	})

	alpha, beta, gamma := o.Pitch, o.Yaw, o.Roll
	rx := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, math.Cos(alpha), -math.Sin(alpha), 0,
		0, math.Sin(alpha), math.Cos(alpha), 0,
		0, 0, 0, 1,
	})
	ry := mat.NewDense(4, 4, []float64{
		math.Cos(beta), 0, math.Sin(beta), 0,
		0, 1, 0, 0,
		-math.Sin(beta), 0, math.Cos(beta), 0,
		0, 0, 0, 1,
	})
	rz := mat.NewDense(4, 4, []float64{
		math.Cos(gamma), -math.Sin(gamma), 0, 0,
		math.Sin(gamma), math.Cos(gamma), 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	// Move image plane one unit along optical axis
	t := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 1,
		0, 0, 0, 1,
	})

	var r, rzx mat.Dense
	rzx.Mul(rz, rx)
	r.Mul(&rzx, ry)

	var ra1, tra1, a2tra1 mat.Dense
	ra1.Mul(&r, a1)
	tra1.Mul(t, &ra1)
	a2tra1.Mul(a2, &tra1)
	return &a2tra1
}

// Project applies homography h to pixel (x, y)
func Project(h mat.Matrix, x, y float64) (float64, float64) {
	var out mat.VecDense
	out.MulVec(h, mat.NewVecDense(3, []float64{x, y, 1}))
	w := out.AtVec(2)
	return out.AtVec(0) / w, out.AtVec(1) / w
}
