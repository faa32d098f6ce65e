package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/seawatch/imu"
)

func TestBearing(t *testing.T) {
	width, height, viewport := 1920.0, 1080.0, 45.0

	// On the optical sensor centerline
	assert.Equal(t, 0.0, Bearing(width, height, viewport, 960))
	// Right of the centerline
	assert.InDelta(t, 12.256530990813975, Bearing(width, height, viewport, 1560), 1e-9)
	// Left of the centerline
	assert.InDelta(t, -9.396673759624047, Bearing(width, height, viewport, 500), 1e-9)
}

func TestFocalPixels(t *testing.T) {
	assert.InDelta(t, 3.67/4.8*1920, LogitechC920.FocalPixels(960), 1e-9)
}

func TestStabilizationHomographyIdentity(t *testing.T) {
	h := StabilizationHomography(imu.Orientation{}, 320, 240, LogitechC920)
	rows, cols := h.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			expected := 0.0
			if i == j {
				expected = 1.0
			}
			assert.InDelta(t, expected, h.At(i, j), 1e-9, "H[%d][%d]", i, j)
		}
	}
}

func TestStabilizationHomographyPrincipalPoint(t *testing.T) {
	orientations := []imu.Orientation{
		{Roll: 0.3},
		{Pitch: -0.2, Yaw: 0.1},
		{Roll: 1.0472, Pitch: 0.05, Yaw: -0.4},
	}
	for _, o := range orientations {
		h := StabilizationHomography(o, 320, 240, LogitechC920)
		x, y := Project(h, 320, 240)
		assert.InDelta(t, 320, x, 1e-6, "orientation %+v", o)
		assert.InDelta(t, 240, y, 1e-6, "orientation %+v", o)
	}
}

func TestStabilizationHomographyRoll(t *testing.T) {
	// Quarter turn around optical axis
	h := StabilizationHomography(imu.Orientation{Roll: 1.5707963267948966}, 320, 240, LogitechC920)
	x, y := Project(h, 330, 240)
	assert.InDelta(t, 320, x, 1e-6)
	assert.InDelta(t, 250, y, 1e-6)
}
