// Package report summarizes live tracked objects: where they are relative to the bow and whether they are closing in.
package report

import (
	"context"
	"log/slog"

	"github.com/LdDl/seawatch/geometry"
	"github.com/LdDl/seawatch/mot"
)

// ObjectReport is per-frame state of single live object
type ObjectReport struct {
	ID    string
	Label string
	X     int
	Y     int
	// Bearing is angle from frame center in degrees, negative to the left
	Bearing float64
	// Kalman-filtered position and its bearing, less jittery than raw centroid
	SmoothedX       float64
	SmoothedY       float64
	SmoothedBearing float64
	// GrowthRate is smoothed size change rate, meaningful only when GrowthKnown
	GrowthRate  float64
	GrowthKnown bool
	Disappeared int
}

// Build returns reports for every live object of tracker, in registration order
func Build(tracker *mot.CentroidTracker, frameWidth, frameHeight int, viewportAngle float64) []ObjectReport {
	reports := make([]ObjectReport, 0, tracker.Len())
	for id, object := range tracker.Objects().All() {
		c := object.Centroid()
		smoothed := object.SmoothedCenter()
		rate, known := object.GrowthRate()
		r := ObjectReport{
			ID:              tracker.QualifiedID(id),
			X:               c.X,
			Y:               c.Y,
			Bearing:         geometry.Bearing(float64(frameWidth), float64(frameHeight), viewportAngle, float64(c.X)),
			SmoothedX:       smoothed.X,
			SmoothedY:       smoothed.Y,
			SmoothedBearing: geometry.Bearing(float64(frameWidth), float64(frameHeight), viewportAngle, smoothed.X),
			GrowthRate:      rate,
			GrowthKnown:     known,
			Disappeared:     object.Disappeared(),
		}
		if data, ok := object.LastData().(*mot.ObjData); ok && data != nil {
			r.Label = data.Label
		}
		reports = append(reports, r)
	}
	return reports
}

// Log writes one record per report at given level
func Log(logger *slog.Logger, level slog.Level, reports []ObjectReport) {
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	for _, r := range reports {
		attrs := []slog.Attr{
			slog.String("id", r.ID),
			slog.String("label", r.Label),
			slog.Int("x", r.X),
			slog.Int("y", r.Y),
			slog.Float64("bearing", r.Bearing),
			slog.Float64("smoothed_x", r.SmoothedX),
			slog.Float64("smoothed_y", r.SmoothedY),
			slog.Float64("smoothed_bearing", r.SmoothedBearing),
			slog.Int("disappeared", r.Disappeared),
		}
		if r.GrowthKnown {
			attrs = append(attrs, slog.Float64("growth_rate", r.GrowthRate))
		}
		logger.LogAttrs(ctx, level, "tracked object", attrs...)
	}
}
