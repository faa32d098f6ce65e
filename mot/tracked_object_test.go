package mot

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"
)

type recordingCanvas struct {
	calls []string
}

func (c *recordingCanvas) DrawText(text string, at image.Point, _ color.RGBA, _ float64, _ int) error {
	c.calls = append(c.calls, fmt.Sprintf("text %q at %v", text, at))
	return nil
}

func (c *recordingCanvas) DrawCircle(center image.Point, radius int, _ color.RGBA, _ int) error {
	c.calls = append(c.calls, fmt.Sprintf("circle r=%d at %v", radius, center))
	return nil
}

func (c *recordingCanvas) DrawRectangle(r image.Rectangle, _ color.RGBA, _ int) error {
	c.calls = append(c.calls, fmt.Sprintf("rectangle %v", r))
	return nil
}

func (c *recordingCanvas) DrawLine(from, to image.Point, _ color.RGBA, _ int) error {
	c.calls = append(c.calls, fmt.Sprintf("line %v-%v", from, to))
	return nil
}

func boatData(timestamp, size float64) *ObjData {
	return &ObjData{
		Rect:       image.Rect(0, 0, 2, 2),
		Timestamp:  timestamp,
		Label:      "Boat",
		Confidence: 0.99,
		Color:      color.RGBA{255, 0, 0, 0},
		Size:       size,
	}
}

func TestTrackedObjectNewAppearance(t *testing.T) {
	center := Centroid{X: 1, Y: 1}
	object := NewTrackedObject(center, boatData(1, 0.2))
	if object.Centroid() != center {
		t.Errorf("Wrong centroid: %v, expected: %v", object.Centroid(), center)
	}
	if _, ok := object.GrowthRate(); ok {
		t.Error("Growth rate should be undefined right after registration")
	}
	if object.Disappeared() != 0 {
		t.Errorf("Wrong disappeared counter: %d", object.Disappeared())
	}

	newCenter := Centroid{X: 2, Y: 2}
	err := object.Update(WithCentroid(newCenter), WithData(boatData(2, 0.4)))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if object.Centroid() != newCenter {
		t.Errorf("Wrong centroid: %v, expected: %v", object.Centroid(), newCenter)
	}
	growth, ok := object.GrowthRate()
	if !ok || growth <= 0 {
		t.Errorf("Growth rate should be positive for growing object, got %v (defined: %v)", growth, ok)
	}
	if object.Disappeared() != 0 {
		t.Errorf("Wrong disappeared counter: %d", object.Disappeared())
	}
}

func TestTrackedObjectDisappeared(t *testing.T) {
	center := Centroid{X: 1, Y: 1}
	object := NewTrackedObject(center, boatData(1, 0.2))
	if err := object.Update(MarkDisappeared()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if object.Centroid() != center {
		t.Errorf("Centroid should not change: %v", object.Centroid())
	}
	if object.Disappeared() != 1 {
		t.Errorf("Wrong disappeared counter: %d, expected 1", object.Disappeared())
	}
	if object.HistoryLen() != 1 {
		t.Errorf("History should not change: %d", object.HistoryLen())
	}
	// Match resets counter
	if err := object.Update(WithCentroid(Centroid{X: 3, Y: 3})); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if object.Disappeared() != 0 {
		t.Errorf("Wrong disappeared counter after match: %d, expected 0", object.Disappeared())
	}
}

func TestTrackedObjectNoParams(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 1, Y: 1}, boatData(1, 0.2))
	if err := object.Update(WithCentroid(Centroid{X: 2, Y: 2}), WithData(boatData(2, 0.4))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	oldCentroid := object.Centroid()
	oldHistory := object.History()
	oldDisappeared := object.Disappeared()
	oldGrowth, _ := object.GrowthRate()
	oldSmoothed := object.SmoothedCenter()
	oldTrackLen := len(object.Track())

	if err := object.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if object.Centroid() != oldCentroid {
		t.Errorf("Centroid changed: %v -> %v", oldCentroid, object.Centroid())
	}
	history := object.History()
	if len(history) != len(oldHistory) {
		t.Fatalf("History changed: %d -> %d", len(oldHistory), len(history))
	}
	for i := range history {
		if history[i] != oldHistory[i] {
			t.Errorf("History element %d changed", i)
		}
	}
	if object.Disappeared() != oldDisappeared {
		t.Errorf("Disappeared changed: %d -> %d", oldDisappeared, object.Disappeared())
	}
	if growth, _ := object.GrowthRate(); growth != oldGrowth {
		t.Errorf("Growth rate changed: %v -> %v", oldGrowth, growth)
	}
	if object.SmoothedCenter() != oldSmoothed {
		t.Errorf("Smoothed center changed: %v -> %v", oldSmoothed, object.SmoothedCenter())
	}
	if len(object.Track()) != oldTrackLen {
		t.Errorf("Track changed: %d -> %d", oldTrackLen, len(object.Track()))
	}
}

func TestGrowthRateMovingAverage(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, boatData(1, 0.2))
	steps := []struct {
		timestamp float64
		size      float64
		expected  float64
	}{
		// rate = 0.2 / 1
		{2, 0.4, 0.2 * growthRateScale},
		// rate = 0 -> 1e-10, avg = 0.85 * 0.2 + 0.15 * 1e-10
		{3, 0.4, (0.85*0.2 + 0.15*zeroGrowthRate) * growthRateScale},
		// rate = -0.2 / 0.5 = -0.4
		{3.5, 0.2, (0.85*(0.85*0.2+0.15*zeroGrowthRate) + 0.15*(-0.4)) * growthRateScale},
	}
	for i, step := range steps {
		if err := object.Update(WithCentroid(Centroid{X: i, Y: i}), WithData(boatData(step.timestamp, step.size))); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		growth, ok := object.GrowthRate()
		if !ok {
			t.Fatalf("Step %d: growth rate should be defined", i)
		}
		if math.Abs(growth-step.expected) > 1e-6 {
			t.Errorf("Step %d: growth rate %v, expected %v", i, growth, step.expected)
		}
	}
	if object.HistoryLen() != len(steps)+1 {
		t.Errorf("History length: %d, expected %d", object.HistoryLen(), len(steps)+1)
	}
}

func TestGrowthRateZeroElapsedPanics(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, boatData(1, 0.2))
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on zero elapsed time")
		}
	}()
	_ = object.Update(WithData(boatData(1, 0.3)))
}

func TestTrackMaxLen(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, nil)
	if object.GetMaxTrackLen() != 150 {
		t.Errorf("Default max track length: %d, expected 150", object.GetMaxTrackLen())
	}
	object.SetMaxTrackLen(3)
	for i := 1; i <= 5; i++ {
		if err := object.Update(WithCentroid(Centroid{X: i, Y: 0})); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	track := object.Track()
	if len(track) != 3 {
		t.Fatalf("Track length: %d, expected 3", len(track))
	}
	if track[2] != (Point{X: 5, Y: 0}) {
		t.Errorf("Last track point: %v, expected (5, 0)", track[2])
	}
}

func TestTrackedObjectDraw(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 20, Y: 30}, &testPayload{timestamp: 1})
	canvas := &recordingCanvas{}
	if err := object.Draw(3, canvas); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	expected := []string{
		`text "ID 3" at (10,20)`,
		`circle r=4 at (20,30)`,
	}
	if len(canvas.calls) != len(expected) {
		t.Fatalf("Draw calls: %v, expected: %v", canvas.calls, expected)
	}
	for i := range expected {
		if canvas.calls[i] != expected[i] {
			t.Errorf("Draw call %d: %s, expected: %s", i, canvas.calls[i], expected[i])
		}
	}

	// Drawable payload is drawn after the marker
	if err := object.Update(WithCentroid(Centroid{X: 21, Y: 31}), WithData(boatData(2, 0.1))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	canvas = &recordingCanvas{}
	if err := object.Draw(3, canvas); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(canvas.calls) != 5 {
		t.Fatalf("Draw calls: %v, expected 5", canvas.calls)
	}
	if canvas.calls[0] != "line (20,30)-(21,31)" {
		t.Errorf("Wrong track segment: %s", canvas.calls[0])
	}
	if canvas.calls[3] != `text "Boat | 0.9900 | 2" at (0,-5)` {
		t.Errorf("Wrong payload caption: %s", canvas.calls[3])
	}
	if canvas.calls[4] != "rectangle (0,0)-(2,2)" {
		t.Errorf("Wrong payload box: %s", canvas.calls[4])
	}
}

func TestTrackedObjectDrawTrail(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, nil)
	object.SetMaxTrackLen(3)
	for i := 1; i <= 4; i++ {
		if err := object.Update(WithCentroid(Centroid{X: 10 * i, Y: 5})); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	canvas := &recordingCanvas{}
	if err := object.Draw(0, canvas); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	// Trail follows the capped track, oldest point first
	expected := []string{
		"line (20,5)-(30,5)",
		"line (30,5)-(40,5)",
		`text "ID 0" at (30,-5)`,
		"circle r=4 at (40,5)",
	}
	if len(canvas.calls) != len(expected) {
		t.Fatalf("Draw calls: %v, expected: %v", canvas.calls, expected)
	}
	for i := range expected {
		if canvas.calls[i] != expected[i] {
			t.Errorf("Draw call %d: %s, expected: %s", i, canvas.calls[i], expected[i])
		}
	}
}

func TestNilDataCountsAsMatch(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, boatData(1, 0.2))
	if err := object.Update(WithCentroid(Centroid{X: 1, Y: 1}), WithData(nil)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if object.HistoryLen() != 2 {
		t.Fatalf("History length: %d, expected 2", object.HistoryLen())
	}
	if object.LastData() != nil {
		t.Errorf("Last payload: %v, expected nil", object.LastData())
	}
	if _, ok := object.GrowthRate(); ok {
		t.Error("Growth rate should stay undefined after nil payload")
	}
	// Rate needs two consecutive non-nil payloads
	if err := object.Update(WithCentroid(Centroid{X: 2, Y: 2}), WithData(boatData(3, 0.4))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, ok := object.GrowthRate(); ok {
		t.Error("Growth rate should stay undefined right after nil payload")
	}
	if err := object.Update(WithCentroid(Centroid{X: 3, Y: 3}), WithData(boatData(4, 0.5))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if growth, ok := object.GrowthRate(); !ok || math.Abs(growth-0.1*growthRateScale) > 1e-6 {
		t.Errorf("Growth rate: %v (%v), expected %v", growth, ok, 0.1*growthRateScale)
	}
	if object.HistoryLen() != 4 {
		t.Errorf("History length: %d, expected 4", object.HistoryLen())
	}
}

func TestSmoothedCenterFollowsMeasurements(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 100, Y: 100}, nil)
	for i := 1; i <= 10; i++ {
		if err := object.Update(WithCentroid(Centroid{X: 100 + 5*i, Y: 100})); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	smoothed := object.SmoothedCenter()
	if math.Abs(smoothed.X-150) > 5 || math.Abs(smoothed.Y-100) > 5 {
		t.Errorf("Smoothed center %v is too far from last measurement (150, 100)", smoothed)
	}
	// Unmatched frames move estimate by prediction only
	before := object.SmoothedCenter()
	if err := object.Update(MarkDisappeared()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if object.SmoothedCenter() == before {
		t.Error("Smoothed center should be predicted forward on disappearance")
	}
	if object.Centroid() != (Centroid{X: 150, Y: 100}) {
		t.Errorf("Raw centroid changed on disappearance: %v", object.Centroid())
	}
}

func TestFailedCorrectionKeepsMatch(t *testing.T) {
	object := NewTrackedObject(Centroid{X: 0, Y: 0}, boatData(1, 0.2))
	// Zero covariances make innovation matrix singular
	object.tracker.P.Zero()
	object.tracker.Q.Zero()
	object.tracker.R.Zero()
	err := object.Update(WithCentroid(Centroid{X: 4, Y: 4}), WithData(boatData(2, 0.3)))
	if err == nil {
		t.Fatal("Expected Kalman correction error")
	}
	if object.Centroid() != (Centroid{X: 4, Y: 4}) {
		t.Errorf("Centroid: %v, expected (4, 4)", object.Centroid())
	}
	if object.HistoryLen() != 2 {
		t.Errorf("History length: %d, expected 2", object.HistoryLen())
	}
	if len(object.Track()) != 2 {
		t.Errorf("Track length: %d, expected 2", len(object.Track()))
	}
}
