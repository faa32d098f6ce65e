package mot

import (
	"fmt"
	"image"
	"image/color"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

const (
	// Weight of the newest rate in exponential moving average
	growthRateAlpha = 0.15
	// Substitute for exact zero rate so average never sticks to hard zero
	zeroGrowthRate = 1e-10
	// Scale of reported growth rate (readability only)
	growthRateScale = 10000.0
)

var objectMarkerColor = color.RGBA{0, 0, 0, 0}

// TrackedObject is the per-identity state owned by CentroidTracker.
type TrackedObject struct {
	centroid    Centroid
	history     []Payload
	disappeared int
	growthRate  *float64
	rateAverage *float64

	track       []Point
	maxTrackLen int
	smoothed    Point
	tracker     *kalman_filter.Kalman2D
}

// NewTrackedObjectWithTime creates tracked object. dt is the Kalman filter time step (frames or seconds)
func NewTrackedObjectWithTime(centroid Centroid, data Payload, dt float64) *TrackedObject {
	/* Kalman filter props */
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	start := centroid.ToPoint()
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(start.X, start.Y))
	object := TrackedObject{
		centroid:    centroid,
		history:     []Payload{data},
		disappeared: 0,
		track:       make([]Point, 0, DefaultMaxTrackLen),
		maxTrackLen: DefaultMaxTrackLen,
		smoothed:    start,
		tracker:     kf,
	}
	object.track = append(object.track, start)
	return &object
}

// NewTrackedObject creates tracked object with unit time step
func NewTrackedObject(centroid Centroid, data Payload) *TrackedObject {
	return NewTrackedObjectWithTime(centroid, data, DefaultKalmanTimeStep)
}

type objectUpdate struct {
	disappeared bool
	centroid    *Centroid
	data        Payload
	hasData     bool
}

// UpdateOption is a single effect of TrackedObject.Update
type UpdateOption func(*objectUpdate)

// MarkDisappeared marks object as not found on current frame
func MarkDisappeared() UpdateOption {
	return func(u *objectUpdate) {
		u.disappeared = true
	}
}

// WithCentroid sets new position of object and resets disappearance counter
func WithCentroid(centroid Centroid) UpdateOption {
	return func(u *objectUpdate) {
		u.centroid = &centroid
	}
}

// WithData appends payload to object's history and re-evaluates growth rate.
// Nil payload still counts as a match but leaves growth rate as is
func WithData(data Payload) UpdateOption {
	return func(u *objectUpdate) {
		u.data = data
		u.hasData = true
	}
}

// Update applies given effects in order: disappearance, centroid, data.
// Calling it without options does nothing. Failed Kalman correction is returned after all effects are applied
func (object *TrackedObject) Update(options ...UpdateOption) error {
	upd := objectUpdate{}
	for _, option := range options {
		option(&upd)
	}
	if upd.disappeared {
		object.disappeared++
		object.predictNextPosition()
	}
	var err error
	if upd.centroid != nil {
		object.centroid = *upd.centroid
		object.disappeared = 0
		err = object.correctPosition()
	}
	if upd.hasData {
		object.history = append(object.history, upd.data)
		object.updateGrowthRate()
	}
	return err
}

func (object *TrackedObject) predictNextPosition() {
	object.tracker.Predict()
	object.smoothed = NewPoint(object.tracker.GetState())
}

// correctPosition executes both Kalman filter steps for the current centroid.
// Raw centroid joins the track even when correction fails
func (object *TrackedObject) correctPosition() error {
	measured := object.centroid.ToPoint()
	object.track = append(object.track, measured)
	if len(object.track) > object.maxTrackLen {
		object.track = object.track[1:]
	}
	object.tracker.Predict()
	err := object.tracker.Update(measured.X, measured.Y)
	if err != nil {
		return errors.Wrap(err, "Can't update object tracker")
	}
	object.smoothed = NewPoint(object.tracker.GetState())
	return nil
}

// updateGrowthRate re-evaluates exponential moving average of size growth rate.
// Timestamps of two latest payloads must differ
func (object *TrackedObject) updateGrowthRate() {
	n := len(object.history)
	if n < 2 {
		return
	}
	last, prev := object.history[n-1], object.history[n-2]
	if last == nil || prev == nil {
		return
	}
	elapsed := last.GetTimestamp() - prev.GetTimestamp()
	if elapsed == 0 {
		panic(errors.Errorf("zero time elapsed between matched updates (timestamp %v)", last.GetTimestamp()))
	}
	rate := (last.GetSize() - prev.GetSize()) / elapsed
	if rate == 0 {
		rate = zeroGrowthRate
	}
	if object.rateAverage == nil {
		object.rateAverage = &rate
	} else {
		avg := (1-growthRateAlpha)*(*object.rateAverage) + growthRateAlpha*rate
		object.rateAverage = &avg
	}
	growth := *object.rateAverage * growthRateScale
	object.growthRate = &growth
}

// Centroid returns object's current centroid
func (object *TrackedObject) Centroid() Centroid {
	return object.centroid
}

// History returns copy of object's payload history (oldest first)
func (object *TrackedObject) History() []Payload {
	history := make([]Payload, len(object.history))
	copy(history, object.history)
	return history
}

// HistoryLen returns number of successful matches including registration
func (object *TrackedObject) HistoryLen() int {
	return len(object.history)
}

// LastData returns the most recent payload
func (object *TrackedObject) LastData() Payload {
	return object.history[len(object.history)-1]
}

// Disappeared returns number of consecutive frames the object has not been matched
func (object *TrackedObject) Disappeared() int {
	return object.disappeared
}

// GrowthRate returns smoothed (and scaled) size growth rate. Second value is false until object has been matched at least once after registration
func (object *TrackedObject) GrowthRate() (float64, bool) {
	if object.growthRate == nil {
		return 0, false
	}
	return *object.growthRate, true
}

// SmoothedCenter returns Kalman-filtered position of the object
func (object *TrackedObject) SmoothedCenter() Point {
	return object.smoothed
}

// Track returns object's raw centroid track. Be careful: this is not copy of track, but reference to it
func (object *TrackedObject) Track() []Point {
	return object.track
}

// GetMaxTrackLen returns object's max track length
func (object *TrackedObject) GetMaxTrackLen() int {
	return object.maxTrackLen
}

// SetMaxTrackLen sets object's max track length
func (object *TrackedObject) SetMaxTrackLen(newMaxTrackLen int) {
	object.maxTrackLen = newMaxTrackLen
}

// Draw draws track trail, identity label and centroid marker, then payload's own drawing if it has one
func (object *TrackedObject) Draw(id int, canvas Canvas) error {
	for i := 1; i < len(object.track); i++ {
		if err := canvas.DrawLine(object.track[i-1].ToImage(), object.track[i].ToImage(), objectMarkerColor, 1); err != nil {
			return errors.Wrapf(err, "Can't draw track of object %d", id)
		}
	}
	text := fmt.Sprintf("ID %d", id)
	at := image.Pt(object.centroid.X-10, object.centroid.Y-10)
	if err := canvas.DrawText(text, at, objectMarkerColor, 0.5, 2); err != nil {
		return errors.Wrapf(err, "Can't draw label of object %d", id)
	}
	if err := canvas.DrawCircle(object.centroid.ToImage(), 4, objectMarkerColor, -1); err != nil {
		return errors.Wrapf(err, "Can't draw centroid of object %d", id)
	}
	if drawable, ok := object.LastData().(Drawable); ok {
		return drawable.Draw(canvas)
	}
	return nil
}
