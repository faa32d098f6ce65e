package mot

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultMaxDisappeared is default number of consecutive frames object may stay unmatched
	DefaultMaxDisappeared = 20
	// DefaultKalmanTimeStep is default time step of objects' Kalman filters (one frame)
	DefaultKalmanTimeStep = 1.0
	// DefaultMaxTrackLen is default number of kept track points per object
	DefaultMaxTrackLen = 150
)

// CentroidTracker is Multi-object tracker (MOT) which matches objects by distance between centroids.
// It is not safe for concurrent use: one Update per frame.
type CentroidTracker struct {
	// Main storage
	objects *Objects
	// Identity for the next registered object
	nextObjectID int
	// Max number of consecutive frames when object could not be found again. Default is 20
	maxDisappeared int
	// Algorithm to use for matching. Default is greedy
	algorithm MatchingAlgorithm
	// Time step for objects' Kalman filters. Default is 1.0 (one frame)
	dt float64
	// Max length of objects' tracks. Default is 150
	maxTrackLen int
	instanceID  uuid.UUID
	logger      *slog.Logger
}

// TrackerOption configures CentroidTracker
type TrackerOption func(*CentroidTracker)

// WithMatchingAlgorithm sets algorithm for matching existing objects with new detections
func WithMatchingAlgorithm(algorithm MatchingAlgorithm) TrackerOption {
	return func(tracker *CentroidTracker) {
		tracker.algorithm = algorithm
	}
}

// WithLogger sets logger for lifecycle events (registration and deregistration)
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(tracker *CentroidTracker) {
		if logger != nil {
			tracker.logger = logger
		}
	}
}

// WithKalmanTimeStep sets time step of Kalman filters of tracked objects
func WithKalmanTimeStep(dt float64) TrackerOption {
	return func(tracker *CentroidTracker) {
		tracker.dt = dt
	}
}

// WithMaxTrackLen sets max length of tracked objects' tracks
func WithMaxTrackLen(maxTrackLen int) TrackerOption {
	return func(tracker *CentroidTracker) {
		tracker.maxTrackLen = maxTrackLen
	}
}

// NewCentroidTrackerDefault creates default instance of CentroidTracker
func NewCentroidTrackerDefault() *CentroidTracker {
	return NewCentroidTracker(DefaultMaxDisappeared)
}

// NewCentroidTracker creates new instance of CentroidTracker.
// Object is deregistered once it has not been matched for more than maxDisappeared consecutive frames.
// Panics if maxDisappeared is negative
func NewCentroidTracker(maxDisappeared int, options ...TrackerOption) *CentroidTracker {
	if maxDisappeared < 0 {
		panic(errors.Errorf("maxDisappeared must be non-negative, got %d", maxDisappeared))
	}
	tracker := &CentroidTracker{
		objects:        newObjects(),
		nextObjectID:   0,
		maxDisappeared: maxDisappeared,
		algorithm:      MatchingAlgorithmGreedy,
		dt:             DefaultKalmanTimeStep,
		maxTrackLen:    DefaultMaxTrackLen,
		instanceID:     uuid.New(),
		logger:         slog.Default(),
	}
	for _, option := range options {
		option(tracker)
	}
	return tracker
}

// Objects returns live objects
func (tracker *CentroidTracker) Objects() *Objects {
	return tracker.objects
}

// Len returns number of live objects
func (tracker *CentroidTracker) Len() int {
	return tracker.objects.Len()
}

// NextObjectID returns identity which will be given to the next registered object
func (tracker *CentroidTracker) NextObjectID() int {
	return tracker.nextObjectID
}

// MaxDisappeared returns max number of consecutive unmatched frames
func (tracker *CentroidTracker) MaxDisappeared() int {
	return tracker.maxDisappeared
}

// InstanceID returns unique identifier of this tracker instance
func (tracker *CentroidTracker) InstanceID() uuid.UUID {
	return tracker.instanceID
}

// QualifiedID returns object identity which is unique across tracker instances
func (tracker *CentroidTracker) QualifiedID(id int) string {
	return fmt.Sprintf("%s/%d", tracker.instanceID.String(), id)
}

// Register stores new object under the next identity and returns that identity
func (tracker *CentroidTracker) Register(centroid Centroid, data Payload) int {
	id := tracker.nextObjectID
	object := NewTrackedObjectWithTime(centroid, data, tracker.dt)
	object.SetMaxTrackLen(tracker.maxTrackLen)
	tracker.objects.insert(id, object)
	tracker.nextObjectID++
	tracker.logger.Debug("object registered", "id", id, "x", centroid.X, "y", centroid.Y)
	return id
}

// Deregister removes object from tracking. Panics if there is no such object
func (tracker *CentroidTracker) Deregister(id int) {
	if !tracker.objects.remove(id) {
		panic(errors.Errorf("can't deregister object %d: not tracked", id))
	}
	tracker.logger.Debug("object deregistered", "id", id)
}

// Update matches new detections with existing objects and returns live objects.
// Failed Kalman correction of a matched object does not interrupt the frame: every match is applied,
// unmatched objects are aged or new ones registered, then the first failure is returned naming all failed ids
func (tracker *CentroidTracker) Update(detections []Detection) (*Objects, error) {
	if len(detections) == 0 {
		for _, objectID := range tracker.objects.IDs() {
			tracker.markDisappeared(objectID)
		}
		return tracker.objects, nil
	}

	inputCentroids := make([]Centroid, len(detections))
	for i := range detections {
		inputCentroids[i] = detections[i].Centroid()
	}

	if tracker.objects.Len() == 0 {
		for i := range detections {
			tracker.Register(inputCentroids[i], detections[i].Data)
		}
		return tracker.objects, nil
	}

	objectIDs := tracker.objects.IDs()
	objectCentroids := make([]Centroid, len(objectIDs))
	for i, objectID := range objectIDs {
		object, _ := tracker.objects.Get(objectID)
		objectCentroids[i] = object.Centroid()
	}

	d := distanceMatrix(objectCentroids, inputCentroids)
	usedRows := make(map[int]struct{})
	usedCols := make(map[int]struct{})
	var updateErr error
	failedIDs := make([]int, 0)
	for _, match := range assign(d, tracker.algorithm) {
		row, col := match[0], match[1]
		objectID := objectIDs[row]
		object, _ := tracker.objects.Get(objectID)
		err := object.Update(WithCentroid(inputCentroids[col]), WithData(detections[col].Data))
		if err != nil {
			if updateErr == nil {
				updateErr = err
			}
			failedIDs = append(failedIDs, objectID)
		}
		usedRows[row] = struct{}{}
		usedCols[col] = struct{}{}
	}

	numRows, numCols := d.Dims()
	if numRows >= numCols {
		// Some of existing objects have (potentially) disappeared
		for row := 0; row < numRows; row++ {
			if _, ok := usedRows[row]; ok {
				continue
			}
			tracker.markDisappeared(objectIDs[row])
		}
	} else {
		// More detections than objects: every unmatched detection is a new object
		for col := 0; col < numCols; col++ {
			if _, ok := usedCols[col]; ok {
				continue
			}
			tracker.Register(inputCentroids[col], detections[col].Data)
		}
	}
	if updateErr != nil {
		return tracker.objects, errors.Wrapf(updateErr, "Can't update objects with ids %v", failedIDs)
	}
	return tracker.objects, nil
}

// markDisappeared increments object's disappearance counter and deregisters it when counter exceeds the limit
func (tracker *CentroidTracker) markDisappeared(objectID int) {
	object, ok := tracker.objects.Get(objectID)
	if !ok {
		panic("should be impossible")
	}
	_ = object.Update(MarkDisappeared())
	if object.Disappeared() > tracker.maxDisappeared {
		tracker.Deregister(objectID)
	}
}

// DrawObjects draws every live object on canvas
func (tracker *CentroidTracker) DrawObjects(canvas Canvas) error {
	for objectID, object := range tracker.objects.All() {
		if err := object.Draw(objectID, canvas); err != nil {
			return err
		}
	}
	return nil
}
