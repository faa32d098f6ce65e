package mot

// Detection is a single bounding box found on frame. Coordinates are in pixels
type Detection struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
	Data   Payload
}

// NewDetection creates detection from box corners and payload
func NewDetection(left, top, right, bottom float64, data Payload) Detection {
	return Detection{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Data:   data,
	}
}

// Centroid returns midpoint of detection's bounding box
func (detection Detection) Centroid() Centroid {
	return NewCentroidLTRB(detection.Left, detection.Top, detection.Right, detection.Bottom)
}

// BBox returns detection's bounding box
func (detection Detection) BBox() Rectangle {
	return NewRectLTRB(detection.Left, detection.Top, detection.Right, detection.Bottom)
}
