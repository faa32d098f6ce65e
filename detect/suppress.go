package detect

import (
	"slices"

	"github.com/LdDl/seawatch/mot"
)

// DefaultSuppressIoU is overlap above which weaker of two detections is dropped
const DefaultSuppressIoU = 0.7

// Suppress drops every detection which overlaps a more confident one by more than iouThreshold, regardless of class.
// Network applies per-class suppression only, so the same hull may come as both "Boat" and "Speed boat".
// Kept detections preserve input order. Non-positive threshold disables suppression
func Suppress(detections []mot.Detection, iouThreshold float64) []mot.Detection {
	if iouThreshold <= 0 || len(detections) < 2 {
		return detections
	}
	order := make([]int, len(detections))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ca, cb := confidence(detections[a]), confidence(detections[b])
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		default:
			return 0
		}
	})
	suppressed := make([]bool, len(detections))
	for pos, i := range order {
		if suppressed[i] {
			continue
		}
		box := detections[i].BBox()
		for _, j := range order[pos+1:] {
			if suppressed[j] {
				continue
			}
			if mot.IoU(box, detections[j].BBox()) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	kept := make([]mot.Detection, 0, len(detections))
	for i := range detections {
		if !suppressed[i] {
			kept = append(kept, detections[i])
		}
	}
	return kept
}

func confidence(detection mot.Detection) float64 {
	if data, ok := detection.Data.(*mot.ObjData); ok && data != nil {
		return data.Confidence
	}
	return 0
}
