package mot

// IoU calculates Intersection over Union between two rectangles.
// Degenerate rectangles (zero union) give zero
func IoU(r1, r2 Rectangle) float64 {
	xA := max(r1.X, r2.X)
	yA := max(r1.Y, r2.Y)
	xB := min(r1.X+r1.Width, r2.X+r2.Width)
	yB := min(r1.Y+r1.Height, r2.Y+r2.Height)

	interArea := max(0, xB-xA) * max(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}
	union := r1.Width*r1.Height + r2.Width*r2.Height - interArea
	if union <= 0 {
		return 0.0
	}
	return interArea / union
}
