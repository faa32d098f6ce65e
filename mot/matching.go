package mot

import (
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MatchingAlgorithm is for algorithm type for matching existing objects to new centroids
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy pairs every object with its nearest centroid, processing objects by ascending distance. Suboptimal on crossing paths
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for minimal total distance assignment
	MatchingAlgorithmHungarian
)

func (algorithm MatchingAlgorithm) String() string {
	switch algorithm {
	case MatchingAlgorithmGreedy:
		return "greedy"
	case MatchingAlgorithmHungarian:
		return "hungarian"
	default:
		return "unknown"
	}
}

// ParseMatchingAlgorithm converts algorithm name into MatchingAlgorithm
func ParseMatchingAlgorithm(value string) (MatchingAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "greedy":
		return MatchingAlgorithmGreedy, nil
	case "hungarian":
		return MatchingAlgorithmHungarian, nil
	default:
		return MatchingAlgorithmGreedy, errors.Errorf("unknown matching algorithm %q", value)
	}
}

// distanceMatrix returns pairwise euclidean distances: rows are existing objects, columns are new centroids.
// Both slices must be non-empty
func distanceMatrix(rows, cols []Centroid) *mat.Dense {
	d := mat.NewDense(len(rows), len(cols), nil)
	for i, rowCentroid := range rows {
		for j, colCentroid := range cols {
			d.Set(i, j, centroidDistance(rowCentroid, colCentroid))
		}
	}
	return d
}

// assign returns matched (row, col) pairs using given algorithm
func assign(d *mat.Dense, algorithm MatchingAlgorithm) [][2]int {
	switch algorithm {
	case MatchingAlgorithmHungarian:
		return hungarianAssign(d)
	default:
		return greedyAssign(d)
	}
}

// greedyAssign takes nearest column for each row. Rows are processed by ascending minimum distance;
// if row's nearest column has been taken already then the row stays unmatched
func greedyAssign(d *mat.Dense) [][2]int {
	numRows, _ := d.Dims()
	priorityQueue := make(distanceHeap, 0, numRows)
	for i := 0; i < numRows; i++ {
		row := d.RawRowView(i)
		col := floats.MinIdx(row)
		priorityQueue.Push(&rowCandidate{
			row:      i,
			col:      col,
			distance: row[col],
		})
	}
	usedRows := make(map[int]struct{})
	usedCols := make(map[int]struct{})
	matches := make([][2]int, 0, numRows)
	for priorityQueue.Len() > 0 {
		candidate := priorityQueue.Pop()
		if _, ok := usedRows[candidate.row]; ok {
			continue
		}
		if _, ok := usedCols[candidate.col]; ok {
			continue
		}
		matches = append(matches, [2]int{candidate.row, candidate.col})
		usedRows[candidate.row] = struct{}{}
		usedCols[candidate.col] = struct{}{}
	}
	return matches
}

// hungarianAssign finds assignment with minimal total distance using Kuhn-Munkres with potentials.
// Matrix is padded to square with zero cells: every full assignment uses the same number of them,
// so padding never changes which real pairs are optimal
func hungarianAssign(d *mat.Dense) [][2]int {
	numRows, numCols := d.Dims()
	size := max(numRows, numCols)
	cost := mat.NewDense(size, size, nil)
	cost.Slice(0, numRows, 0, numCols).(*mat.Dense).Copy(d)

	// Potentials and matching are 1-indexed, index 0 is virtual column
	inf := math.Inf(1)
	u := make([]float64, size+1)
	v := make([]float64, size+1)
	colRow := make([]int, size+1)
	way := make([]int, size+1)
	minv := make([]float64, size+1)
	used := make([]bool, size+1)
	for i := 1; i <= size; i++ {
		colRow[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := colRow[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= size; j++ {
				if used[j] {
					continue
				}
				reduced := cost.At(i0-1, j-1) - u[i0] - v[j]
				if reduced < minv[j] {
					minv[j] = reduced
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= size; j++ {
				if used[j] {
					u[colRow[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if colRow[j0] == 0 {
				break
			}
		}
		// Augment along alternating path
		for j0 != 0 {
			prev := way[j0]
			colRow[j0] = colRow[prev]
			j0 = prev
		}
	}

	matches := make([][2]int, 0, min(numRows, numCols))
	for j := 1; j <= size; j++ {
		row, col := colRow[j]-1, j-1
		if row < numRows && col < numCols {
			matches = append(matches, [2]int{row, col})
		}
	}
	slices.SortFunc(matches, func(a, b [2]int) int {
		return a[0] - b[0]
	})
	return matches
}
