package model

import (
	"math"

	"github.com/pkg/errors"
)

// GreenLoss scores each sampled partition against the co-clustering
// probabilities with the equal cost Binder loss of Green: the sum over
// group pairs j' < j of |1{c_j == c_j'} - p(j, j')|. Only the lower
// triangle of coCluster is read.
func GreenLoss(assignments [][]int, coCluster [][]float64) []float64 {
	loss := make([]float64, len(assignments))
	for ix, labels := range assignments {
		var l float64
		for j := range labels {
			for jj := 0; jj < j; jj++ {
				p := coCluster[j][jj]
				if labels[j] == labels[jj] {
					l += 1 - p
				} else {
					l += p
				}
			}
		}
		loss[ix] = l
	}
	return loss
}

// PointEstimate returns the retained sample whose cluster assignment has the
// smallest GreenLoss, and that loss. Ties go to the earliest sample.
func (s *Samples) PointEstimate() (int, float64, error) {
	if !s.Normalized {
		return -1, 0, errors.New("Co-clustering must be normalized before choosing a partition")
	}
	if s.Count < 1 {
		return -1, 0, errors.New("No samples to choose a partition from")
	}

	best, bestLoss := -1, math.Inf(1)
	for ix, l := range GreenLoss(s.ClusterAssignment[:s.Count], s.CoCluster) {
		if l < bestLoss {
			best, bestLoss = ix, l
		}
	}
	return best, bestLoss, nil
}
