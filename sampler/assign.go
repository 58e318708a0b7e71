package sampler

import (
	"github.com/pkg/errors"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// SampleClusters draws a cluster label for every group from its row of log
// probabilities.
func SampleClusters(eng *rand.Engine, logProbs [][]float64, labels []int) error {
	for j, row := range logProbs {
		c, err := eng.CategoricalLog(row)
		if err != nil {
			return errors.Wrapf(err, "Could not assign group %d to a cluster", j)
		}
		labels[j] = c
	}
	return nil
}

// SampleComponents draws a component label for every observation. The rows
// must already be conditioned on the observation's cluster.
func SampleComponents(eng *rand.Engine, logProbs [][]float64, labels []int) error {
	for i, row := range logProbs {
		c, err := eng.CategoricalLog(row)
		if err != nil {
			return errors.Wrapf(err, "Could not assign observation %d to a component", i)
		}
		labels[i] = c
	}
	return nil
}

// ClusterCounts returns the number of groups carrying each of the K labels
func ClusterCounts(labels []int, K int) []int {
	counts := make([]int, K)
	for _, c := range labels {
		counts[c]++
	}
	return counts
}

// ComponentCounts returns the number of observations in each (component,
// cluster) cell, column-major.
func ComponentCounts(d *model.Data, clusterLabels, componentLabels []int, L, K int) []int {
	counts := make([]int, L*K)
	for j, g := range d.Groups {
		k := clusterLabels[j]
		for i := g.Start; i < g.Start+g.Len; i++ {
			counts[cell(componentLabels[i], k, L)]++
		}
	}
	return counts
}

// KernelStats returns the sum and sum of squares of the distances assigned
// to each (component, cluster) cell.
func KernelStats(d *model.Data, clusterLabels, componentLabels []int, L, K int) (sum, sumSq []float64) {
	sum = make([]float64, L*K)
	sumSq = make([]float64, L*K)
	for j, g := range d.Groups {
		k := clusterLabels[j]
		for i := g.Start; i < g.Start+g.Len; i++ {
			c := cell(componentLabels[i], k, L)
			r := d.Distances[i]
			sum[c] += r
			sumSq[c] += r * r
		}
	}
	return sum, sumSq
}
