package sampler

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/apeterson91/rndpp/rand"
)

func TestCounts(t *testing.T) {
	assert := assert.New(t)

	d := testData([][]float64{{1, 2}, {3}, {4, 5, 6}}, []float64{1})
	clusters := []int{2, 0, 2}
	components := []int{0, 1, 1, 1, 0, 1}
	const L, K = 2, 3

	cc := ClusterCounts(clusters, K)
	assert.Equal([]int{1, 0, 2}, cc)

	mc := ComponentCounts(d, clusters, components, L, K)
	assert.Len(mc, L*K)
	assert.Equal(1, mc[cell(1, 0, L)])
	assert.Equal(2, mc[cell(0, 2, L)])
	assert.Equal(3, mc[cell(1, 2, L)])
	total := 0
	for _, c := range mc {
		total += c
	}
	assert.Equal(d.N(), total)

	sum, sumSq := KernelStats(d, clusters, components, L, K)
	assert.InDelta(3.0, sum[cell(1, 0, L)], 1e-12)
	assert.InDelta(1.0+5.0, sum[cell(0, 2, L)], 1e-12)
	assert.InDelta(1.0+25.0, sumSq[cell(0, 2, L)], 1e-12)
	assert.InDelta(2.0+4.0+6.0, sum[cell(1, 2, L)], 1e-12)
	assert.InDelta(4.0+16.0+36.0, sumSq[cell(1, 2, L)], 1e-12)
	assert.Equal(0.0, sum[cell(0, 1, L)])
}

func TestSampleAssignments(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t, 3)

	inf := math.Inf(-1)
	logProbs := [][]float64{
		{inf, 0, inf},
		{-2000, inf, -2000 + math.Log(1e-300)},
	}
	labels := make([]int, 2)
	for i := 0; i < 50; i++ {
		assert.NoError(SampleClusters(eng, logProbs, labels))
		assert.Equal(1, labels[0])
		assert.Equal(0, labels[1])
	}

	comps := make([]int, 1)
	assert.NoError(SampleComponents(eng, [][]float64{{inf, inf, 0}}, comps))
	assert.Equal(2, comps[0])
}

// No fallback: a row without mass is a fatal error
func TestSampleAssignmentsDegenerate(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t, 3)

	inf := math.Inf(-1)
	err := SampleClusters(eng, [][]float64{{0, 0}, {inf, inf}}, make([]int, 2))
	assert.Error(err)
	assert.Equal(rand.ErrDegenerate, errors.Cause(err))

	err = SampleComponents(eng, [][]float64{{math.NaN(), 0}}, make([]int, 1))
	assert.Equal(rand.ErrDegenerate, errors.Cause(err))
}
