package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledSamples(t *testing.T) *Samples {
	cfg := Config{L: 2, K: 2, Iterations: 5, WarmUp: 1, Thin: 2, Chain: 3}
	s := NewSamples(cfg, vanillaData())
	require.Equal(t, 2, s.Capacity())

	for n := 0; n < 2; n++ {
		ix, err := s.Next()
		require.NoError(t, err)
		require.Equal(t, n, ix)

		s.ClusterAssignment[ix] = []int{0, 1, 0}
		s.ComponentAssignment[ix] = []int{1, 0, 1, 1}
		s.Pi[ix] = []float64{0.25, 0.75}
		s.W[ix] = []float64{0.5, 0.5, 1, 0}
		s.CoCluster[2][0]++
	}
	return s
}

func TestSamplesStore(t *testing.T) {
	assert := assert.New(t)

	s := filledSamples(t)
	assert.Equal(3, s.J)
	assert.Equal(4, s.N)
	assert.Equal(2, s.P)
	assert.Len(s.Intensities[0], 2*4)
	assert.Len(s.GlobalIntensity[0], 4)
	assert.Equal([]int{3}, s.Chains)

	// Full store refuses further rows
	ix, err := s.Next()
	assert.Equal(-1, ix)
	assert.Error(err)

	assert.NoError(s.Check())
	assert.NoError(s.Normalize())
	assert.Equal(1.0, s.CoCluster[2][0])
	assert.Equal(0.0, s.CoCluster[1][0])
	assert.Error(s.Normalize())
	assert.NoError(s.Check())
}

func TestSamplesBadCheck(t *testing.T) {
	assert := assert.New(t)

	breakers := []func(s *Samples){
		func(s *Samples) { s.ClusterAssignment[0][1] = 2 },
		func(s *Samples) { s.ComponentAssignment[1][0] = -1 },
		func(s *Samples) { s.Pi[0] = []float64{0.5, 0.6} },
		func(s *Samples) { s.W[1] = []float64{0.5, 0.5, 1.5, -0.5} },
		func(s *Samples) { s.CoCluster[0][2] = 1 },
		func(s *Samples) { s.CoCluster[1][1] = 1 },
		func(s *Samples) { s.CoCluster[2][1] = -1 },
	}

	for i, brk := range breakers {
		s := filledSamples(t)
		brk(s)
		assert.Error(s.Check(), "breaker %d", i)
	}

	s := filledSamples(t)
	s.CoCluster[2][1] = 5
	assert.NoError(s.Normalize())
	assert.Error(s.Check())
}

func TestSamplesFile(t *testing.T) {
	assert := assert.New(t)

	s := filledSamples(t)
	require.NoError(t, s.Normalize())

	fn := filepath.Join(t.TempDir(), "fit.json")
	require.NoError(t, s.WriteFile(fn))

	back, err := NewSamplesFromFile(fn)
	require.NoError(t, err)
	assert.Equal(s, back)

	_, err = NewSamplesFromFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(err)
}
