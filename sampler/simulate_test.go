package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestSimulate(t *testing.T) {
	assert := assert.New(t)

	sim := DefaultSimulation()
	sim.Groups = 200
	sim.Beta = []float64{3, 0.25}

	d, truth, err := Simulate(testEngine(t, 7), sim)
	require.NoError(t, err)
	assert.NoError(d.Check())
	assert.Equal(200, d.J())
	assert.Equal(2, d.P())
	assert.Len(truth, 200)

	seen := make([]int, len(sim.Clusters))
	for _, k := range truth {
		require.True(t, k >= 0 && k < len(sim.Clusters))
		seen[k]++
	}
	for _, n := range seen {
		assert.True(n > 50, "cluster sizes %v", seen)
	}

	for j := 0; j < d.J(); j++ {
		assert.Equal(1.0, d.X.At(j, 0))
	}

	// Mean count is about exp(3 + 0.25^2 / 2)
	mean := stat.Mean(d.Counts(), nil)
	assert.InDelta(20.7, mean, 2.5)

	// Unimodal cluster distances sit around 3
	var unimodal []float64
	for j, k := range truth {
		if k == 0 {
			unimodal = append(unimodal, d.Group(j)...)
		}
	}
	assert.InDelta(3.0, stat.Mean(unimodal, nil), 0.1)
}

func TestSimulateDeterministic(t *testing.T) {
	assert := assert.New(t)

	d1, t1, err := Simulate(testEngine(t, 7), DefaultSimulation())
	require.NoError(t, err)
	d2, t2, err := Simulate(testEngine(t, 7), DefaultSimulation())
	require.NoError(t, err)

	assert.Equal(t1, t2)
	assert.Equal(d1.Distances, d2.Distances)
	assert.Equal(d1.Groups, d2.Groups)
}

func TestSimulateBadCheck(t *testing.T) {
	assert := assert.New(t)

	breakers := []func(s *Simulation){
		func(s *Simulation) { s.Groups = 0 },
		func(s *Simulation) { s.Beta = nil },
		func(s *Simulation) { s.Clusters = nil },
		func(s *Simulation) { s.Clusters[0].Weight = 0 },
		func(s *Simulation) { s.Clusters[1].Mu = []float64{1} },
		func(s *Simulation) { s.Clusters[1].Sigma[1] = 0 },
		func(s *Simulation) { s.Grid = nil },
	}

	for i, brk := range breakers {
		sim := DefaultSimulation()
		brk(&sim)
		d, truth, err := Simulate(testEngine(t, 7), sim)
		assert.Error(err, "breaker %d", i)
		assert.Nil(d)
		assert.Nil(truth)
	}
}
