package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// SimCluster is one true cluster: a Gaussian mixture over distances
type SimCluster struct {
	Weight float64   // Probability that a group belongs to this cluster
	W      []float64 // Component weights
	Mu     []float64
	Sigma  []float64
}

// Simulation describes a synthetic data set. Group counts are Poisson with
// rate exp(x'Beta) where x is an intercept followed by standard normal
// covariates.
type Simulation struct {
	Groups   int
	Beta     []float64
	Clusters []SimCluster
	Grid     []float64
}

// DefaultSimulation has two well separated clusters: one unimodal and one
// bimodal, about 20 distances per group.
func DefaultSimulation() Simulation {
	grid := make([]float64, 100)
	floats.Span(grid, 0.1, 10)

	return Simulation{
		Groups: 50,
		Beta:   []float64{math.Log(20)},
		Clusters: []SimCluster{
			{Weight: 0.5, W: []float64{1}, Mu: []float64{3}, Sigma: []float64{0.5}},
			{Weight: 0.5, W: []float64{0.5, 0.5}, Mu: []float64{1.5, 7}, Sigma: []float64{0.5, 0.75}},
		},
		Grid: grid,
	}
}

// Check returns an error if the simulation can not be run
func (s Simulation) Check() error {
	if s.Groups < 1 {
		return errors.Errorf("Invalid group count %d", s.Groups)
	}
	if len(s.Beta) < 1 {
		return errors.New("Need at least an intercept coefficient")
	}
	if len(s.Clusters) < 1 {
		return errors.New("Need at least one cluster")
	}
	for k, c := range s.Clusters {
		if c.Weight <= 0 {
			return errors.Errorf("Cluster %d has weight %v", k, c.Weight)
		}
		if len(c.W) < 1 || len(c.W) != len(c.Mu) || len(c.W) != len(c.Sigma) {
			return errors.Errorf("Cluster %d has mismatched component lengths", k)
		}
		for l, sd := range c.Sigma {
			if sd <= 0 {
				return errors.Errorf("Cluster %d component %d has sigma %v", k, l, sd)
			}
		}
	}
	if len(s.Grid) < 1 {
		return errors.New("Empty grid")
	}
	return nil
}

// Simulate draws a data set and returns it with the true cluster of every
// group.
func Simulate(eng *rand.Engine, s Simulation) (*model.Data, []int, error) {
	if err := s.Check(); err != nil {
		return nil, nil, errors.Wrap(err, "Bad simulation")
	}

	J, P := s.Groups, len(s.Beta)
	x := mat.NewDense(J, P, nil)
	for j := 0; j < J; j++ {
		x.Set(j, 0, 1)
		for p := 1; p < P; p++ {
			x.Set(j, p, eng.Normal())
		}
	}

	eta := mat.NewVecDense(J, nil)
	eta.MulVec(x, mat.NewVecDense(P, append([]float64(nil), s.Beta...)))

	clusterWeights := make([]float64, len(s.Clusters))
	for k, c := range s.Clusters {
		clusterWeights[k] = c.Weight
	}

	d := &model.Data{
		X:      x,
		Groups: make([]model.Group, J),
		Grid:   append([]float64(nil), s.Grid...),
	}
	truth := make([]int, J)

	for j := 0; j < J; j++ {
		k, err := eng.Categorical(clusterWeights)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Cluster draw for group %d", j)
		}
		truth[j] = k
		c := s.Clusters[k]

		pois := distuv.Poisson{Lambda: math.Exp(eta.AtVec(j)), Src: eng.Gen}
		n := int(pois.Rand())

		d.Groups[j] = model.Group{Start: len(d.Distances), Len: n}
		for i := 0; i < n; i++ {
			l, err := eng.Categorical(c.W)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "Component draw for group %d", j)
			}
			d.Distances = append(d.Distances, c.Mu[l]+c.Sigma[l]*eng.Normal())
		}
	}

	return d, truth, nil
}
