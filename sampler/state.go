package sampler

import (
	"github.com/apeterson91/rndpp/model"
)

// State is everything one chain overwrites on every iteration. L×K
// quantities are column-major (see cell) and component breaks are stored
// per cluster column, L-1 at a time.
type State struct {
	L int
	K int

	Alpha float64 // Concentration used by the cluster level posterior
	Rho   float64 // Concentration used by the component level posterior

	V    []float64 // K-1 cluster break points
	LogV []float64 // log(1 - V), finite even when a break rounds to 1
	U    []float64 // (L-1)*K component break points
	LogU []float64 // log(1 - U)
	Pi   []float64 // K cluster weights
	W    []float64 // L*K component weights, each column sums to 1

	Mu  []float64 // L*K kernel means
	Tau []float64 // L*K kernel variances

	Beta []float64 // Regression coefficients

	ClusterLabel   []int // One per group
	ComponentLabel []int // One per observation
	ClusterCount   []int // Groups per cluster
	ComponentCount []int // Observations per (component, cluster) cell
}

// NewState allocates zeroed state for the given sizes
func NewState(cfg model.Config, d *model.Data) *State {
	lk := cfg.L * cfg.K
	return &State{
		L:              cfg.L,
		K:              cfg.K,
		V:              make([]float64, cfg.K-1),
		LogV:           make([]float64, cfg.K-1),
		U:              make([]float64, (cfg.L-1)*cfg.K),
		LogU:           make([]float64, (cfg.L-1)*cfg.K),
		Pi:             make([]float64, cfg.K),
		W:              make([]float64, lk),
		Mu:             make([]float64, lk),
		Tau:            make([]float64, lk),
		Beta:           make([]float64, d.P()),
		ClusterLabel:   make([]int, d.J()),
		ComponentLabel: make([]int, d.N()),
		ClusterCount:   make([]int, cfg.K),
		ComponentCount: make([]int, lk),
	}
}

// cell returns the flat index of component l in cluster k
func cell(l, k, L int) int {
	return l + k*L
}
