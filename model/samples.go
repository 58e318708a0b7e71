package model

import (
	"encoding/json"
	"io/ioutil"
	"math"

	"github.com/pkg/errors"
)

// Samples is the posterior sample store. Every per-sample field has one row
// per retained iteration. L×K quantities are flattened column-major: cell
// (l, k) is at l + k*L.
type Samples struct {
	L    int       `json:"L"`
	K    int       `json:"K"`
	J    int       `json:"J"`
	N    int       `json:"N"`
	P    int       `json:"P"`
	Grid []float64 `json:"grid"`

	Count int `json:"count"` // Rows written so far

	ClusterAssignment   [][]int     `json:"cluster_assignment"`
	ComponentAssignment [][]int     `json:"component_assignment"`
	Pi                  [][]float64 `json:"pi_samples"`
	W                   [][]float64 `json:"w_samples"`
	Mu                  [][]float64 `json:"mu_samples"`
	Tau                 [][]float64 `json:"tau_samples"`
	Alpha               []float64   `json:"alpha_samples"`
	Rho                 []float64   `json:"rho_samples"`
	Beta                [][]float64 `json:"beta_samples"`
	Intensities         [][]float64 `json:"intensities"`      // K blocks of len(Grid) per row
	GlobalIntensity     [][]float64 `json:"global_intensity"` // len(Grid) per row

	// CoCluster holds pair counts while sampling and probabilities after
	// Normalize. Only entries [j][j'] with j' < j are used.
	CoCluster  [][]float64 `json:"cluster_pair_probability"`
	Normalized bool        `json:"normalized"`

	AlphaPrior float64 `json:"alpha_prior"`
	RhoPrior   float64 `json:"rho_prior"`

	Chains []int `json:"chains"` // Labels of the chains that produced these rows
}

// NewSamples allocates a store for cfg.RetainedCount() rows
func NewSamples(cfg Config, d *Data) *Samples {
	rows := cfg.RetainedCount()
	lk := cfg.L * cfg.K

	s := &Samples{
		L:    cfg.L,
		K:    cfg.K,
		J:    d.J(),
		N:    d.N(),
		P:    d.P(),
		Grid: append([]float64(nil), d.Grid...),

		ClusterAssignment:   intRows(rows, d.J()),
		ComponentAssignment: intRows(rows, d.N()),
		Pi:                  floatRows(rows, cfg.K),
		W:                   floatRows(rows, lk),
		Mu:                  floatRows(rows, lk),
		Tau:                 floatRows(rows, lk),
		Alpha:               make([]float64, rows),
		Rho:                 make([]float64, rows),
		Beta:                floatRows(rows, d.P()),
		Intensities:         floatRows(rows, cfg.K*len(d.Grid)),
		GlobalIntensity:     floatRows(rows, len(d.Grid)),
		CoCluster:           floatRows(d.J(), d.J()),
		Chains:              []int{cfg.Chain},
	}

	return s
}

func intRows(rows, cols int) [][]int {
	r := make([][]int, rows)
	for i := range r {
		r[i] = make([]int, cols)
	}
	return r
}

func floatRows(rows, cols int) [][]float64 {
	r := make([][]float64, rows)
	for i := range r {
		r[i] = make([]float64, cols)
	}
	return r
}

// Capacity is the number of rows allocated
func (s *Samples) Capacity() int {
	return len(s.Alpha)
}

// Next reserves the next row and returns its index. An error is returned
// once every row is used.
func (s *Samples) Next() (int, error) {
	if s.Normalized {
		return -1, errors.New("Sample store is already normalized")
	}
	if s.Count >= s.Capacity() {
		return -1, errors.Errorf("Sample store is full (%d rows)", s.Capacity())
	}
	ix := s.Count
	s.Count++
	return ix, nil
}

// Normalize turns the co-clustering counts into probabilities. It may only
// be called once.
func (s *Samples) Normalize() error {
	if s.Normalized {
		return errors.New("Sample store is already normalized")
	}
	s.Normalized = true
	if s.Count < 1 {
		return nil
	}

	n := float64(s.Count)
	for j := range s.CoCluster {
		for jj := 0; jj < j; jj++ {
			s.CoCluster[j][jj] /= n
		}
	}
	return nil
}

// Check returns an error if the store breaks one of its invariants
func (s *Samples) Check() error {
	if s.Count > s.Capacity() {
		return errors.Errorf("Count %d exceeds capacity %d", s.Count, s.Capacity())
	}

	for ix := 0; ix < s.Count; ix++ {
		for j, c := range s.ClusterAssignment[ix] {
			if c < 0 || c >= s.K {
				return errors.Errorf("Sample %d: group %d has cluster %d outside [0, %d)", ix, j, c, s.K)
			}
		}
		for i, c := range s.ComponentAssignment[ix] {
			if c < 0 || c >= s.L {
				return errors.Errorf("Sample %d: observation %d has component %d outside [0, %d)", ix, i, c, s.L)
			}
		}
		if err := checkWeights(s.Pi[ix]); err != nil {
			return errors.Wrapf(err, "Sample %d: cluster weights", ix)
		}
		for k := 0; k < s.K; k++ {
			if err := checkWeights(s.W[ix][k*s.L : (k+1)*s.L]); err != nil {
				return errors.Wrapf(err, "Sample %d: component weights of cluster %d", ix, k)
			}
		}
	}

	for j, row := range s.CoCluster {
		for jj, p := range row {
			if jj >= j && p != 0 {
				return errors.Errorf("Co-clustering entry (%d, %d) is outside the lower triangle", j, jj)
			}
			if p < 0 || (s.Normalized && p > 1) {
				return errors.Errorf("Co-clustering entry (%d, %d) = %v", j, jj, p)
			}
		}
	}

	return nil
}

func checkWeights(w []float64) error {
	const EPS = 1e-8

	var sum float64
	for _, p := range w {
		if p < 0 {
			return errors.Errorf("negative weight %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) >= EPS {
		return errors.Errorf("weights sum to %f", sum)
	}
	return nil
}

// WriteFile saves the store as JSON
func (s *Samples) WriteFile(filename string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "Could not encode samples")
	}
	if err = ioutil.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrapf(err, "Could not WRITE samples to %s", filename)
	}
	return nil
}

// NewSamplesFromFile reads a store written by WriteFile
func NewSamplesFromFile(filename string) (*Samples, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ samples from %s", filename)
	}

	s := &Samples{}
	if err = json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE samples from %s", filename)
	}

	return s, nil
}
