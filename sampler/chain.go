package sampler

import (
	"log"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// Chain is a single Markov chain over the nested mixture. Everything it
// mutates (state, engine, samples) is owned by the chain, so separate chains
// may run concurrently.
type Chain struct {
	Data    *model.Data
	Prior   model.Prior
	Config  model.Config
	State   *State
	Engine  *rand.Engine
	Coef    *Metropolis
	Samples *model.Samples
	Iter    int // Iterations completed

	Log      *log.Logger    // Optional progress lines
	Progress func(c *Chain) // Optional, called after every iteration

	counts []float64
}

// NewChain seeds a chain and draws its starting state from the prior
func NewChain(d *model.Data, p model.Prior, cfg model.Config) (*Chain, error) {
	if d == nil {
		return nil, errors.New("No data supplied")
	}

	eng, err := rand.NewEngine(cfg.Seed)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not create engine for chain %d", cfg.Chain)
	}

	L, K := cfg.L, cfg.K
	st := NewState(cfg, d)

	alpha := eng.Gamma(p.AlphaShape, p.AlphaRate)
	rho := eng.Gamma(p.RhoShape, p.RhoRate)
	st.Alpha, st.Rho = alpha, rho

	// alpha seeds the component level and rho the cluster level here, while
	// ResampleConcentration ties alpha to clusters and rho to components.
	st.U, st.LogU = NestedStickBreak(eng, L, K, alpha)
	st.V, st.LogV = StickBreak(eng, K, rho)
	st.W = NestedStickWeights(st.U, st.LogU, L, K)
	st.Pi = StickWeights(st.V, st.LogV)

	for c := range st.Mu {
		st.Mu[c], st.Tau[c] = DrawKernel(eng, p, 0, 0, 0)
	}
	for i := range st.Beta {
		st.Beta[i] = eng.Normal()
	}

	samples := model.NewSamples(cfg, d)
	samples.AlphaPrior = alpha
	samples.RhoPrior = rho

	ch := &Chain{
		Data:    d,
		Prior:   p,
		Config:  cfg,
		State:   st,
		Engine:  eng,
		Coef:    NewMetropolis(d.P(), p.BetaPrecision),
		Samples: samples,
		counts:  d.Counts(),
	}

	return ch, nil
}

// Step runs one full iteration. Order matters: weights are rebuilt from this
// iteration's assignments before the next density evaluation.
func (c *Chain) Step() error {
	c.Iter++
	d, st, eng := c.Data, c.State, c.Engine

	err := SampleClusters(eng, ClusterLogProbs(d, st), st.ClusterLabel)
	if err != nil {
		return errors.Wrapf(err, "Chain %d iteration %d", c.Config.Chain, c.Iter)
	}

	err = SampleComponents(eng, ComponentLogProbs(d, st), st.ComponentLabel)
	if err != nil {
		return errors.Wrapf(err, "Chain %d iteration %d", c.Config.Chain, c.Iter)
	}

	st.ClusterCount = ClusterCounts(st.ClusterLabel, st.K)
	st.ComponentCount = ComponentCounts(d, st.ClusterLabel, st.ComponentLabel, st.L, st.K)

	UpdateClusterWeights(eng, st)
	UpdateComponentWeights(eng, st)

	sum, sumSq := KernelStats(d, st.ClusterLabel, st.ComponentLabel, st.L, st.K)
	UpdateKernels(eng, c.Prior, st, sum, sumSq)

	if err = ResampleConcentration(eng, c.Prior, st); err != nil {
		return errors.Wrapf(err, "Chain %d iteration %d", c.Config.Chain, c.Iter)
	}

	c.Coef.Step(eng, d.X, c.counts, st.Beta)

	if c.Config.Retain(c.Iter) {
		if err = Accumulate(d, st, c.Samples); err != nil {
			return errors.Wrapf(err, "Chain %d iteration %d", c.Config.Chain, c.Iter)
		}
	}

	c.report()
	return nil
}

// Run steps until the configured iteration count and returns the samples
// with the co-clustering matrix normalized.
func (c *Chain) Run() (*model.Samples, error) {
	if c.Log != nil {
		c.Log.Printf("Chain %d: beginning sampling\n", c.Config.Chain)
	}

	for c.Iter < c.Config.Iterations {
		if err := c.Step(); err != nil {
			return nil, err
		}
	}

	if err := c.Samples.Normalize(); err != nil {
		return nil, errors.Wrapf(err, "Chain %d", c.Config.Chain)
	}

	return c.Samples, nil
}

func (c *Chain) report() {
	if c.Progress != nil {
		c.Progress(c)
	}
	if c.Log == nil {
		return
	}

	cfg := c.Config
	step := cfg.Iterations / 10
	if step < 1 {
		step = 1
	}
	if c.Iter%step != 0 && c.Iter != cfg.WarmUp+1 && c.Iter != cfg.Iterations {
		return
	}

	phase := "Sampling"
	if c.Iter <= cfg.WarmUp {
		phase = "Warmup"
	}
	c.Log.Printf(
		"Chain %d: Iteration %d / %d [%3.0f%%] (%s) accept %.2f\n",
		cfg.Chain, c.Iter, cfg.Iterations,
		100*float64(c.Iter)/float64(cfg.Iterations),
		phase, c.Coef.AcceptRate(),
	)
}

// RunChains runs every sampler in its own goroutine and waits for all of
// them. The first error encountered (in sampler order) is returned.
func RunChains(samplers []Sampler) ([]*model.Samples, error) {
	results := make([]*model.Samples, len(samplers))
	errs := make([]error, len(samplers))

	var wg sync.WaitGroup
	for i, s := range samplers {
		wg.Add(1)
		go func(i int, s Sampler) {
			defer wg.Done()
			results[i], errs[i] = s.Run()
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "Sampler %d failed", i)
		}
	}

	return results, nil
}

// MergeChains pools the retained draws of several normalized runs over the
// same data and truncation. Co-clustering probabilities are averaged
// weighted by each run's retained count. Prior draws come from the first run.
func MergeChains(runs []*model.Samples) (*model.Samples, error) {
	if len(runs) < 1 {
		return nil, errors.Errorf("Can not merge 0 chains")
	}
	if len(runs) == 1 {
		return runs[0], nil
	}

	first := runs[0]
	total := 0
	for i, s := range runs {
		if !s.Normalized {
			return nil, errors.Errorf("Run %d is not normalized", i)
		}
		if s.L != first.L || s.K != first.K || s.J != first.J || s.N != first.N ||
			s.P != first.P || len(s.Grid) != len(first.Grid) {
			return nil, errors.Errorf("Run %d has different dimensions than run 0", i)
		}
		if !floats.Equal(s.Grid, first.Grid) {
			return nil, errors.Errorf("Run %d was evaluated on a different grid than run 0", i)
		}
		total += s.Count
	}

	m := &model.Samples{
		L:          first.L,
		K:          first.K,
		J:          first.J,
		N:          first.N,
		P:          first.P,
		Grid:       append([]float64(nil), first.Grid...),
		Count:      total,
		CoCluster:  make([][]float64, first.J),
		Normalized: true,
		AlphaPrior: first.AlphaPrior,
		RhoPrior:   first.RhoPrior,
	}
	for j := range m.CoCluster {
		m.CoCluster[j] = make([]float64, first.J)
	}

	for _, s := range runs {
		n := s.Count
		m.ClusterAssignment = append(m.ClusterAssignment, s.ClusterAssignment[:n]...)
		m.ComponentAssignment = append(m.ComponentAssignment, s.ComponentAssignment[:n]...)
		m.Pi = append(m.Pi, s.Pi[:n]...)
		m.W = append(m.W, s.W[:n]...)
		m.Mu = append(m.Mu, s.Mu[:n]...)
		m.Tau = append(m.Tau, s.Tau[:n]...)
		m.Alpha = append(m.Alpha, s.Alpha[:n]...)
		m.Rho = append(m.Rho, s.Rho[:n]...)
		m.Beta = append(m.Beta, s.Beta[:n]...)
		m.Intensities = append(m.Intensities, s.Intensities[:n]...)
		m.GlobalIntensity = append(m.GlobalIntensity, s.GlobalIntensity[:n]...)
		m.Chains = append(m.Chains, s.Chains...)

		if total < 1 {
			continue
		}
		weight := float64(n) / float64(total)
		for j, row := range s.CoCluster {
			for jj := 0; jj < j; jj++ {
				m.CoCluster[j][jj] += weight * row[jj]
			}
		}
	}

	return m, nil
}
