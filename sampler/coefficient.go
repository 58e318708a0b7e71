package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/apeterson91/rndpp/buffer"
	"github.com/apeterson91/rndpp/rand"
)

// AcceptWindow is the number of recent proposals used for AcceptRate
const AcceptWindow = 100

// Metropolis is a random walk Metropolis step for the regression
// coefficients. The proposal scale is fixed for the whole run.
type Metropolis struct {
	Scale     float64 // Proposal standard deviation per coordinate
	Precision float64 // Precision of the zero mean Gaussian prior

	Proposals int64
	Accepts   int64
	Recent    *buffer.CircularInt // 1 for accepted, 0 for rejected
}

// NewMetropolis uses the 2.4/sqrt(p) random walk scale
func NewMetropolis(p int, precision float64) *Metropolis {
	return &Metropolis{
		Scale:     2.4 / math.Sqrt(float64(p)),
		Precision: precision,
		Recent:    buffer.NewCircularInt(AcceptWindow),
	}
}

// PoissonLogLikelihood is the log likelihood of the observed group counts
// when group j has expected count exp(x_j . beta).
func PoissonLogLikelihood(x mat.Matrix, counts, beta []float64) float64 {
	rows, _ := x.Dims()
	eta := mat.NewVecDense(rows, nil)
	eta.MulVec(x, mat.NewVecDense(len(beta), beta))

	var ll float64
	for j, n := range counts {
		ll += distuv.Poisson{Lambda: math.Exp(eta.AtVec(j))}.LogProb(n)
	}
	return ll
}

// LogPosterior adds the Gaussian log prior (up to a constant) to the log
// likelihood.
func (m *Metropolis) LogPosterior(x mat.Matrix, counts, beta []float64) float64 {
	return PoissonLogLikelihood(x, counts, beta) - 0.5*m.Precision*floats.Dot(beta, beta)
}

// Step proposes new coefficients and accepts them with the Metropolis
// probability. beta is updated in place on acceptance.
func (m *Metropolis) Step(eng *rand.Engine, x mat.Matrix, counts, beta []float64) bool {
	prop := make([]float64, len(beta))
	for i := range prop {
		prop[i] = eng.Normal()*m.Scale + beta[i]
	}

	logRatio := m.LogPosterior(x, counts, prop) - m.LogPosterior(x, counts, beta)
	accept := eng.Uniform() <= math.Exp(logRatio)

	m.Proposals++
	if accept {
		copy(beta, prop)
		m.Accepts++
		m.Recent.Add(1)
	} else {
		m.Recent.Add(0)
	}

	return accept
}

// AcceptRate is the acceptance rate over the recent window
func (m *Metropolis) AcceptRate() float64 {
	return m.Recent.Mean()
}
