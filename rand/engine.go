package rand

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerate is returned (wrapped) when a categorical distribution can not
// be formed from the supplied weights: all zero, negative or not finite.
var ErrDegenerate = errors.New("degenerate categorical weights")

// Engine produces the random variates a sampler needs. Every draw comes from
// the single Generator given at creation.
type Engine struct {
	Gen *Generator
}

// NewEngine returns an Engine over a new Generator seeded with seed
func NewEngine(seed int64) (*Engine, error) {
	gen, err := NewGenerator(seed)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not create generator with seed %d", seed)
	}
	return &Engine{Gen: gen}, nil
}

// Uniform returns a draw from U[0, 1)
func (e *Engine) Uniform() float64 {
	return e.Gen.Float64()
}

// Normal returns a standard normal draw
func (e *Engine) Normal() float64 {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: e.Gen}.Rand()
}

// Gamma draws from a gamma distribution with the given shape and rate
func (e *Engine) Gamma(shape, rate float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: e.Gen}.Rand()
}

// ChiSquared draws from a chi-squared distribution with k degrees of freedom
func (e *Engine) ChiSquared(k float64) float64 {
	return distuv.ChiSquared{K: k, Src: e.Gen}.Rand()
}

// Beta draws from Beta(a, b)
func (e *Engine) Beta(a, b float64) float64 {
	logX, _ := e.LogBeta(a, b)
	return math.Exp(logX)
}

// LogGamma returns the log of a Gamma(shape, 1) draw. Shapes below one use
// G(a) = G(a+1) * U^(1/a) on the log scale, so tiny shapes give very
// negative but finite values instead of an underflowed zero.
func (e *Engine) LogGamma(shape float64) float64 {
	if shape < 1 {
		// 1 - U is in (0, 1]
		return e.LogGamma(shape+1) + math.Log1p(-e.Uniform())/shape
	}
	return math.Log(distuv.Gamma{Alpha: shape, Beta: 1, Src: e.Gen}.Rand())
}

// LogBeta draws X ~ Beta(a, b) as Ga / (Ga + Gb) and returns log X and
// log(1 - X). Both stay finite when X rounds to 0 or 1.
func (e *Engine) LogBeta(a, b float64) (logX, log1mX float64) {
	ga, gb := e.LogGamma(a), e.LogGamma(b)
	total := floats.LogSumExp([]float64{ga, gb})
	return ga - total, gb - total
}

// ScaledInvChiSquared draws from Scale-Inv-chi^2(nu, scale), that is
// nu*scale / X with X ~ chi^2(nu).
func (e *Engine) ScaledInvChiSquared(nu, scale float64) float64 {
	return nu * scale / e.ChiSquared(nu)
}

// Categorical returns an index drawn with probability proportional to the
// given weights. The weights need not be normalized.
func (e *Engine) Categorical(weights []float64) (int, error) {
	if len(weights) < 1 {
		return -1, errors.Wrap(ErrDegenerate, "no categories")
	}

	var sum float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return -1, errors.Wrapf(ErrDegenerate, "weight %d is %v", i, w)
		}
		sum += w
	}
	if sum <= 0 || math.IsInf(sum, 0) {
		return -1, errors.Wrapf(ErrDegenerate, "weights sum to %v", sum)
	}

	if len(weights) == 1 {
		return 0, nil
	}

	return int(distuv.NewCategorical(weights, e.Gen).Rand()), nil
}

// CategoricalLog is Categorical for weights given on the log scale. The
// weights are rescaled by their maximum before exponentiation so very small
// likelihoods still form a proper distribution.
func (e *Engine) CategoricalLog(logWeights []float64) (int, error) {
	if len(logWeights) < 1 {
		return -1, errors.Wrap(ErrDegenerate, "no categories")
	}

	top := floats.Max(logWeights)
	if math.IsNaN(top) || math.IsInf(top, 0) {
		return -1, errors.Wrapf(ErrDegenerate, "max log weight is %v", top)
	}

	w := make([]float64, len(logWeights))
	for i, lw := range logWeights {
		if math.IsNaN(lw) {
			return -1, errors.Wrapf(ErrDegenerate, "log weight %d is NaN", i)
		}
		w[i] = math.Exp(lw - top)
	}

	return e.Categorical(w)
}
