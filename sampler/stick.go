package sampler

import (
	"math"

	"github.com/apeterson91/rndpp/rand"
)

// StickBreak draws the n-1 prior break points Beta(1, concentration) of a
// truncated stick-breaking process with n weights. logRemain[i] is
// log(1 - breaks[i]), taken from the underlying Gamma pair so it stays
// finite when a break rounds to 1.
func StickBreak(eng *rand.Engine, n int, concentration float64) (breaks, logRemain []float64) {
	shape := make([]float64, n-1)
	rate := make([]float64, n-1)
	for i := range shape {
		shape[i], rate[i] = 1, concentration
	}
	return StickBreakPosterior(eng, shape, rate)
}

// StickBreakPosterior draws break i from Beta(shape[i], rate[i])
func StickBreakPosterior(eng *rand.Engine, shape, rate []float64) (breaks, logRemain []float64) {
	breaks = make([]float64, len(shape))
	logRemain = make([]float64, len(shape))
	for i := range breaks {
		logB, log1mB := eng.LogBeta(shape[i], rate[i])
		breaks[i] = math.Exp(logB)
		logRemain[i] = log1mB
	}
	return breaks, logRemain
}

// StickWeights turns break points into len(breaks)+1 weights. The stick left
// after each break is tracked on the log scale from logRemain and the last
// weight takes whatever is left, so the result sums to one.
func StickWeights(breaks, logRemain []float64) []float64 {
	w := make([]float64, len(breaks)+1)
	var logLeft float64
	for i, b := range breaks {
		w[i] = b * math.Exp(logLeft)
		logLeft += logRemain[i]
	}
	w[len(breaks)] = math.Exp(logLeft)
	return w
}

// NestedStickBreak draws L-1 prior break points for each of K clusters
func NestedStickBreak(eng *rand.Engine, L, K int, concentration float64) (breaks, logRemain []float64) {
	breaks = make([]float64, 0, (L-1)*K)
	logRemain = make([]float64, 0, (L-1)*K)
	for k := 0; k < K; k++ {
		b, r := StickBreak(eng, L, concentration)
		breaks = append(breaks, b...)
		logRemain = append(logRemain, r...)
	}
	return breaks, logRemain
}

// NestedStickWeights applies StickWeights to every cluster column
func NestedStickWeights(breaks, logRemain []float64, L, K int) []float64 {
	w := make([]float64, L*K)
	for k := 0; k < K; k++ {
		lo, hi := k*(L-1), (k+1)*(L-1)
		copy(w[k*L:(k+1)*L], StickWeights(breaks[lo:hi], logRemain[lo:hi]))
	}
	return w
}
