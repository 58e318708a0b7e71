package sampler

import (
	"math"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// BreakPosterior returns the Beta parameters of the first len(counts)-1
// break points given per-index counts: shape_i = 1 + n_i and
// rate_i = concentration + the counts of every later index.
func BreakPosterior(counts []int, concentration float64) (shape, rate []float64) {
	n := len(counts) - 1
	shape = make([]float64, n)
	rate = make([]float64, n)

	tail := 0
	for _, c := range counts[1:] {
		tail += c
	}

	for i := 0; i < n; i++ {
		shape[i] = 1 + float64(counts[i])
		rate[i] = concentration + float64(tail)
		tail -= counts[i+1]
	}
	return shape, rate
}

// UpdateClusterWeights redraws the cluster breaks and weights from the
// current cluster counts.
func UpdateClusterWeights(eng *rand.Engine, st *State) {
	shape, rate := BreakPosterior(st.ClusterCount, st.Alpha)
	st.V, st.LogV = StickBreakPosterior(eng, shape, rate)
	st.Pi = StickWeights(st.V, st.LogV)
}

// UpdateComponentWeights redraws the component breaks and weights of every
// cluster column from the current component counts.
func UpdateComponentWeights(eng *rand.Engine, st *State) {
	L := st.L
	for k := 0; k < st.K; k++ {
		shape, rate := BreakPosterior(st.ComponentCount[k*L:(k+1)*L], st.Rho)
		breaks, logRemain := StickBreakPosterior(eng, shape, rate)
		copy(st.U[k*(L-1):(k+1)*(L-1)], breaks)
		copy(st.LogU[k*(L-1):(k+1)*(L-1)], logRemain)
		copy(st.W[k*L:(k+1)*L], StickWeights(breaks, logRemain))
	}
}

// DrawKernel draws a (mean, variance) pair from the Normal / scaled inverse
// chi-squared posterior given n observations with the given sum and sum of
// squares. With n == 0 this is a draw from the prior.
func DrawKernel(eng *rand.Engine, p model.Prior, n int, sum, sumSq float64) (mu, tau float64) {
	if n == 0 {
		tau = eng.ScaledInvChiSquared(p.Nu0, p.Sigma0)
		mu = eng.Normal()*math.Sqrt(tau/p.Kappa0) + p.Mu0
		return mu, tau
	}

	m := float64(n)
	ybar := sum / m
	sn := p.Nu0*p.Sigma0 + (sumSq - sum*sum/m) + (p.Kappa0*m/(p.Kappa0+m))*(ybar-p.Mu0)*(ybar-p.Mu0)
	tau = sn / eng.ChiSquared(p.Nu0+m)

	muN := (p.Kappa0*p.Mu0 + sum) / (p.Kappa0 + m)
	mu = eng.Normal()*math.Sqrt(tau/(p.Kappa0+m)) + muN
	return mu, tau
}

// UpdateKernels redraws every kernel mean and variance in cell order
func UpdateKernels(eng *rand.Engine, p model.Prior, st *State, sum, sumSq []float64) {
	for l := 0; l < st.L; l++ {
		for k := 0; k < st.K; k++ {
			c := cell(l, k, st.L)
			st.Mu[c], st.Tau[c] = DrawKernel(eng, p, st.ComponentCount[c], sum[c], sumSq[c])
		}
	}
}
