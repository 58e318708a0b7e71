package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/apeterson91/rndpp/model"
)

// kernel returns the Gaussian kernel of cell c
func (st *State) kernel(c int) distuv.Normal {
	return distuv.Normal{Mu: st.Mu[c], Sigma: math.Sqrt(st.Tau[c])}
}

// MixtureDensity is the within-cluster density of cluster k at x
func MixtureDensity(x float64, k int, st *State) float64 {
	var dens float64
	for l := 0; l < st.L; l++ {
		c := cell(l, k, st.L)
		dens += st.W[c] * st.kernel(c).Prob(x)
	}
	return dens
}

// ClusterLogProbs returns a J×K matrix of unnormalized log probabilities:
// log(pi_k) plus the log likelihood of every distance in group j under the
// component mixture of cluster k.
func ClusterLogProbs(d *model.Data, st *State) [][]float64 {
	kernels := make([]distuv.Normal, st.L*st.K)
	logW := make([]float64, st.L*st.K)
	for c := range kernels {
		kernels[c] = st.kernel(c)
		logW[c] = math.Log(st.W[c])
	}

	terms := make([]float64, st.L)
	q := make([][]float64, d.J())
	for j := range q {
		q[j] = make([]float64, st.K)
		group := d.Group(j)
		for k := 0; k < st.K; k++ {
			lp := math.Log(st.Pi[k])
			for _, r := range group {
				for l := 0; l < st.L; l++ {
					c := cell(l, k, st.L)
					terms[l] = logW[c] + kernels[c].LogProb(r)
				}
				lp += floats.LogSumExp(terms)
			}
			q[j][k] = lp
		}
	}

	return q
}

// ComponentLogProbs returns an N×L matrix: for each observation, the log of
// weight times kernel density of every component in its group's current
// cluster.
func ComponentLogProbs(d *model.Data, st *State) [][]float64 {
	b := make([][]float64, d.N())
	for j, g := range d.Groups {
		k := st.ClusterLabel[j]
		for i := g.Start; i < g.Start+g.Len; i++ {
			b[i] = make([]float64, st.L)
			for l := 0; l < st.L; l++ {
				c := cell(l, k, st.L)
				b[i][l] = math.Log(st.W[c]) + st.kernel(c).LogProb(d.Distances[i])
			}
		}
	}
	return b
}
