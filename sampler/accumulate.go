package sampler

import (
	"github.com/pkg/errors"

	"github.com/apeterson91/rndpp/model"
)

// Accumulate records the current state into the next row of s: co-clustering
// counts, grid intensities, and copies of every traced quantity.
func Accumulate(d *model.Data, st *State, s *model.Samples) error {
	ix, err := s.Next()
	if err != nil {
		return errors.Wrap(err, "Could not record sample")
	}

	for j := range st.ClusterLabel {
		for jj := 0; jj < j; jj++ {
			if st.ClusterLabel[j] == st.ClusterLabel[jj] {
				s.CoCluster[j][jj]++
			}
		}
	}

	G := len(d.Grid)
	intensity := s.Intensities[ix]
	global := s.GlobalIntensity[ix]
	for k := 0; k < st.K; k++ {
		for g, x := range d.Grid {
			dens := MixtureDensity(x, k, st)
			intensity[k*G+g] = dens
			global[g] += st.Pi[k] * dens
		}
	}

	copy(s.ClusterAssignment[ix], st.ClusterLabel)
	copy(s.ComponentAssignment[ix], st.ComponentLabel)
	copy(s.Pi[ix], st.Pi)
	copy(s.W[ix], st.W)
	copy(s.Mu[ix], st.Mu)
	copy(s.Tau[ix], st.Tau)
	copy(s.Beta[ix], st.Beta)
	s.Alpha[ix] = st.Alpha
	s.Rho[ix] = st.Rho

	return nil
}
