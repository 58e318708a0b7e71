package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// ConcentrationPosterior returns the Gamma (shape, rate) posterior of a
// concentration parameter with prior Gamma(shape, rate) given log(1 - b)
// for every break point b it governs.
func ConcentrationPosterior(shape, rate float64, logRemain []float64) (float64, float64) {
	return shape + float64(len(logRemain)), rate - floats.Sum(logRemain)
}

// ResampleConcentration redraws alpha from the cluster breaks and rho from
// the component breaks. Note the initial draws in NewChain pair them the
// other way round.
func ResampleConcentration(eng *rand.Engine, p model.Prior, st *State) error {
	aShape, aRate := ConcentrationPosterior(p.AlphaShape, p.AlphaRate, st.LogV)
	if math.IsInf(aRate, 0) || math.IsNaN(aRate) {
		return errors.Errorf("Posterior rate for alpha is %v", aRate)
	}

	rShape, rRate := ConcentrationPosterior(p.RhoShape, p.RhoRate, st.LogU)
	if math.IsInf(rRate, 0) || math.IsNaN(rRate) {
		return errors.Errorf("Posterior rate for rho is %v", rRate)
	}

	st.Alpha = eng.Gamma(aShape, aRate)
	st.Rho = eng.Gamma(rShape, rRate)
	return nil
}
