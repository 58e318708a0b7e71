package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcentrationPosterior(t *testing.T) {
	assert := assert.New(t)

	shape, rate := ConcentrationPosterior(2, 3, []float64{math.Log(0.5), math.Log(0.25)})
	assert.InDelta(4.0, shape, 1e-12)
	assert.InDelta(3-math.Log(0.5)-math.Log(0.25), rate, 1e-12)

	shape, rate = ConcentrationPosterior(2, 3, nil)
	assert.Equal(2.0, shape)
	assert.Equal(3.0, rate)
}

func TestResampleConcentration(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t, 13)
	p := testPrior()

	const L, K = 3, 2
	d := testData([][]float64{{1}}, []float64{1})
	st := NewState(testConfig(L, K, 1, 0, 1), d)
	st.V = []float64{0.3}
	st.LogV = remainOf(st.V)
	st.U = []float64{0.1, 0.2, 0.3, 0.4}
	st.LogU = remainOf(st.U)

	assert.NoError(ResampleConcentration(eng, p, st))
	assert.True(st.Alpha > 0)
	assert.True(st.Rho > 0)

	// Mean of the rho posterior is shape/rate
	shape, rate := ConcentrationPosterior(p.RhoShape, p.RhoRate, st.LogU)
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		assert.NoError(ResampleConcentration(eng, p, st))
		sum += st.Rho
	}
	assert.InEpsilon(shape/rate, sum/n, 0.03)

	// A break that rounded to one keeps a finite remainder
	st.V = []float64{1}
	st.LogV = []float64{-750}
	assert.NoError(ResampleConcentration(eng, p, st))
	assert.True(st.Alpha > 0)

	// A remainder that is not a number is still fatal
	st.LogV = []float64{math.NaN()}
	assert.Error(ResampleConcentration(eng, p, st))
}
