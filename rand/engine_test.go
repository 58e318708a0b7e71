package rand

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	eng, err := NewEngine(42)
	require.NoError(t, err)
	return eng
}

// Sample means should land near the analytic ones
func TestEngineMoments(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	const n = 20000
	mean := func(draw func() float64) float64 {
		var s float64
		for i := 0; i < n; i++ {
			s += draw()
		}
		return s / n
	}

	assert.InDelta(0.0, mean(eng.Normal), 0.05)
	assert.InDelta(0.5, mean(eng.Uniform), 0.02)
	assert.InDelta(2.0/0.5, mean(func() float64 { return eng.Gamma(2, 0.5) }), 0.2)
	assert.InDelta(5.0, mean(func() float64 { return eng.ChiSquared(5) }), 0.15)
	assert.InDelta(2.0/7.0, mean(func() float64 { return eng.Beta(2, 5) }), 0.02)

	// E[nu*s/chi2(nu)] = nu*s/(nu-2)
	assert.InDelta(10.0*2.0/8.0, mean(func() float64 { return eng.ScaledInvChiSquared(10, 2) }), 0.1)
}

func TestLogGammaSmallShape(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	// E[log G(a)] is digamma(a); digamma(0.5) = -gamma - 2 log 2
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		lg := eng.LogGamma(0.5)
		assert.False(math.IsInf(lg, 0) || math.IsNaN(lg))
		sum += lg
	}
	assert.InDelta(-0.5772156649-2*math.Ln2, sum/n, 0.05)

	for i := 0; i < 1000; i++ {
		lg := eng.LogGamma(0.001)
		assert.False(math.IsInf(lg, 0) || math.IsNaN(lg))
	}
}

// A tiny second parameter puts X at 1 in floating point, but log(1 - X)
// is still finite and consistent with log X.
func TestLogBetaNearOne(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	ones := 0
	for i := 0; i < 2000; i++ {
		logX, log1mX := eng.LogBeta(1, 0.01)
		assert.False(math.IsInf(log1mX, 0) || math.IsNaN(log1mX))
		assert.True(log1mX <= 0 && logX <= 0)
		assert.InDelta(1.0, math.Exp(logX)+math.Exp(log1mX), 1e-12)
		if math.Exp(logX) == 1 {
			ones++
		}
	}
	assert.True(ones > 0, "expected some draws to round to one")
}

func TestCategorical(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	counts := make([]int, 3)
	for i := 0; i < 6000; i++ {
		c, err := eng.Categorical([]float64{1, 0, 2})
		assert.NoError(err)
		counts[c]++
	}
	assert.Equal(0, counts[1])
	assert.InEpsilon(2.0, float64(counts[2])/float64(counts[0]), 0.15)

	c, err := eng.Categorical([]float64{3.5})
	assert.NoError(err)
	assert.Equal(0, c)
}

func TestCategoricalDegenerate(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	cases := [][]float64{
		{},
		{0, 0, 0},
		{1, -1},
		{1, math.NaN()},
		{math.Inf(1), 1},
	}
	for _, w := range cases {
		_, err := eng.Categorical(w)
		assert.Error(err, "weights %v", w)
		assert.Equal(ErrDegenerate, errors.Cause(err))
	}

	_, err := eng.CategoricalLog([]float64{math.Inf(-1), math.Inf(-1)})
	assert.Equal(ErrDegenerate, errors.Cause(err))
}

func TestCategoricalLog(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	// exp(-1000) underflows but the rescaled weights are still usable
	counts := make([]int, 2)
	for i := 0; i < 4000; i++ {
		c, err := eng.CategoricalLog([]float64{-1000, -1000 + math.Log(3)})
		assert.NoError(err)
		counts[c]++
	}
	assert.InEpsilon(3.0, float64(counts[1])/float64(counts[0]), 0.15)

	c, err := eng.CategoricalLog([]float64{math.Inf(-1), -5})
	assert.NoError(err)
	assert.Equal(1, c)
}
