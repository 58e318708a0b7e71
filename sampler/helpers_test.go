package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
)

// testData builds Data from per-group distances. Every group gets an
// intercept-only design row.
func testData(groups [][]float64, grid []float64) *model.Data {
	d := &model.Data{
		X:      mat.NewDense(len(groups), 1, nil),
		Groups: make([]model.Group, len(groups)),
		Grid:   grid,
	}
	for j, g := range groups {
		d.X.Set(j, 0, 1)
		d.Groups[j] = model.Group{Start: len(d.Distances), Len: len(g)}
		d.Distances = append(d.Distances, g...)
	}
	return d
}

// spread returns n evenly spaced values centred on mid
func spread(mid, width float64, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = mid - width/2 + width*float64(i)/float64(n-1)
	}
	return vals
}

func testEngine(t *testing.T, seed int64) *rand.Engine {
	eng, err := rand.NewEngine(seed)
	require.NoError(t, err)
	return eng
}

func testConfig(L, K, iters, warm, thin int) model.Config {
	return model.Config{
		L:          L,
		K:          K,
		Iterations: iters,
		WarmUp:     warm,
		Thin:       thin,
		Seed:       42,
		Chain:      1,
	}
}

func testPrior() model.Prior {
	return model.Prior{
		Mu0:           5,
		Kappa0:        0.1,
		Nu0:           2,
		Sigma0:        1,
		AlphaShape:    1,
		AlphaRate:     1,
		RhoShape:      1,
		RhoRate:       1,
		BetaPrecision: 0.04,
	}
}
