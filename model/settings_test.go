package model

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	assert := assert.New(t)

	s := DefaultSettings()
	assert.NoError(s.Check())
	assert.Equal(1000, s.Config.RetainedCount())

	s, err := LoadSettings("")
	assert.NoError(err)
	assert.Equal(DefaultSettings(), s)
}

func TestLoadSettings(t *testing.T) {
	assert := assert.New(t)

	fn := filepath.Join(t.TempDir(), "settings.yaml")
	text := `
prior:
  mu_0: 2.5
  kappa_0: 0.5
  rate_rho: 3
config:
  L: 4
  K: 7
  iter_max: 500
  warm_up: 100
  thin: 4
  seed: 99
`
	require.NoError(t, ioutil.WriteFile(fn, []byte(text), 0644))

	s, err := LoadSettings(fn)
	require.NoError(t, err)
	assert.NoError(s.Check())

	assert.Equal(2.5, s.Prior.Mu0)
	assert.Equal(0.5, s.Prior.Kappa0)
	assert.Equal(3.0, s.Prior.RhoRate)
	assert.Equal(DefaultPrior().Nu0, s.Prior.Nu0)
	assert.Equal(4, s.Config.L)
	assert.Equal(7, s.Config.K)
	assert.Equal(int64(99), s.Config.Seed)
	assert.Equal(100, s.Config.RetainedCount())

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, ioutil.WriteFile(bad, []byte("config: [1, 2"), 0644))
	_, err = LoadSettings(bad)
	assert.Error(err)
}

// Concentration priors are given as rates. Scale keys are refused rather
// than silently giving the reciprocal prior.
func TestLoadSettingsRateKeys(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	fn := filepath.Join(dir, "rates.yaml")
	require.NoError(t, ioutil.WriteFile(fn, []byte("prior:\n  a_alpha: 2\n  rate_alpha: 0.5\n"), 0644))
	s, err := LoadSettings(fn)
	require.NoError(t, err)
	assert.Equal(2.0, s.Prior.AlphaShape)
	assert.Equal(0.5, s.Prior.AlphaRate)
	assert.Equal(DefaultPrior().RhoRate, s.Prior.RhoRate)

	for _, key := range []string{"b_alpha", "b_rho"} {
		fn = filepath.Join(dir, key+".yaml")
		require.NoError(t, ioutil.WriteFile(fn, []byte("prior:\n  "+key+": 2\n"), 0644))
		_, err = LoadSettings(fn)
		assert.Error(err, key)
	}

	// An empty file is all defaults
	fn = filepath.Join(dir, "empty.yaml")
	require.NoError(t, ioutil.WriteFile(fn, nil, 0644))
	s, err = LoadSettings(fn)
	require.NoError(t, err)
	assert.Equal(DefaultSettings(), s)
}

func TestSettingsBadCheck(t *testing.T) {
	assert := assert.New(t)

	breakers := []func(s *Settings){
		func(s *Settings) { s.Prior.Kappa0 = 0 },
		func(s *Settings) { s.Prior.Nu0 = -1 },
		func(s *Settings) { s.Prior.AlphaRate = 0 },
		func(s *Settings) { s.Prior.BetaPrecision = 0 },
		func(s *Settings) { s.Config.L = 0 },
		func(s *Settings) { s.Config.Iterations = 0 },
		func(s *Settings) { s.Config.WarmUp = s.Config.Iterations },
		func(s *Settings) { s.Config.Thin = 0 },
		func(s *Settings) { s.Config.NumSamples = 7 },
	}

	for i, brk := range breakers {
		s := DefaultSettings()
		brk(s)
		assert.Error(s.Check(), "breaker %d", i)
	}

	s := DefaultSettings()
	s.Config.NumSamples = s.Config.RetainedCount()
	assert.NoError(s.Check())
}

// Retain must accept exactly RetainedCount iterations
func TestRetain(t *testing.T) {
	assert := assert.New(t)

	for iters := 1; iters <= 30; iters++ {
		for warm := 0; warm < iters; warm++ {
			for thin := 1; thin <= 7; thin++ {
				c := Config{L: 1, K: 1, Iterations: iters, WarmUp: warm, Thin: thin}
				n := 0
				for it := 1; it <= iters; it++ {
					if c.Retain(it) {
						assert.True(it > warm)
						n++
					}
				}
				assert.Equal(c.RetainedCount(), n, "%+v", c)
				assert.Equal((iters-warm)/thin, n)
			}
		}
	}
}
