package model

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Prior holds the fixed hyperparameters of the model
type Prior struct {
	Mu0    float64 `yaml:"mu_0" json:"mu_0"`       // Prior mean of kernel means
	Kappa0 float64 `yaml:"kappa_0" json:"kappa_0"` // Pseudo-count of the prior mean
	Nu0    float64 `yaml:"nu_0" json:"nu_0"`       // Prior degrees of freedom of kernel variances
	Sigma0 float64 `yaml:"sigma_0" json:"sigma_0"` // Prior scale of kernel variances

	// Gamma(shape, rate) priors on the concentrations. rate_alpha and
	// rate_rho are rates (1/scale); b_alpha and b_rho scale keys are
	// rejected by LoadSettings rather than read as rates.
	AlphaShape float64 `yaml:"a_alpha" json:"a_alpha"`
	AlphaRate  float64 `yaml:"rate_alpha" json:"rate_alpha"`
	RhoShape   float64 `yaml:"a_rho" json:"a_rho"`
	RhoRate    float64 `yaml:"rate_rho" json:"rate_rho"`

	BetaPrecision float64 `yaml:"beta_precision" json:"beta_precision"` // Precision of the zero mean coefficient prior
}

// Config holds truncation levels and iteration controls for one chain
type Config struct {
	L          int   `yaml:"L" json:"L"`                     // Components per cluster
	K          int   `yaml:"K" json:"K"`                     // Clusters
	Iterations int   `yaml:"iter_max" json:"iter_max"`       // Total iterations
	WarmUp     int   `yaml:"warm_up" json:"warm_up"`         // Iterations discarded before retaining
	Thin       int   `yaml:"thin" json:"thin"`               // Retain every Thin-th post warm-up iteration
	Seed       int64 `yaml:"seed" json:"seed"`               // PRNG seed
	Chain      int   `yaml:"chain" json:"chain"`             // Chain label, used for reporting only
	NumSamples int   `yaml:"num_samples" json:"num_samples"` // Expected retained count, 0 to derive it
}

// Settings is the on-disk settings document
type Settings struct {
	Prior  Prior  `yaml:"prior"`
	Config Config `yaml:"config"`
}

// DefaultPrior returns weakly informative hyperparameters
func DefaultPrior() Prior {
	return Prior{
		Mu0:           0,
		Kappa0:        1,
		Nu0:           1,
		Sigma0:        1,
		AlphaShape:    1,
		AlphaRate:     1,
		RhoShape:      1,
		RhoRate:       1,
		BetaPrecision: 0.04,
	}
}

// DefaultConfig returns the iteration controls used when nothing is given
func DefaultConfig() Config {
	return Config{
		L:          5,
		K:          5,
		Iterations: 2000,
		WarmUp:     1000,
		Thin:       1,
		Seed:       1,
		Chain:      1,
	}
}

// DefaultSettings combines DefaultPrior and DefaultConfig
func DefaultSettings() *Settings {
	return &Settings{
		Prior:  DefaultPrior(),
		Config: DefaultConfig(),
	}
}

// LoadSettings reads a YAML settings file. Values missing from the file keep
// their defaults and unknown keys are an error.
func LoadSettings(filename string) (*Settings, error) {
	s := DefaultSettings()
	if len(filename) < 1 {
		return s, nil
	}

	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ settings from %s", filename)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Could not PARSE settings from %s", filename)
	}

	return s, nil
}

// Check returns an error if any problem is found
func (s *Settings) Check() error {
	if err := s.Prior.Check(); err != nil {
		return errors.Wrap(err, "Invalid prior")
	}
	if err := s.Config.Check(); err != nil {
		return errors.Wrap(err, "Invalid config")
	}
	return nil
}

// Check returns an error if a hyperparameter is outside its valid range
func (p Prior) Check() error {
	positive := []struct {
		name string
		val  float64
	}{
		{"kappa_0", p.Kappa0},
		{"nu_0", p.Nu0},
		{"sigma_0", p.Sigma0},
		{"a_alpha", p.AlphaShape},
		{"rate_alpha", p.AlphaRate},
		{"a_rho", p.RhoShape},
		{"rate_rho", p.RhoRate},
		{"beta_precision", p.BetaPrecision},
	}

	for _, c := range positive {
		if !(c.val > 0) {
			return errors.Errorf("%s must be positive, got %v", c.name, c.val)
		}
	}

	return nil
}

// Check returns an error if the controls can not drive a chain
func (c Config) Check() error {
	if c.L < 1 || c.K < 1 {
		return errors.Errorf("Truncation levels must be positive: L=%d, K=%d", c.L, c.K)
	}
	if c.Iterations < 1 {
		return errors.Errorf("Invalid iteration count %d", c.Iterations)
	}
	if c.WarmUp < 0 || c.WarmUp >= c.Iterations {
		return errors.Errorf("Warm up %d must be in [0, %d)", c.WarmUp, c.Iterations)
	}
	if c.Thin < 1 {
		return errors.Errorf("Invalid thinning interval %d", c.Thin)
	}
	if c.NumSamples != 0 && c.NumSamples != c.RetainedCount() {
		return errors.Errorf("Expected %d samples but controls retain %d", c.NumSamples, c.RetainedCount())
	}
	return nil
}

// Retain reports whether the (one-based) iteration iter is stored: it must
// be past warm up and land on a multiple of Thin counted from the end of warm
// up.
func (c Config) Retain(iter int) bool {
	t := iter - c.WarmUp
	return t > 0 && t%c.Thin == 0
}

// RetainedCount is the number of iterations Retain accepts
func (c Config) RetainedCount() int {
	if c.Thin < 1 || c.Iterations <= c.WarmUp {
		return 0
	}
	return (c.Iterations - c.WarmUp) / c.Thin
}
