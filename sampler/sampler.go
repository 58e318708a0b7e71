package sampler

import (
	"github.com/apeterson91/rndpp/model"
)

// A Sampler advances one Markov chain and collects its retained draws
type Sampler interface {
	Step() error
	Run() (*model.Samples, error)
}
