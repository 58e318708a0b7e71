package cmd

import (
	"expvar"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/sampler"
)

// expvar names are process wide and may only be published once, so every
// monitor shares the same set and resets it on Start.
type monitorVars struct {
	info         *expvar.Map
	chains       *expvar.Int
	warmUp       *expvar.Int
	thin         *expvar.Int
	maxIters     *expvar.Int
	runTime      *expvar.Float
	totalSamples *expvar.Int
	iterations   *expvar.Int
}

var (
	publishOnce sync.Once
	published   monitorVars
)

func publishVars() *monitorVars {
	publishOnce.Do(func() {
		published = monitorVars{
			info:         expvar.NewMap("rndpp-accept-rate"),
			chains:       expvar.NewInt("Chain-Count"),
			warmUp:       expvar.NewInt("Warm-Up"),
			thin:         expvar.NewInt("Thin"),
			maxIters:     expvar.NewInt("Max-Iterations"),
			runTime:      expvar.NewFloat("Run-Time"),
			totalSamples: expvar.NewInt("Total-Samples"),
			iterations:   expvar.NewInt("Iterations"),
		}
	})
	return &published
}

type monitor struct {
	*monitorVars

	stopped chan struct{}
	server  *http.Server
	addr    net.Addr
	start   time.Time

	acceptRates []*expvar.Float
}

// Start begins the monitor
func (m *monitor) Start(addr string, chains int, cfg model.Config) error {
	if m.monitorVars != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Could not listen on %s for the monitor", addr)
	}
	m.addr = ln.Addr()

	m.monitorVars = publishVars()
	m.stopped = make(chan struct{})
	m.start = time.Now()

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})
	m.server = &http.Server{
		Addr:    m.addr.String(),
		Handler: mux,
	}

	m.chains.Set(int64(chains))
	m.warmUp.Set(int64(cfg.WarmUp))
	m.thin.Set(int64(cfg.Thin))
	m.maxIters.Set(int64(cfg.Iterations))
	m.runTime.Set(0)
	m.totalSamples.Set(0)
	m.iterations.Set(0)

	m.info.Init()
	m.acceptRates = make([]*expvar.Float, chains)
	for i := range m.acceptRates {
		m.acceptRates[i] = new(expvar.Float)
		m.info.Set(strconv.Itoa(i+1), m.acceptRates[i])
	}

	// Actual server that will close the stopped channel on exit
	go func() {
		defer close(m.stopped)
		m.server.Serve(ln)
	}()

	fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.addr)
	return nil
}

// Update records one finished iteration of c. Safe to call from every chain
// at once.
func (m *monitor) Update(c *sampler.Chain) {
	if m.monitorVars == nil {
		return
	}

	m.iterations.Add(1)
	if c.Config.Retain(c.Iter) {
		m.totalSamples.Add(1)
	}
	if i := c.Config.Chain - 1; i >= 0 && i < len(m.acceptRates) {
		m.acceptRates[i].Set(c.Coef.AcceptRate())
	}
	m.runTime.Set(time.Since(m.start).Seconds())
}

func (m *monitor) Stop() {
	if m.server == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
