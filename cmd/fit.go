package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/sampler"
)

type fitOptions struct {
	dataFile    string
	outFile     string
	chains      int
	perChain    bool
	monitor     bool
	monitorAddr string
	quiet       bool

	// Zero (or negative for warmUp) keeps the settings file value
	clusters   int
	components int
	iterations int
	warmUp     int
	thin       int
}

var fitOpts = fitOptions{}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the nested Dirichlet process model to a data file",
	Long: `fit reads an NHPP data file, runs one or more chains and writes the
merged posterior samples as JSON.

Chain i (counting from 0) is seeded with seed + i.`,
	Args: cobra.NoArgs,
	RunE: withParams(func(sp *startupParams, args []string) error {
		return runFit(sp, &fitOpts)
	}),
}

func init() {
	f := fitCmd.Flags()
	f.StringVarP(&fitOpts.dataFile, "data", "d", "", "NHPP data file to read")
	f.StringVarP(&fitOpts.outFile, "out", "o", "rndpp.json", "JSON file for the merged samples")
	f.IntVarP(&fitOpts.chains, "chains", "n", 1, "Number of chains to run concurrently")
	f.BoolVar(&fitOpts.perChain, "per-chain", false, "Also write every chain's samples to its own file")
	f.BoolVar(&fitOpts.monitor, "monitor", false, "Publish progress over HTTP with expvar")
	f.StringVar(&fitOpts.monitorAddr, "monitor-addr", ":8000", "Listen address for --monitor")
	f.BoolVarP(&fitOpts.quiet, "quiet", "q", false, "No progress bar")

	f.IntVarP(&fitOpts.clusters, "clusters", "K", 0, "Cluster truncation level")
	f.IntVarP(&fitOpts.components, "components", "L", 0, "Component truncation level")
	f.IntVarP(&fitOpts.iterations, "iterations", "i", 0, "Total iterations per chain")
	f.IntVarP(&fitOpts.warmUp, "warm-up", "w", -1, "Warm up iterations per chain")
	f.IntVar(&fitOpts.thin, "thin", 0, "Thinning interval")

	fitCmd.MarkFlagRequired("data")
}

// apply copies any flag given on the command line over cfg
func (fo *fitOptions) apply(cfg *model.Config) {
	if fo.clusters > 0 {
		cfg.K = fo.clusters
	}
	if fo.components > 0 {
		cfg.L = fo.components
	}
	if fo.iterations > 0 {
		cfg.Iterations = fo.iterations
	}
	if fo.warmUp >= 0 {
		cfg.WarmUp = fo.warmUp
	}
	if fo.thin > 0 {
		cfg.Thin = fo.thin
	}
}

// chainFilename is the per-chain output file next to the merged one
func chainFilename(outFile string, chain int) string {
	base := strings.TrimSuffix(outFile, filepath.Ext(outFile))
	return fmt.Sprintf("%s.chain%d.json", base, chain)
}

func runFit(sp *startupParams, fo *fitOptions) error {
	if fo.chains < 1 {
		return errors.Errorf("Invalid chain count %d", fo.chains)
	}

	// Read data from file
	sp.out.Printf("Reading data from %s\n", fo.dataFile)
	d, err := model.NewDataFromFile(model.NHPPReader{}, fo.dataFile)
	if err != nil {
		return err
	}
	sp.out.Printf(
		"Data has %d groups, %d distances, %d covariates, %d grid points\n",
		d.J(), d.N(), d.P(), len(d.Grid),
	)

	settings, err := sp.settings()
	if err != nil {
		return err
	}
	fo.apply(&settings.Config)
	if err = settings.Check(); err != nil {
		return err
	}

	cfg := settings.Config
	sp.out.Printf(
		"L=%d K=%d Iterations=%d WarmUp=%d Thin=%d Seed=%d Chains=%d (%d samples each)\n",
		cfg.L, cfg.K, cfg.Iterations, cfg.WarmUp, cfg.Thin, cfg.Seed, fo.chains, cfg.RetainedCount(),
	)
	sp.trace.Printf("Prior: %+v\n", settings.Prior)
	sp.trace.Printf("Config: %+v\n", cfg)

	var mon *monitor
	if fo.monitor {
		mon = &monitor{}
		if err = mon.Start(fo.monitorAddr, fo.chains, cfg); err != nil {
			return err
		}
		defer mon.Stop()
	}

	var bar *pb.ProgressBar
	if !fo.quiet {
		bar = pb.StartNew(fo.chains * cfg.Iterations)
	}

	chains := make([]*sampler.Chain, fo.chains)
	samplers := make([]sampler.Sampler, fo.chains)
	for i := range chains {
		chCfg := cfg
		chCfg.Chain = i + 1
		chCfg.Seed = cfg.Seed + int64(i)

		ch, err := sampler.NewChain(d, settings.Prior, chCfg)
		if err != nil {
			return err
		}

		ch.Log = sp.trace
		if sp.verbose {
			ch.Log = sp.out
		}
		ch.Progress = func(c *sampler.Chain) {
			if bar != nil {
				bar.Increment()
			}
			if mon != nil {
				mon.Update(c)
			}
		}

		sp.trace.Printf("Chain %d: seed %d, alpha prior draw %.4f, rho prior draw %.4f\n",
			chCfg.Chain, chCfg.Seed, ch.Samples.AlphaPrior, ch.Samples.RhoPrior)

		chains[i] = ch
		samplers[i] = ch
	}

	startTime := time.Now()
	runs, err := sampler.RunChains(samplers)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	sp.out.Printf("Sampling finished in %.3fs\n", time.Since(startTime).Seconds())

	for i, ch := range chains {
		sp.out.Printf(
			"Chain %d: %d samples, accept rate %.3f (%d of %d proposals)\n",
			ch.Config.Chain, runs[i].Count, ch.Coef.AcceptRate(), ch.Coef.Accepts, ch.Coef.Proposals,
		)
		if !fo.perChain {
			continue
		}
		fn := chainFilename(fo.outFile, ch.Config.Chain)
		if err = runs[i].WriteFile(fn); err != nil {
			return err
		}
		sp.out.Printf("Chain %d written to %s\n", ch.Config.Chain, fn)
	}

	merged, err := sampler.MergeChains(runs)
	if err != nil {
		return errors.Wrap(err, "Could not merge chains")
	}
	if err = merged.Check(); err != nil {
		return errors.Wrap(err, "Merged samples are invalid")
	}

	if err = merged.WriteFile(fo.outFile); err != nil {
		return err
	}
	sp.out.Printf("%d samples written to %s\n", merged.Count, fo.outFile)

	return nil
}
