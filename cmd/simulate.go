package cmd

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/apeterson91/rndpp/model"
	"github.com/apeterson91/rndpp/rand"
	"github.com/apeterson91/rndpp/sampler"
)

type simulateOptions struct {
	outFile    string
	groups     int
	covariates int
	meanCount  float64
	slope      float64
}

var simOpts = simulateOptions{}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a synthetic NHPP data file",
	Long: `simulate draws groups from two known clusters (one unimodal, one
bimodal intensity) and writes them in the format fit reads. Group counts
are Poisson with a log-linear rate: an intercept of log(mean-count) and
every other covariate with the same slope.`,
	Args: cobra.NoArgs,
	RunE: withParams(func(sp *startupParams, args []string) error {
		return runSimulate(sp, &simOpts)
	}),
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simOpts.outFile, "out", "o", "", "NHPP data file to write")
	f.IntVarP(&simOpts.groups, "groups", "j", 50, "Number of groups")
	f.IntVarP(&simOpts.covariates, "covariates", "p", 1, "Covariates including the intercept")
	f.Float64Var(&simOpts.meanCount, "mean-count", 20, "Expected distances per group at zero covariates")
	f.Float64Var(&simOpts.slope, "slope", 0.25, "Coefficient of every non-intercept covariate")

	simulateCmd.MarkFlagRequired("out")
}

func runSimulate(sp *startupParams, so *simulateOptions) error {
	if so.covariates < 1 {
		return errors.Errorf("Invalid covariate count %d", so.covariates)
	}
	if !(so.meanCount > 0) {
		return errors.Errorf("Invalid mean count %v", so.meanCount)
	}

	s, err := sp.settings()
	if err != nil {
		return err
	}

	sim := sampler.DefaultSimulation()
	sim.Groups = so.groups
	sim.Beta = make([]float64, so.covariates)
	sim.Beta[0] = math.Log(so.meanCount)
	for p := 1; p < so.covariates; p++ {
		sim.Beta[p] = so.slope
	}

	eng, err := rand.NewEngine(s.Config.Seed)
	if err != nil {
		return err
	}

	d, truth, err := sampler.Simulate(eng, sim)
	if err != nil {
		return err
	}

	if err = model.WriteDataFile(so.outFile, d); err != nil {
		return err
	}
	sp.out.Printf("Wrote %d groups with %d distances to %s\n", d.J(), d.N(), so.outFile)

	sizes := make([]int, len(sim.Clusters))
	for j, k := range truth {
		sizes[k]++
		sp.trace.Printf("Group %d: cluster %d, %d distances\n", j, k, d.Groups[j].Len)
	}
	sp.out.Printf("True cluster sizes: %v\n", sizes)

	return nil
}
