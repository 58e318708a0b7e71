package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/apeterson91/rndpp/model"
)

var cfgFile string
var verbose bool
var randomSeed int64
var traceFile string

// startupParams is what every command needs after flag parsing
type startupParams struct {
	cfgFile    string
	verbose    bool
	randomSeed int64
	seedSet    bool // --seed given on the command line
	traceFile  string

	out   *log.Logger
	trace *log.Logger

	traceCloser io.Closer
}

func newStartupParams(cmd *cobra.Command) (*startupParams, error) {
	sp := &startupParams{
		cfgFile:    cfgFile,
		verbose:    verbose,
		randomSeed: randomSeed,
		seedSet:    cmd.Flags().Changed("seed"),
		traceFile:  traceFile,
		out:        log.New(os.Stdout, "", log.Ltime),
	}

	if len(sp.traceFile) < 1 {
		sp.trace = log.New(ioutil.Discard, "", 0)
		return sp, nil
	}

	f, err := os.Create(sp.traceFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not create trace file %s", sp.traceFile)
	}
	sp.trace = log.New(f, "", log.LstdFlags)
	sp.traceCloser = f

	return sp, nil
}

// settings loads the settings file and applies the seed flag
func (sp *startupParams) settings() (*model.Settings, error) {
	s, err := model.LoadSettings(sp.cfgFile)
	if err != nil {
		return nil, err
	}
	if sp.seedSet {
		s.Config.Seed = sp.randomSeed
	}
	return s, nil
}

func (sp *startupParams) Close() error {
	if sp.traceCloser == nil {
		return nil
	}
	return sp.traceCloser.Close()
}

// withParams adapts one of our run functions to a cobra RunE
func withParams(run func(sp *startupParams, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()
		return run(sp, args)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rndpp",
	Short: "Nested Dirichlet process estimates of NHPP intensities",
	Long: `rndpp estimates the intensity functions of a collection of
non-homogeneous Poisson processes (distances from a set of groups) with a
nested Dirichlet process mixture fit by Gibbs sampling. Amoung other features:

  - Groups are clustered by the shape of their intensity function
  - Group counts are modelled with a log-linear Poisson regression
  - Several chains may be run concurrently and merged

Called without a command it prints the effective settings.
`,
	SilenceUsage: true,
	RunE: withParams(func(sp *startupParams, args []string) error {
		s, err := sp.settings()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "Could not encode settings")
		}
		fmt.Printf("rndpp\n")
		fmt.Printf("Verbose:  %v\n", sp.verbose)
		fmt.Printf("Config:   %s\n", sp.cfgFile)
		fmt.Printf("Trace:    %s\n", sp.traceFile)
		fmt.Printf("%s", out)
		return nil
	}),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML settings file (default is built-in settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use (overrides the settings file)")
	rootCmd.PersistentFlags().StringVarP(&traceFile, "trace", "t", "", "Trace file for detailed chain output")

	rootCmd.AddCommand(fitCmd, simulateCmd, summaryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
