package cmd

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/apeterson91/rndpp/model"
)

type summaryOptions struct {
	pairs int
}

var sumOpts = summaryOptions{}

var summaryCmd = &cobra.Command{
	Use:   "summary FILE",
	Short: "Summarize a fit output file",
	Long: `summary prints posterior means and 95% intervals for the regression
coefficients, the concentration parameters and the cluster weights, the
sampled partition with the smallest Green loss against the co-clustering
probabilities, then the group pairs most often assigned to the same
cluster.`,
	Args: cobra.ExactArgs(1),
	RunE: withParams(func(sp *startupParams, args []string) error {
		return runSummary(sp, args[0], &sumOpts)
	}),
}

func init() {
	summaryCmd.Flags().IntVarP(&sumOpts.pairs, "pairs", "k", 10, "Number of co-clustered pairs to show")
}

// interval is a posterior mean with its 2.5% and 97.5% quantiles
type interval struct {
	Mean, Lo, Hi float64
}

func newInterval(vals []float64) interval {
	if len(vals) < 1 {
		return interval{}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	return interval{
		Mean: stat.Mean(sorted, nil),
		Lo:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
		Hi:   stat.Quantile(0.975, stat.Empirical, sorted, nil),
	}
}

func (i interval) String() string {
	return fmt.Sprintf("%10.4f [%10.4f, %10.4f]", i.Mean, i.Lo, i.Hi)
}

// column pulls a single coordinate out of every sample row
func column(rows [][]float64, c int) []float64 {
	col := make([]float64, len(rows))
	for i, r := range rows {
		col[i] = r[c]
	}
	return col
}

// distinct counts the different labels in a partition
func distinct(labels []int) int {
	seen := make(map[int]bool)
	for _, c := range labels {
		seen[c] = true
	}
	return len(seen)
}

type groupPair struct {
	J1, J2 int
	Prob   float64
}

// topPairs returns at most n pairs sorted by decreasing co-clustering
// probability. Ties keep the lower-triangle order.
func topPairs(coCluster [][]float64, n int) []groupPair {
	var pairs []groupPair
	for j, row := range coCluster {
		for jj := 0; jj < j; jj++ {
			pairs = append(pairs, groupPair{jj, j, row[jj]})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Prob > pairs[b].Prob
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

func runSummary(sp *startupParams, filename string, so *summaryOptions) error {
	s, err := model.NewSamplesFromFile(filename)
	if err != nil {
		return err
	}
	if err = s.Check(); err != nil {
		return errors.Wrapf(err, "Samples in %s are invalid", filename)
	}
	if s.Count < 1 {
		return errors.Errorf("No samples found in %s", filename)
	}

	rows := s.Count
	sp.out.Printf("%s: %d samples from chains %v (L=%d, K=%d, J=%d)\n", filename, rows, s.Chains, s.L, s.K, s.J)
	sp.out.Printf("%-10s %10s [%10s, %10s]\n", "", "mean", "2.5%", "97.5%")

	for p := 0; p < s.P; p++ {
		sp.out.Printf("%-10s %v\n", fmt.Sprintf("beta[%d]", p), newInterval(column(s.Beta[:rows], p)))
	}
	sp.out.Printf("%-10s %v\n", "alpha", newInterval(s.Alpha[:rows]))
	sp.out.Printf("%-10s %v\n", "rho", newInterval(s.Rho[:rows]))
	for k := 0; k < s.K; k++ {
		sp.out.Printf("%-10s %v\n", fmt.Sprintf("pi[%d]", k), newInterval(column(s.Pi[:rows], k)))
	}
	sp.out.Printf("Prior draws: alpha %.4f, rho %.4f\n", s.AlphaPrior, s.RhoPrior)

	best, loss, err := s.PointEstimate()
	if err != nil {
		return errors.Wrapf(err, "Could not choose a partition from %s", filename)
	}
	sp.out.Printf("Point estimate: sample %d (Green loss %.3f), %d clusters\n", best, loss, distinct(s.ClusterAssignment[best]))
	sp.out.Printf("  %v\n", s.ClusterAssignment[best])

	pairs := topPairs(s.CoCluster, so.pairs)
	if len(pairs) > 0 {
		sp.out.Printf("Most probable co-clustered groups:\n")
	}
	for _, p := range pairs {
		sp.out.Printf("  %4d %4d  %.3f\n", p.J1, p.J2, p.Prob)
	}

	return nil
}
