package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Group is a contiguous run of observations in Data.Distances. A group is
// one replicate unit (for example all events around one location).
type Group struct {
	Start int // Offset of the first distance
	Len   int // Number of distances (the observed count)
}

// Data holds everything the sampler conditions on
type Data struct {
	X         *mat.Dense // Design matrix: one row per group, one column per covariate
	Distances []float64  // Observed distances for all groups, group by group
	Groups    []Group    // Index table into Distances
	Grid      []float64  // Ascending positive evaluation grid for intensities
}

// J is the number of groups
func (d *Data) J() int {
	return len(d.Groups)
}

// N is the total number of observations
func (d *Data) N() int {
	return len(d.Distances)
}

// P is the number of covariates
func (d *Data) P() int {
	if d.X == nil {
		return 0
	}
	_, c := d.X.Dims()
	return c
}

// Group returns the distances belonging to group j
func (d *Data) Group(j int) []float64 {
	g := d.Groups[j]
	return d.Distances[g.Start : g.Start+g.Len]
}

// Counts returns the observed count per group as floats, ready for a
// likelihood evaluation.
func (d *Data) Counts() []float64 {
	c := make([]float64, len(d.Groups))
	for j, g := range d.Groups {
		c[j] = float64(g.Len)
	}
	return c
}

// Check returns an error if any problem is found. The sampler itself never
// validates, so callers should check data before building a chain.
func (d *Data) Check() error {
	if d.X == nil {
		return errors.New("Data has no design matrix")
	}
	if len(d.Groups) < 1 {
		return errors.New("Data has no groups")
	}

	rows, cols := d.X.Dims()
	if rows != len(d.Groups) {
		return errors.Errorf("Design matrix has %d rows but there are %d groups", rows, len(d.Groups))
	}
	if cols < 1 {
		return errors.New("Design matrix has no columns")
	}

	// Groups must tile the distance array in order
	next := 0
	for j, g := range d.Groups {
		if g.Start != next || g.Len < 0 {
			return errors.Errorf("Group %d has start %d, len %d (expected start %d)", j, g.Start, g.Len, next)
		}
		next += g.Len
	}
	if next != len(d.Distances) {
		return errors.Errorf("Groups cover %d distances but %d were given", next, len(d.Distances))
	}

	for i, r := range d.Distances {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return errors.Errorf("Distance %d is not finite: %v", i, r)
		}
	}

	if len(d.Grid) < 1 {
		return errors.New("Evaluation grid is empty")
	}
	for i, x := range d.Grid {
		if x <= 0 {
			return errors.Errorf("Grid value %d is %v: must be positive", i, x)
		}
		if i > 0 && x <= d.Grid[i-1] {
			return errors.Errorf("Grid must be ascending: %v follows %v", x, d.Grid[i-1])
		}
	}

	return nil
}
