package treeseq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tseda/domain/core"
)

const tol = 1e-9

// The two-clade fixture has allele counts, over all four samples:
// site at 2: T carried by {0, 1}, A by {2, 3}; site at 6: G carried
// by {2}, C by the rest. All expected values below follow by hand
// from the per-site heterozygosity sums.

func TestDiversity_WholeSequence(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1, 2, 3}, {0, 1}, {2, 3}}
	windows := []float64{0, 10}

	result, err := ts.Diversity(sets, windows)
	require.NoError(t, err)
	require.Len(t, result, 1)

	// Full set: (2/3 + 1/2) / 10. The {0, 1} pair is monomorphic at
	// both sites; the {2, 3} pair differs only at the second site.
	assert.InDelta(t, 7.0/60.0, result[0][0], tol)
	assert.InDelta(t, 0, result[0][1], tol)
	assert.InDelta(t, 0.1, result[0][2], tol)
}

func TestDiversity_Windowed(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1, 2, 3}}
	windows := []float64{0, 5, 10}

	result, err := ts.Diversity(sets, windows)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// One site per window, each normalised by the window span of 5.
	assert.InDelta(t, (2.0/3.0)/5.0, result[0][0], tol)
	assert.InDelta(t, 0.5/5.0, result[1][0], tol)
}

func TestDiversity_SingletonSetIsNaN(t *testing.T) {
	ts := twoCladeTS(t)

	result, err := ts.Diversity([][]core.NodeID{{0}}, []float64{0, 10})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result[0][0]))
}

func TestDiversity_Validation(t *testing.T) {
	ts := twoCladeTS(t)

	_, err := ts.Diversity(nil, []float64{0, 10})
	assert.Error(t, err)

	_, err = ts.Diversity([][]core.NodeID{{}}, []float64{0, 10})
	assert.Error(t, err)

	// Node 6 is internal, not a sample.
	_, err = ts.Diversity([][]core.NodeID{{6}}, []float64{0, 10})
	assert.Error(t, err)

	_, err = ts.Diversity([][]core.NodeID{{0, 1}}, []float64{0, 5})
	assert.Error(t, err)
}

func TestDivergence(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1}, {2, 3}}
	pairs := [][2]int{{0, 1}}

	result, err := ts.Divergence(sets, pairs, []float64{0, 10})
	require.NoError(t, err)

	// The site at 2 fully separates the clades (dxy 1); at the site
	// at 6 half of the cross pairs match, so dxy is 1/2. Total
	// (1 + 0.5) / 10.
	assert.InDelta(t, 0.15, result[0][0], tol)
}

func TestDivergence_Validation(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1}, {2, 3}}

	_, err := ts.Divergence([][]core.NodeID{{0, 1}}, [][2]int{{0, 0}}, []float64{0, 10})
	assert.Error(t, err, "fewer than two sets")

	_, err = ts.Divergence(sets, nil, []float64{0, 10})
	assert.Error(t, err, "no pairs")

	_, err = ts.Divergence(sets, [][2]int{{0, 5}}, []float64{0, 10})
	assert.Error(t, err, "pair index out of range")
}

func TestFst(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1}, {2, 3}}
	pairs := [][2]int{{0, 1}}

	result, err := ts.Fst(sets, pairs, []float64{0, 10})
	require.NoError(t, err)

	// Hudson: 1 - mean within / between. Within sums are 0 and 1,
	// between sums to 1.5, so Fst = 1 - 0.5/1.5.
	assert.InDelta(t, 2.0/3.0, result[0][0], tol)
}

func TestFst_ZeroDivergenceIsZero(t *testing.T) {
	ts := twoCladeTS(t)
	// Identical sets have zero between-set divergence.
	sets := [][]core.NodeID{{0, 1}, {0, 1}}

	result, err := ts.Fst(sets, [][2]int{{0, 1}}, []float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result[0][0])
}

func TestFst_SelfPairIsZero(t *testing.T) {
	ts := twoCladeTS(t)
	// Set 1 is polymorphic at the singleton site.
	sets := [][]core.NodeID{{0, 1}, {2, 3}}

	result, err := ts.Fst(sets, [][2]int{{1, 1}}, []float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result[0][0])
}

func TestTajimasD(t *testing.T) {
	ts := twoCladeTS(t)
	sets := [][]core.NodeID{{0, 1, 2, 3}}

	result, err := ts.TajimasD(sets, []float64{0, 10})
	require.NoError(t, err)

	// pi = 7/6 over 2 segregating sites, n = 4.
	assert.InDelta(t, 0.591580139899561, result[0][0], 1e-12)
}

func TestTajimasD_NoSegregatingSitesIsNaN(t *testing.T) {
	ts := twoCladeTS(t)
	// The {0, 1} clade is monomorphic at both sites.
	result, err := ts.TajimasD([][]core.NodeID{{0, 1}}, []float64{0, 10})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result[0][0]))
}

func TestTajimasD_Helper(t *testing.T) {
	assert.True(t, math.IsNaN(tajimasD(0.5, 0, 4)), "no segregating sites")
	assert.True(t, math.IsNaN(tajimasD(0.5, 3, 1)), "singleton set")

	// pi equal to its neutral expectation S/a1 gives D = 0.
	a1 := 1.0 + 0.5 + 1.0/3.0
	assert.InDelta(t, 0, tajimasD(2/a1, 2, 4), tol)
}

func TestStats_NoSites(t *testing.T) {
	ts := recombTS(t)
	sets := [][]core.NodeID{{0, 1}, {0, 2}}

	div, err := ts.Diversity(sets, []float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, div[0][0])

	fst, err := ts.Fst(sets, [][2]int{{0, 1}}, []float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, fst[0][0])
}
