package treeseq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tseda/domain/core"
)

func TestGNN_TwoClades(t *testing.T) {
	ts := twoCladeTS(t)
	focal := []core.NodeID{0, 1, 2, 3}
	refSets := [][]core.NodeID{{0, 1}, {2, 3}}

	result, err := ts.GNN(focal, refSets)
	require.NoError(t, err)
	require.Len(t, result, 4)

	// Each sample's nearest neighbour is its clade mate.
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 1, result[j][0], tol)
		assert.InDelta(t, 0, result[j][1], tol)
	}
	for j := 2; j < 4; j++ {
		assert.InDelta(t, 0, result[j][0], tol)
		assert.InDelta(t, 1, result[j][1], tol)
	}
}

func TestGNN_RowsSumToOne(t *testing.T) {
	ts := twoCladeTS(t)
	focal := []core.NodeID{0, 2}
	refSets := [][]core.NodeID{{0, 1}, {2}, {3}}

	result, err := ts.GNN(focal, refSets)
	require.NoError(t, err)
	for j := range result {
		sum := 0.0
		for _, v := range result[j] {
			sum += v
		}
		assert.InDelta(t, 1, sum, tol, "row %d", j)
	}
}

func TestWindowedGNN_Recombination(t *testing.T) {
	ts := recombTS(t)
	focal := []core.NodeID{0}
	refSets := [][]core.NodeID{{0}, {1}, {2}}

	result, err := ts.WindowedGNN(focal, refSets, []float64{0, 5, 10})
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Sample 0 shares node 3 with sample 1 on the left half of the
	// genome and with sample 2 on the right half.
	assert.InDelta(t, 0, result[0][0][0], tol)
	assert.InDelta(t, 1, result[0][0][1], tol)
	assert.InDelta(t, 0, result[0][0][2], tol)

	assert.InDelta(t, 0, result[1][0][0], tol)
	assert.InDelta(t, 0, result[1][0][1], tol)
	assert.InDelta(t, 1, result[1][0][2], tol)
}

func TestGNN_WholeSequenceAveragesTrees(t *testing.T) {
	ts := recombTS(t)

	result, err := ts.GNN([]core.NodeID{0}, [][]core.NodeID{{0}, {1}, {2}})
	require.NoError(t, err)

	// The two marginal trees each cover half the sequence.
	assert.InDelta(t, 0, result[0][0], tol)
	assert.InDelta(t, 0.5, result[0][1], tol)
	assert.InDelta(t, 0.5, result[0][2], tol)
}

func TestGNN_NoInformativeAncestorIsNaN(t *testing.T) {
	ts := twoCladeTS(t)

	// The only reference sample is the focal node itself, so no
	// ancestor ever carries another reference sample.
	result, err := ts.GNN([]core.NodeID{0}, [][]core.NodeID{{0}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result[0][0]))
}

func TestGNN_Validation(t *testing.T) {
	ts := twoCladeTS(t)

	_, err := ts.GNN(nil, [][]core.NodeID{{0, 1}})
	assert.Error(t, err, "no focal nodes")

	_, err = ts.GNN([]core.NodeID{0}, nil)
	assert.Error(t, err, "no reference sets")

	_, err = ts.GNN([]core.NodeID{0}, [][]core.NodeID{{0, 1}, {1, 2}})
	assert.Error(t, err, "overlapping reference sets")
}
