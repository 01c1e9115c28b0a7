package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tseda/domain/core"
	"tseda/domain/dataset"
	"tseda/domain/treeseq"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTables() *treeseq.Tables {
	return &treeseq.Tables{
		SequenceLength: 1000,
		TimeUnits:      "uncalibrated",
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Time: 0, Population: 0, Individual: 0},
			{Flags: treeseq.NodeIsSample, Time: 0, Population: 0, Individual: 0},
			{Flags: 0, Time: 2.5, Population: core.NullID, Individual: core.NullID},
		},
		Edges: []treeseq.Edge{
			{Left: 0, Right: 1000, Parent: 2, Child: 0},
			{Left: 0, Right: 1000, Parent: 2, Child: 1},
		},
		Individuals: []treeseq.IndividualRow{
			{
				Location: []float64{1.5, 2.5},
				Parents:  []core.IndividualID{core.NullID},
				Metadata: json.RawMessage(`{"name": "tsk_0", "longitude": 17.6, "latitude": 59.9}`),
			},
		},
		Populations: []treeseq.PopulationRow{
			{Metadata: json.RawMessage(`{"population": "CEU"}`)},
		},
		Sites:     []treeseq.Site{{Position: 42, AncestralState: "A"}},
		Mutations: []treeseq.Mutation{{Site: 0, Node: 0, DerivedState: "T", Time: 1.5}},
	}
}

func TestStore_TablesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTables(ctx, testTables()))

	got, err := s.LoadTables(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, got.SequenceLength)
	assert.Equal(t, "uncalibrated", got.TimeUnits)
	require.Len(t, got.Nodes, 3)
	assert.True(t, got.Nodes[0].IsSample())
	assert.Equal(t, 2.5, got.Nodes[2].Time)
	assert.Equal(t, int32(core.NullID), int32(got.Nodes[2].Individual))

	require.Len(t, got.Edges, 2)
	assert.Equal(t, core.NodeID(2), got.Edges[0].Parent)

	require.Len(t, got.Individuals, 1)
	assert.Equal(t, []float64{1.5, 2.5}, got.Individuals[0].Location)
	assert.JSONEq(t, `{"name": "tsk_0", "longitude": 17.6, "latitude": 59.9}`,
		string(got.Individuals[0].Metadata))

	require.Len(t, got.Sites, 1)
	assert.Equal(t, "A", got.Sites[0].AncestralState)
	require.Len(t, got.Mutations, 1)
	assert.Equal(t, "T", got.Mutations[0].DerivedState)

	// The loaded tables must survive model validation.
	_, err = treeseq.New(*got)
	assert.NoError(t, err)
}

func TestStore_SaveTablesReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTables(ctx, testTables()))
	require.NoError(t, s.SaveTables(ctx, testTables()))

	got, err := s.LoadTables(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 3)
	assert.Len(t, got.Edges, 2)
}

func TestStore_SampleSetsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sets := []dataset.SampleSet{
		dataset.NewPopulationSampleSet(0, json.RawMessage(`{"population": "CEU"}`)),
		dataset.NewSampleSet(1, "custom"),
	}
	require.NoError(t, s.SaveSampleSets(ctx, sets))

	got, err := s.LoadSampleSets(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CEU", got[0].Name)
	assert.True(t, got[0].Predefined)
	assert.Equal(t, "custom", got[1].Name)
	assert.False(t, got[1].Predefined)
	assert.Equal(t, dataset.ColorFor(1), got[1].Color)
}

func TestStore_Meta(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMeta(ctx, MetaSource, "example.trees.tsz"))
	require.NoError(t, s.SetMeta(ctx, MetaSource, "other.trees.tsz"))

	got, err := s.GetMeta(ctx, MetaSource)
	require.NoError(t, err)
	assert.Equal(t, "other.trees.tsz", got)

	_, err = s.GetMeta(ctx, "missing")
	assert.Error(t, err)
}
