// Package treeseq implements the tree sequence model underlying all
// data views: the succinct table collection (nodes, edges,
// individuals, populations, sites, mutations), marginal tree
// extraction, and the windowed population genetic statistics shown on
// the dashboard.
package treeseq

import (
	"encoding/json"
	"sort"

	"tseda/domain/core"
	"tseda/internal/errors"
)

// NodeIsSample flags a node as a sample (a sequenced genome).
const NodeIsSample uint32 = 1

// Node is one row of the node table.
type Node struct {
	Flags      uint32            `json:"flags"`
	Time       float64           `json:"time"`
	Population core.PopulationID `json:"population"`
	Individual core.IndividualID `json:"individual"`
}

// IsSample reports whether the node is a sample node.
func (n Node) IsSample() bool {
	return n.Flags&NodeIsSample != 0
}

// Edge is one row of the edge table: parent is the ancestor of child
// over the genome interval [Left, Right).
type Edge struct {
	Left   float64     `json:"left"`
	Right  float64     `json:"right"`
	Parent core.NodeID `json:"parent"`
	Child  core.NodeID `json:"child"`
}

// IndividualRow is one row of the individual table. Metadata is kept
// as raw JSON; key extraction happens in domain/dataset.
type IndividualRow struct {
	Flags    uint32              `json:"flags"`
	Location []float64           `json:"location,omitempty"`
	Parents  []core.IndividualID `json:"parents,omitempty"`
	Metadata json.RawMessage     `json:"metadata,omitempty"`
}

// PopulationRow is one row of the population table.
type PopulationRow struct {
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Site is one row of the site table.
type Site struct {
	Position       float64 `json:"position"`
	AncestralState string  `json:"ancestral_state"`
}

// Mutation is one row of the mutation table: at Site, the subtree
// below Node carries DerivedState.
type Mutation struct {
	Site         core.SiteID `json:"site"`
	Node         core.NodeID `json:"node"`
	DerivedState string      `json:"derived_state"`
	Time         float64     `json:"time"`
}

// Tables is the full table collection of a tree sequence.
type Tables struct {
	SequenceLength float64         `json:"sequence_length"`
	TimeUnits      string          `json:"time_units"`
	Nodes          []Node          `json:"nodes"`
	Edges          []Edge          `json:"edges"`
	Individuals    []IndividualRow `json:"individuals"`
	Populations    []PopulationRow `json:"populations"`
	Sites          []Site          `json:"sites"`
	Mutations      []Mutation      `json:"mutations"`
}

// TreeSequence is a validated, indexed table collection ready for
// tree iteration and statistics.
type TreeSequence struct {
	tables Tables

	samples         []core.NodeID
	individualNodes [][]core.NodeID

	// Edge index vectors: insertion sorted by (left, parent time),
	// removal sorted by (right, -parent time). These drive tree
	// iteration and edge diffs.
	insertion []int32
	removal   []int32

	numTrees int
}

// New validates the tables and builds the edge indexes.
func New(tables Tables) (*TreeSequence, error) {
	if tables.SequenceLength <= 0 {
		return nil, errors.FormatInvalid("sequence length must be positive, got %g", tables.SequenceLength)
	}
	numNodes := len(tables.Nodes)
	for i, e := range tables.Edges {
		if e.Left < 0 || e.Right > tables.SequenceLength || e.Left >= e.Right {
			return nil, errors.FormatInvalid("edge %d has bad interval [%g, %g)", i, e.Left, e.Right)
		}
		if int(e.Parent) < 0 || int(e.Parent) >= numNodes || int(e.Child) < 0 || int(e.Child) >= numNodes {
			return nil, errors.FormatInvalid("edge %d references node out of range", i)
		}
		if tables.Nodes[e.Parent].Time <= tables.Nodes[e.Child].Time {
			return nil, errors.FormatInvalid("edge %d parent time %g not above child time %g",
				i, tables.Nodes[e.Parent].Time, tables.Nodes[e.Child].Time)
		}
	}
	for i, n := range tables.Nodes {
		if !n.Population.IsNull() && int(n.Population) >= len(tables.Populations) {
			return nil, errors.FormatInvalid("node %d references population %d out of range", i, n.Population)
		}
		if !n.Individual.IsNull() && int(n.Individual) >= len(tables.Individuals) {
			return nil, errors.FormatInvalid("node %d references individual %d out of range", i, n.Individual)
		}
	}
	for i, s := range tables.Sites {
		if s.Position < 0 || s.Position >= tables.SequenceLength {
			return nil, errors.FormatInvalid("site %d position %g outside [0, %g)", i, s.Position, tables.SequenceLength)
		}
		if i > 0 && tables.Sites[i-1].Position >= s.Position {
			return nil, errors.FormatInvalid("site table not sorted by position at row %d", i)
		}
	}
	for i, m := range tables.Mutations {
		if int(m.Site) < 0 || int(m.Site) >= len(tables.Sites) {
			return nil, errors.FormatInvalid("mutation %d references site %d out of range", i, m.Site)
		}
		if int(m.Node) < 0 || int(m.Node) >= numNodes {
			return nil, errors.FormatInvalid("mutation %d references node %d out of range", i, m.Node)
		}
	}

	ts := &TreeSequence{tables: tables}
	ts.buildSampleIndex()
	ts.buildEdgeIndex()
	ts.numTrees = ts.countTrees()
	return ts, nil
}

func (ts *TreeSequence) buildSampleIndex() {
	ts.individualNodes = make([][]core.NodeID, len(ts.tables.Individuals))
	for i, n := range ts.tables.Nodes {
		if n.IsSample() {
			ts.samples = append(ts.samples, core.NodeID(i))
		}
		if !n.Individual.IsNull() {
			ts.individualNodes[n.Individual] = append(ts.individualNodes[n.Individual], core.NodeID(i))
		}
	}
}

func (ts *TreeSequence) buildEdgeIndex() {
	edges := ts.tables.Edges
	nodes := ts.tables.Nodes
	ts.insertion = make([]int32, len(edges))
	ts.removal = make([]int32, len(edges))
	for i := range edges {
		ts.insertion[i] = int32(i)
		ts.removal[i] = int32(i)
	}
	sort.SliceStable(ts.insertion, func(a, b int) bool {
		ea, eb := edges[ts.insertion[a]], edges[ts.insertion[b]]
		if ea.Left != eb.Left {
			return ea.Left < eb.Left
		}
		return nodes[ea.Parent].Time < nodes[eb.Parent].Time
	})
	sort.SliceStable(ts.removal, func(a, b int) bool {
		ea, eb := edges[ts.removal[a]], edges[ts.removal[b]]
		if ea.Right != eb.Right {
			return ea.Right < eb.Right
		}
		return nodes[ea.Parent].Time > nodes[eb.Parent].Time
	})
}

// SequenceLength returns the genome length in base pairs.
func (ts *TreeSequence) SequenceLength() float64 {
	return ts.tables.SequenceLength
}

// TimeUnits returns the node time units ("uncalibrated" unless the
// input declared otherwise).
func (ts *TreeSequence) TimeUnits() string {
	if ts.tables.TimeUnits == "" {
		return "uncalibrated"
	}
	return ts.tables.TimeUnits
}

// Tables returns the underlying table collection.
func (ts *TreeSequence) Tables() *Tables {
	return &ts.tables
}

// NumNodes returns the number of node rows.
func (ts *TreeSequence) NumNodes() int { return len(ts.tables.Nodes) }

// NumEdges returns the number of edge rows.
func (ts *TreeSequence) NumEdges() int { return len(ts.tables.Edges) }

// NumSites returns the number of site rows.
func (ts *TreeSequence) NumSites() int { return len(ts.tables.Sites) }

// NumMutations returns the number of mutation rows.
func (ts *TreeSequence) NumMutations() int { return len(ts.tables.Mutations) }

// NumIndividuals returns the number of individual rows.
func (ts *TreeSequence) NumIndividuals() int { return len(ts.tables.Individuals) }

// NumPopulations returns the number of population rows.
func (ts *TreeSequence) NumPopulations() int { return len(ts.tables.Populations) }

// NumSamples returns the number of sample nodes.
func (ts *TreeSequence) NumSamples() int { return len(ts.samples) }

// NumTrees returns the number of marginal trees.
func (ts *TreeSequence) NumTrees() int { return ts.numTrees }

// Samples returns the sample node ids in node table order.
func (ts *TreeSequence) Samples() []core.NodeID {
	return ts.samples
}

// Node returns a node row.
func (ts *TreeSequence) Node(id core.NodeID) Node {
	return ts.tables.Nodes[id]
}

// Individual returns an individual row.
func (ts *TreeSequence) Individual(id core.IndividualID) IndividualRow {
	return ts.tables.Individuals[id]
}

// IndividualNodes returns the node ids attached to an individual
// (its haplotypes).
func (ts *TreeSequence) IndividualNodes(id core.IndividualID) []core.NodeID {
	return ts.individualNodes[id]
}

// Population returns a population row.
func (ts *TreeSequence) Population(id core.PopulationID) PopulationRow {
	return ts.tables.Populations[id]
}

// MaxRootTime returns the oldest node time, zero for an empty table.
func (ts *TreeSequence) MaxRootTime() float64 {
	maxTime := 0.0
	for _, n := range ts.tables.Nodes {
		if n.Time > maxTime {
			maxTime = n.Time
		}
	}
	return maxTime
}

func (ts *TreeSequence) countTrees() int {
	count := 0
	for it := ts.EdgeDiffs(); it.Next(); {
		count++
	}
	if count == 0 {
		count = 1
	}
	return count
}
