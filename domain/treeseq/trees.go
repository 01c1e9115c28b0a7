package treeseq

import (
	"math"

	"tseda/domain/core"
	"tseda/internal/errors"
)

// EdgeDiff describes the edges removed and inserted when crossing
// from one marginal tree to the next.
type EdgeDiff struct {
	Left  float64
	Right float64
	Out   []Edge
	In    []Edge
}

// EdgeDiffIterator walks tree intervals left to right. Every tree
// sequence yields at least one interval covering [0, L).
type EdgeDiffIterator struct {
	ts   *TreeSequence
	j, k int
	left float64
	diff EdgeDiff
}

// EdgeDiffs returns an iterator over the edge differences between
// successive marginal trees.
func (ts *TreeSequence) EdgeDiffs() *EdgeDiffIterator {
	return &EdgeDiffIterator{ts: ts}
}

// Next advances to the next tree interval.
func (it *EdgeDiffIterator) Next() bool {
	ts := it.ts
	if it.left >= ts.tables.SequenceLength {
		return false
	}
	edges := ts.tables.Edges
	m := len(edges)

	var out, in []Edge
	for it.k < m && edges[ts.removal[it.k]].Right == it.left {
		out = append(out, edges[ts.removal[it.k]])
		it.k++
	}
	for it.j < m && edges[ts.insertion[it.j]].Left == it.left {
		in = append(in, edges[ts.insertion[it.j]])
		it.j++
	}

	right := ts.tables.SequenceLength
	if it.j < m && edges[ts.insertion[it.j]].Left < right {
		right = edges[ts.insertion[it.j]].Left
	}
	if it.k < m && edges[ts.removal[it.k]].Right < right {
		right = edges[ts.removal[it.k]].Right
	}

	it.diff = EdgeDiff{Left: it.left, Right: right, Out: out, In: in}
	it.left = right
	return true
}

// Diff returns the current edge difference.
func (it *EdgeDiffIterator) Diff() EdgeDiff {
	return it.diff
}

// Tree is one marginal tree: a parent pointer per node, valid over
// the genome interval [Left, Right).
type Tree struct {
	ts     *TreeSequence
	index  int
	left   float64
	right  float64
	parent []core.NodeID
}

// Index returns the zero-based tree index.
func (t *Tree) Index() int { return t.index }

// Interval returns the genome interval the tree covers.
func (t *Tree) Interval() (left, right float64) {
	return t.left, t.right
}

// Span returns the interval length.
func (t *Tree) Span() float64 { return t.right - t.left }

// Parent returns the parent of node u, NullID at a root.
func (t *Tree) Parent(u core.NodeID) core.NodeID {
	return t.parent[u]
}

// Children returns per-node child lists, ordered by node id.
func (t *Tree) Children() [][]core.NodeID {
	children := make([][]core.NodeID, len(t.parent))
	for child, p := range t.parent {
		if !p.IsNull() {
			children[p] = append(children[p], core.NodeID(child))
		}
	}
	return children
}

// Roots returns the root of each sample's path to the top of the
// tree, deduplicated, in discovery order.
func (t *Tree) Roots() []core.NodeID {
	seen := make(map[core.NodeID]bool)
	var roots []core.NodeID
	for _, s := range t.ts.samples {
		u := s
		for !t.parent[u].IsNull() {
			u = t.parent[u]
		}
		if !seen[u] {
			seen[u] = true
			roots = append(roots, u)
		}
	}
	return roots
}

// SamplesUnder returns the sample nodes in the subtree rooted at u,
// using precomputed child lists.
func (t *Tree) SamplesUnder(u core.NodeID, children [][]core.NodeID) []core.NodeID {
	var result []core.NodeID
	stack := []core.NodeID{u}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.ts.tables.Nodes[v].IsSample() {
			result = append(result, v)
		}
		stack = append(stack, children[v]...)
	}
	return result
}

func (t *Tree) clone() *Tree {
	parent := make([]core.NodeID, len(t.parent))
	copy(parent, t.parent)
	return &Tree{ts: t.ts, index: t.index, left: t.left, right: t.right, parent: parent}
}

// TreeIterator walks the marginal trees left to right. The Tree
// returned by Tree() is only valid until the next call to Next.
type TreeIterator struct {
	diffs *EdgeDiffIterator
	tree  Tree
}

// Trees returns an iterator over the marginal trees.
func (ts *TreeSequence) Trees() *TreeIterator {
	parent := make([]core.NodeID, ts.NumNodes())
	for i := range parent {
		parent[i] = core.NodeID(core.NullID)
	}
	return &TreeIterator{
		diffs: ts.EdgeDiffs(),
		tree:  Tree{ts: ts, index: -1, parent: parent},
	}
}

// Next advances to the next marginal tree.
func (it *TreeIterator) Next() bool {
	if !it.diffs.Next() {
		return false
	}
	diff := it.diffs.Diff()
	for _, e := range diff.Out {
		it.tree.parent[e.Child] = core.NodeID(core.NullID)
	}
	for _, e := range diff.In {
		it.tree.parent[e.Child] = e.Parent
	}
	it.tree.index++
	it.tree.left = diff.Left
	it.tree.right = diff.Right
	return true
}

// Tree returns the current marginal tree.
func (it *TreeIterator) Tree() *Tree {
	return &it.tree
}

// TreeAtIndex returns a copy of the marginal tree with the given
// zero-based index.
func (ts *TreeSequence) TreeAtIndex(index int) (*Tree, error) {
	if index < 0 || index >= ts.numTrees {
		return nil, errors.InvalidInput("tree index %d out of range [0, %d)", index, ts.numTrees)
	}
	for it := ts.Trees(); it.Next(); {
		if it.Tree().Index() == index {
			return it.Tree().clone(), nil
		}
	}
	return nil, errors.NotFound("tree index %d", index)
}

// TreeAt returns a copy of the marginal tree covering the genome
// position.
func (ts *TreeSequence) TreeAt(position float64) (*Tree, error) {
	if position < 0 || position >= ts.tables.SequenceLength || math.IsNaN(position) {
		return nil, errors.InvalidInput("position %g outside [0, %g)", position, ts.tables.SequenceLength)
	}
	for it := ts.Trees(); it.Next(); {
		left, right := it.Tree().Interval()
		if position >= left && position < right {
			return it.Tree().clone(), nil
		}
	}
	return nil, errors.NotFound("tree at position %g", position)
}
