package app

import (
	"fmt"
	"strings"

	"tseda/domain/core"
	"tseda/domain/treeseq"
)

// TreeView is one rendered marginal tree plus the navigation state the
// trees page needs.
type TreeView struct {
	Index    int     `json:"index"`
	NumTrees int     `json:"num_trees"`
	Left     float64 `json:"left"`
	Right    float64 `json:"right"`
	SVG      string  `json:"svg"`
}

// RenderTree renders the marginal tree with the given index, with
// sample symbols colored by sample set.
func (ds *DataStore) RenderTree(index int) (*TreeView, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	tree, err := ds.ts.TreeAtIndex(index)
	if err != nil {
		return nil, err
	}
	return ds.renderLocked(tree), nil
}

// RenderTreeAt renders the marginal tree covering the genome position;
// the returned index feeds prev/next navigation.
func (ds *DataStore) RenderTreeAt(position float64) (*TreeView, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	tree, err := ds.ts.TreeAt(position)
	if err != nil {
		return nil, err
	}
	return ds.renderLocked(tree), nil
}

func (ds *DataStore) renderLocked(tree *treeseq.Tree) *TreeView {
	nodeSet := make(map[core.NodeID]core.SampleSetID)
	for i := range ds.individuals {
		ind := &ds.individuals[i]
		for _, node := range ind.Nodes {
			nodeSet[node] = ind.SampleSet
		}
	}

	var style strings.Builder
	for _, ss := range ds.sampleSets {
		fmt.Fprintf(&style, ".node.%s > .sym { fill: %s; } ", ss.CSSClass(), ss.Color)
	}

	opts := treeseq.DefaultSVGOptions()
	opts.Style = style.String()
	opts.NodeClass = func(u core.NodeID) string {
		if ssid, ok := nodeSet[u]; ok {
			return fmt.Sprintf("p%d", ssid)
		}
		return ""
	}

	left, right := tree.Interval()
	return &TreeView{
		Index:    tree.Index(),
		NumTrees: ds.ts.NumTrees(),
		Left:     left,
		Right:    right,
		SVG:      tree.DrawSVG(opts),
	}
}
