package treeseq

import (
	"fmt"
	"strings"

	"tseda/domain/core"
)

// SVGOptions configures marginal tree rendering.
type SVGOptions struct {
	Width      int
	Height     int
	SymbolSize float64
	NodeLabels bool
	// Style is raw CSS injected into the svg, used to color sample
	// symbols by sample set (selectors like ".node.p0 > .sym").
	Style string
	// NodeClass returns extra classes for a node's group element.
	NodeClass func(core.NodeID) string
}

// DefaultSVGOptions returns the rendering defaults used by the trees
// page.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 800, SymbolSize: 5, NodeLabels: true}
}

// DrawSVG renders the tree as a standalone SVG document. Leaves are
// spread evenly along the bottom, internal nodes centered over their
// children, vertical position scaled by node time.
func (t *Tree) DrawSVG(opts SVGOptions) string {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.SymbolSize <= 0 {
		opts.SymbolSize = 5
	}

	children := t.Children()
	roots := t.Roots()

	// Leaf x positions by depth-first discovery order across roots.
	x := make(map[core.NodeID]float64)
	var order []core.NodeID
	leafCount := 0
	var placeLeaves func(u core.NodeID)
	placeLeaves = func(u core.NodeID) {
		order = append(order, u)
		if len(children[u]) == 0 {
			x[u] = float64(leafCount)
			leafCount++
			return
		}
		for _, c := range children[u] {
			placeLeaves(c)
		}
	}
	for _, r := range roots {
		placeLeaves(r)
	}
	var placeInternal func(u core.NodeID) float64
	placeInternal = func(u core.NodeID) float64 {
		if v, ok := x[u]; ok {
			return v
		}
		sum := 0.0
		for _, c := range children[u] {
			sum += placeInternal(c)
		}
		v := sum / float64(len(children[u]))
		x[u] = v
		return v
	}
	for _, r := range roots {
		placeInternal(r)
	}

	maxTime := 0.0
	for _, u := range order {
		if tt := t.ts.tables.Nodes[u].Time; tt > maxTime {
			maxTime = tt
		}
	}

	const margin = 24.0
	plotW := float64(opts.Width) - 2*margin
	plotH := float64(opts.Height) - 2*margin
	px := func(u core.NodeID) float64 {
		if leafCount <= 1 {
			return margin + plotW/2
		}
		return margin + x[u]/float64(leafCount-1)*plotW
	}
	py := func(u core.NodeID) float64 {
		if maxTime == 0 {
			return margin + plotH
		}
		return margin + (1-t.ts.tables.Nodes[u].Time/maxTime)*plotH
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(&b, `<style>.edge { stroke: #0d5160; fill: none; } .node .sym { fill: #0fa57e; } .lab { font: 10px sans-serif; fill: #333; } %s</style>`,
		opts.Style)

	// Edges first so symbols draw on top.
	for _, u := range order {
		p := t.parent[u]
		if p.IsNull() {
			continue
		}
		fmt.Fprintf(&b, `<path class="edge" d="M %.2f %.2f V %.2f H %.2f"/>`,
			px(u), py(u), py(p), px(p))
	}

	for _, u := range order {
		class := "node"
		if opts.NodeClass != nil {
			if extra := opts.NodeClass(u); extra != "" {
				class += " " + extra
			}
		}
		fmt.Fprintf(&b, `<g class="%s"><circle class="sym" cx="%.2f" cy="%.2f" r="%.2f"/>`,
			class, px(u), py(u), opts.SymbolSize)
		if opts.NodeLabels && len(children[u]) == 0 {
			fmt.Fprintf(&b, `<text class="lab" x="%.2f" y="%.2f" text-anchor="middle">%d</text>`,
				px(u), py(u)+opts.SymbolSize+10, u)
		}
		b.WriteString(`</g>`)
	}

	b.WriteString(`</svg>`)
	return b.String()
}
