package treeseq

import (
	"math"

	"tseda/domain/core"
	"tseda/internal/errors"
)

// WindowedGNN computes genealogical nearest neighbour proportions for
// the focal nodes against the reference sets, per genome window. For
// each focal node and each tree, the nearest ancestor carrying other
// reference samples distributes its span-weighted sample counts over
// the reference sets. The result is indexed [window][focal][set] and
// is span-normalised; focal nodes with no informative ancestor in a
// window yield NaN.
//
// Passing nil windows computes a single window spanning the genome.
func (ts *TreeSequence) WindowedGNN(focal []core.NodeID, refSets [][]core.NodeID, windows []float64) ([][][]float64, error) {
	if len(focal) == 0 {
		return nil, errors.InvalidInput("need at least one focal node")
	}
	if err := ts.checkSampleSets(refSets, 1); err != nil {
		return nil, err
	}
	if windows == nil {
		windows = []float64{0, ts.tables.SequenceLength}
	}
	if err := checkWindows(windows, ts.tables.SequenceLength); err != nil {
		return nil, err
	}

	numNodes := ts.NumNodes()
	k := len(refSets)

	refSetMap := make([]int, numNodes)
	for i := range refSetMap {
		refSetMap[i] = int(core.NullID)
	}
	for setIdx, set := range refSets {
		for _, u := range set {
			if refSetMap[u] != int(core.NullID) {
				return nil, errors.InvalidInput("duplicate node %d in reference sets", u)
			}
			refSetMap[u] = setIdx
		}
	}

	numWindows := len(windows) - 1
	a := make([][][]float64, numWindows)
	norm := make([][]float64, numWindows)
	for w := range a {
		a[w] = newMatrix(len(focal), k)
		norm[w] = make([]float64, len(focal))
	}

	parent := make([]core.NodeID, numNodes)
	for i := range parent {
		parent[i] = core.NodeID(core.NullID)
	}
	sampleCount := make([][]int, numNodes)
	for i := range sampleCount {
		sampleCount[i] = make([]int, k)
	}
	for setIdx, set := range refSets {
		for _, u := range set {
			sampleCount[u][setIdx] = 1
		}
	}

	windowIdx := 0
	for it := ts.EdgeDiffs(); it.Next(); {
		diff := it.Diff()
		for _, e := range diff.Out {
			parent[e.Child] = core.NodeID(core.NullID)
			for v := e.Parent; !v.IsNull(); v = parent[v] {
				for j := 0; j < k; j++ {
					sampleCount[v][j] -= sampleCount[e.Child][j]
				}
			}
		}
		for _, e := range diff.In {
			parent[e.Child] = e.Parent
			for v := e.Parent; !v.IsNull(); v = parent[v] {
				for j := 0; j < k; j++ {
					sampleCount[v][j] += sampleCount[e.Child][j]
				}
			}
		}

		for windowIdx < numWindows && windows[windowIdx] < diff.Right {
			wLeft := windows[windowIdx]
			wRight := windows[windowIdx+1]
			left := math.Max(diff.Left, wLeft)
			right := math.Min(diff.Right, wRight)
			span := right - left

			for j, u := range focal {
				focalRefSet := refSetMap[u]
				delta := 0
				if focalRefSet != int(core.NullID) {
					delta = 1
				}
				total := 0
				p := u
				for !p.IsNull() {
					total = 0
					for _, c := range sampleCount[p] {
						total += c
					}
					if total > delta {
						break
					}
					p = parent[p]
				}
				if !p.IsNull() {
					scale := span / float64(total-delta)
					for setIdx := 0; setIdx < k; setIdx++ {
						n := sampleCount[p][setIdx]
						if focalRefSet == setIdx {
							n--
						}
						a[windowIdx][j][setIdx] += float64(n) * scale
					}
					norm[windowIdx][j] += span
				}
			}

			if wRight <= diff.Right {
				windowIdx++
			} else {
				// Window crosses a tree boundary; revisit it in the
				// next tree.
				break
			}
		}
	}

	for w := 0; w < numWindows; w++ {
		for j := range focal {
			allZero := true
			for setIdx := 0; setIdx < k; setIdx++ {
				if norm[w][j] == 0 {
					a[w][j][setIdx] = math.NaN()
					continue
				}
				a[w][j][setIdx] /= norm[w][j]
				if a[w][j][setIdx] != 0 {
					allZero = false
				}
			}
			if allZero && norm[w][j] != 0 {
				for setIdx := 0; setIdx < k; setIdx++ {
					a[w][j][setIdx] = math.NaN()
				}
			}
		}
	}
	return a, nil
}

// GNN computes whole-sequence genealogical nearest neighbour
// proportions, indexed [focal][set].
func (ts *TreeSequence) GNN(focal []core.NodeID, refSets [][]core.NodeID) ([][]float64, error) {
	a, err := ts.WindowedGNN(focal, refSets, nil)
	if err != nil {
		return nil, err
	}
	return a[0], nil
}
