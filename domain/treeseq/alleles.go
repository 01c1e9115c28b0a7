package treeseq

import (
	"sort"

	"tseda/domain/core"
)

// siteState holds, for one site, the number of samples from each
// sample set carrying each allele. Counts are indexed by the caller's
// sample set order.
type siteState struct {
	position float64
	counts   map[string][]int
}

// siteStates walks the marginal trees once and resolves the allele
// carried by every sample at every site, then tallies per-set counts.
// Mutations at a site are applied oldest first so that younger
// mutations on nested branches override their ancestors.
func (ts *TreeSequence) siteStates(sets [][]core.NodeID) []siteState {
	numSites := len(ts.tables.Sites)
	result := make([]siteState, 0, numSites)
	if numSites == 0 {
		return result
	}

	mutationsBySite := make([][]Mutation, numSites)
	for _, m := range ts.tables.Mutations {
		mutationsBySite[m.Site] = append(mutationsBySite[m.Site], m)
	}
	for _, muts := range mutationsBySite {
		sort.SliceStable(muts, func(a, b int) bool {
			return muts[a].Time > muts[b].Time
		})
	}

	allele := make([]string, ts.NumNodes())
	siteID := 0
	for it := ts.Trees(); it.Next() && siteID < numSites; {
		t := it.Tree()
		_, right := t.Interval()
		var children [][]core.NodeID
		for siteID < numSites && ts.tables.Sites[siteID].Position < right {
			site := ts.tables.Sites[siteID]
			if children == nil {
				children = t.Children()
			}
			for _, s := range ts.samples {
				allele[s] = site.AncestralState
			}
			for _, m := range mutationsBySite[siteID] {
				for _, s := range t.SamplesUnder(m.Node, children) {
					allele[s] = m.DerivedState
				}
			}
			counts := make(map[string][]int)
			for k, set := range sets {
				for _, s := range set {
					c, ok := counts[allele[s]]
					if !ok {
						c = make([]int, len(sets))
						counts[allele[s]] = c
					}
					c[k]++
				}
			}
			result = append(result, siteState{position: site.Position, counts: counts})
			siteID++
		}
	}
	return result
}
