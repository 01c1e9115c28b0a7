package treeseq

import (
	"math"

	"tseda/domain/core"
	"tseda/internal/errors"
)

// Statistic names, matching the API parameter values.
const (
	StatDiversity  = "diversity"
	StatTajimasD   = "tajimas_d"
	StatDivergence = "divergence"
	StatFst        = "fst"
)

// checkSampleSets validates statistic inputs: at least minSets sets,
// every set non-empty and made of sample nodes.
func (ts *TreeSequence) checkSampleSets(sets [][]core.NodeID, minSets int) error {
	if len(sets) < minSets {
		return errors.InvalidInput("need at least %d sample sets, got %d", minSets, len(sets))
	}
	for k, set := range sets {
		if len(set) == 0 {
			return errors.InvalidInput("sample set %d is empty", k)
		}
		for _, u := range set {
			if int(u) < 0 || int(u) >= ts.NumNodes() {
				return errors.InvalidInput("sample set %d references node %d out of range", k, u)
			}
			if !ts.tables.Nodes[u].IsSample() {
				return errors.InvalidInput("sample set %d contains non-sample node %d", k, u)
			}
		}
	}
	return nil
}

// Diversity computes windowed nucleotide diversity (site mode,
// span-normalised) for each sample set. The result is indexed
// [window][set].
func (ts *TreeSequence) Diversity(sets [][]core.NodeID, windows []float64) ([][]float64, error) {
	if err := ts.checkSampleSets(sets, 1); err != nil {
		return nil, err
	}
	if err := checkWindows(windows, ts.tables.SequenceLength); err != nil {
		return nil, err
	}

	numWindows := len(windows) - 1
	result := newMatrix(numWindows, len(sets))
	for _, site := range ts.siteStates(sets) {
		w := windowIndex(windows, site.position)
		for k, set := range sets {
			n := len(set)
			if n < 2 {
				result[w][k] = math.NaN()
				continue
			}
			same := 0.0
			for _, perSet := range site.counts {
				c := float64(perSet[k])
				same += c * (c - 1)
			}
			result[w][k] += 1 - same/(float64(n)*float64(n-1))
		}
	}
	spanNormalise(result, windows)
	for k, set := range sets {
		if len(set) < 2 {
			for w := range result {
				result[w][k] = math.NaN()
			}
		}
	}
	return result, nil
}

// TajimasD computes windowed Tajima's D (site mode) for each sample
// set, using the standard a1..e2 constants. Windows with no
// segregating sites yield NaN.
func (ts *TreeSequence) TajimasD(sets [][]core.NodeID, windows []float64) ([][]float64, error) {
	if err := ts.checkSampleSets(sets, 1); err != nil {
		return nil, err
	}
	if err := checkWindows(windows, ts.tables.SequenceLength); err != nil {
		return nil, err
	}

	numWindows := len(windows) - 1
	pi := newMatrix(numWindows, len(sets))
	seg := newMatrix(numWindows, len(sets))
	for _, site := range ts.siteStates(sets) {
		w := windowIndex(windows, site.position)
		for k, set := range sets {
			n := len(set)
			alleles := 0
			same := 0.0
			for _, perSet := range site.counts {
				if perSet[k] > 0 {
					alleles++
				}
				c := float64(perSet[k])
				same += c * (c - 1)
			}
			if n >= 2 {
				pi[w][k] += 1 - same/(float64(n)*float64(n-1))
			}
			if alleles > 1 {
				seg[w][k]++
			}
		}
	}

	result := newMatrix(numWindows, len(sets))
	for w := 0; w < numWindows; w++ {
		for k, set := range sets {
			result[w][k] = tajimasD(pi[w][k], seg[w][k], len(set))
		}
	}
	return result, nil
}

// tajimasD evaluates the D statistic from raw pairwise diversity pi,
// segregating site count s, and sample set size n.
func tajimasD(pi, s float64, n int) float64 {
	if n < 2 || s == 0 {
		return math.NaN()
	}
	a1, a2 := 0.0, 0.0
	for i := 1; i < n; i++ {
		a1 += 1 / float64(i)
		a2 += 1 / float64(i*i)
	}
	nf := float64(n)
	b1 := (nf + 1) / (3 * (nf - 1))
	b2 := 2 * (nf*nf + nf + 3) / (9 * nf * (nf - 1))
	c1 := b1 - 1/a1
	c2 := b2 - (nf+2)/(a1*nf) + a2/(a1*a1)
	e1 := c1 / a1
	e2 := c2 / (a1*a1 + a2)
	denom := math.Sqrt(e1*s + e2*s*(s-1))
	if denom == 0 {
		return math.NaN()
	}
	return (pi - s/a1) / denom
}

// Divergence computes windowed pairwise divergence (site mode,
// span-normalised) for each requested index pair. The result is
// indexed [window][pair].
func (ts *TreeSequence) Divergence(sets [][]core.NodeID, pairs [][2]int, windows []float64) ([][]float64, error) {
	if err := ts.checkSampleSets(sets, 2); err != nil {
		return nil, err
	}
	if err := checkWindows(windows, ts.tables.SequenceLength); err != nil {
		return nil, err
	}
	if err := checkPairs(pairs, len(sets)); err != nil {
		return nil, err
	}

	numWindows := len(windows) - 1
	result := newMatrix(numWindows, len(pairs))
	for _, site := range ts.siteStates(sets) {
		w := windowIndex(windows, site.position)
		for p, pair := range pairs {
			result[w][p] += siteDivergence(site, pair[0], pair[1], len(sets[pair[0]]), len(sets[pair[1]]))
		}
	}
	spanNormalise(result, windows)
	return result, nil
}

// Fst computes windowed Hudson-style Fst for each requested index
// pair: 1 - mean within-set diversity over between-set divergence.
// Pairs with zero divergence in a window yield 0, as does a set
// paired with itself.
func (ts *TreeSequence) Fst(sets [][]core.NodeID, pairs [][2]int, windows []float64) ([][]float64, error) {
	if err := ts.checkSampleSets(sets, 2); err != nil {
		return nil, err
	}
	if err := checkWindows(windows, ts.tables.SequenceLength); err != nil {
		return nil, err
	}
	if err := checkPairs(pairs, len(sets)); err != nil {
		return nil, err
	}

	numWindows := len(windows) - 1
	within := newMatrix(numWindows, len(sets))
	between := newMatrix(numWindows, len(pairs))
	for _, site := range ts.siteStates(sets) {
		w := windowIndex(windows, site.position)
		for k, set := range sets {
			n := len(set)
			if n < 2 {
				continue
			}
			same := 0.0
			for _, perSet := range site.counts {
				c := float64(perSet[k])
				same += c * (c - 1)
			}
			within[w][k] += 1 - same/(float64(n)*float64(n-1))
		}
		for p, pair := range pairs {
			between[w][p] += siteDivergence(site, pair[0], pair[1], len(sets[pair[0]]), len(sets[pair[1]]))
		}
	}

	result := newMatrix(numWindows, len(pairs))
	for w := 0; w < numWindows; w++ {
		for p, pair := range pairs {
			// A set paired with itself has no between component.
			if pair[0] == pair[1] {
				result[w][p] = 0
				continue
			}
			dxy := between[w][p]
			if dxy == 0 {
				result[w][p] = 0
				continue
			}
			hw := (within[w][pair[0]] + within[w][pair[1]]) / 2
			result[w][p] = 1 - hw/dxy
		}
	}
	return result, nil
}

// siteDivergence is the probability that one sample from set i and
// one from set j differ at the site.
func siteDivergence(site siteState, i, j, ni, nj int) float64 {
	same := 0.0
	for _, perSet := range site.counts {
		same += float64(perSet[i]) * float64(perSet[j])
	}
	return 1 - same/(float64(ni)*float64(nj))
}

func checkPairs(pairs [][2]int, numSets int) error {
	if len(pairs) == 0 {
		return errors.InvalidInput("need at least one index pair")
	}
	for _, pair := range pairs {
		for _, idx := range pair {
			if idx < 0 || idx >= numSets {
				return errors.InvalidInput("index pair references sample set %d out of range", idx)
			}
		}
	}
	return nil
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func spanNormalise(m [][]float64, windows []float64) {
	for w := range m {
		span := windows[w+1] - windows[w]
		for k := range m[w] {
			m[w][k] /= span
		}
	}
}
