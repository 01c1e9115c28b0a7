package app

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"tseda/domain/core"
	"tseda/domain/treeseq"
	"tseda/internal/errors"
)

// StatResult is one windowed statistic: window bounds plus one value
// column per series.
type StatResult struct {
	Statistic string      `json:"statistic"`
	Windows   []float64   `json:"windows"`
	Columns   []string    `json:"columns"`
	Values    [][]float64 `json:"values"`
}

// Oneway computes a single-set windowed statistic (diversity or
// Tajima's D) over the active sample sets.
func (ds *DataStore) Oneway(statistic string, windowSize float64) (*StatResult, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := core.ComputeStatKey(statistic, map[string]any{"window_size": windowSize}, ds.selectionHashLocked())
	if cached, ok := ds.cache[key]; ok {
		ds.log.Debug("cache hit for %s", statistic)
		return cached.(*StatResult), nil
	}

	sets, ids := ds.activeSampleSetsLocked()
	if len(ids) < 1 {
		return nil, errors.InvalidInput("no active sample sets")
	}
	nodeSets, columns := ds.orderedSetsLocked(sets, ids)

	windows, err := treeseq.MakeWindows(windowSize, ds.ts.SequenceLength())
	if err != nil {
		return nil, err
	}

	var values [][]float64
	switch statistic {
	case treeseq.StatDiversity:
		values, err = ds.ts.Diversity(nodeSets, windows)
	case treeseq.StatTajimasD:
		values, err = ds.ts.TajimasD(nodeSets, windows)
	default:
		return nil, errors.InvalidInput("unknown oneway statistic %q", statistic)
	}
	if err != nil {
		return nil, err
	}

	result := &StatResult{Statistic: statistic, Windows: windows, Columns: columns, Values: values}
	ds.cache[key] = result
	return result, nil
}

// Multiway computes a pairwise windowed statistic (Fst or divergence)
// for the given index pairs over the active sample sets. Pair indexes
// refer to the active sets in ascending id order. Nil pairs means all
// distinct pairs. Pairs are swept concurrently.
func (ds *DataStore) Multiway(statistic string, windowSize float64, pairs [][2]int) (*StatResult, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := core.ComputeStatKey(statistic, map[string]any{
		"window_size": windowSize,
		"pairs":       fmt.Sprintf("%v", pairs),
	}, ds.selectionHashLocked())
	if cached, ok := ds.cache[key]; ok {
		ds.log.Debug("cache hit for %s", statistic)
		return cached.(*StatResult), nil
	}

	sets, ids := ds.activeSampleSetsLocked()
	if len(ids) < 2 {
		return nil, errors.InvalidInput("need at least two active sample sets, got %d", len(ids))
	}
	nodeSets, names := ds.orderedSetsLocked(sets, ids)

	if pairs == nil {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	for _, pair := range pairs {
		if pair[0] < 0 || pair[0] >= len(ids) || pair[1] < 0 || pair[1] >= len(ids) {
			return nil, errors.InvalidInput("pair %v references inactive sample set", pair)
		}
	}

	windows, err := treeseq.MakeWindows(windowSize, ds.ts.SequenceLength())
	if err != nil {
		return nil, err
	}

	var compute func([][]core.NodeID, [][2]int, []float64) ([][]float64, error)
	switch statistic {
	case treeseq.StatFst:
		compute = ds.ts.Fst
	case treeseq.StatDivergence:
		compute = ds.ts.Divergence
	default:
		return nil, errors.InvalidInput("unknown multiway statistic %q", statistic)
	}

	// One sweep per pair, merged column-wise afterwards.
	perPair := make([][][]float64, len(pairs))
	var g errgroup.Group
	for p := range pairs {
		p := p
		g.Go(func() error {
			values, err := compute(nodeSets, [][2]int{pairs[p]}, windows)
			if err != nil {
				return err
			}
			perPair[p] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make([][]float64, len(windows)-1)
	columns := make([]string, len(pairs))
	for p, pair := range pairs {
		columns[p] = fmt.Sprintf("%s-%s", names[pair[0]], names[pair[1]])
	}
	for w := range values {
		values[w] = make([]float64, len(pairs))
		for p := range pairs {
			values[w][p] = perPair[p][w][0]
		}
	}

	result := &StatResult{Statistic: statistic, Windows: windows, Columns: columns, Values: values}
	ds.cache[key] = result
	return result, nil
}

// GNNResult is the whole-sequence nearest neighbour matrix averaged
// per focal sample set: Values[i][j] is the mean proportion of set i
// haplotypes whose nearest neighbours fall in set j.
type GNNResult struct {
	SetNames []string    `json:"set_names"`
	Values   [][]float64 `json:"values"`
}

// GNNMatrix computes the population structure matrix over the active
// sample sets.
func (ds *DataStore) GNNMatrix() (*GNNResult, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := core.ComputeStatKey("gnn", nil, ds.selectionHashLocked())
	if cached, ok := ds.cache[key]; ok {
		ds.log.Debug("cache hit for gnn")
		return cached.(*GNNResult), nil
	}

	sets, ids := ds.activeSampleSetsLocked()
	if len(ids) < 2 {
		return nil, errors.InvalidInput("need at least two active sample sets, got %d", len(ids))
	}
	nodeSets, names := ds.orderedSetsLocked(sets, ids)

	var focal []core.NodeID
	groups := make([]int, 0)
	for k, set := range nodeSets {
		focal = append(focal, set...)
		for range set {
			groups = append(groups, k)
		}
	}

	proportions, err := ds.ts.GNN(focal, nodeSets)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, len(ids))
	counts := make([]int, len(ids))
	for i := range values {
		values[i] = make([]float64, len(ids))
	}
	for row, group := range groups {
		counts[group]++
		for j := range proportions[row] {
			values[group][j] += proportions[row][j]
		}
	}
	for i := range values {
		if counts[i] == 0 {
			continue
		}
		for j := range values[i] {
			values[i][j] /= float64(counts[i])
		}
	}

	result := &GNNResult{SetNames: names, Values: values}
	ds.cache[key] = result
	return result, nil
}

// HaplotypeGNNResult holds windowed nearest neighbour proportions for
// each haplotype (sample node) of one focal individual.
type HaplotypeGNNResult struct {
	Individual core.IndividualID `json:"individual"`
	Windows    []float64         `json:"windows"`
	SetNames   []string          `json:"set_names"`
	// Haplotypes[h][w][k]: haplotype h, window w, reference set k.
	Haplotypes [][][]float64 `json:"haplotypes"`
	Nodes      []core.NodeID `json:"nodes"`
}

// HaplotypeGNN computes windowed nearest neighbour proportions for
// each haplotype of a selected focal individual.
func (ds *DataStore) HaplotypeGNN(id core.IndividualID, windowSize float64) (*HaplotypeGNNResult, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if int(id) < 0 || int(id) >= len(ds.individuals) {
		return nil, errors.NotFound("individual %d", id)
	}
	ind := ds.individuals[id]
	if !ind.Selected {
		return nil, errors.InvalidInput("individual %d is not selected", id)
	}

	key := core.ComputeStatKey("haplotype_gnn", map[string]any{
		"individual":  int(id),
		"window_size": windowSize,
	}, ds.selectionHashLocked())
	if cached, ok := ds.cache[key]; ok {
		ds.log.Debug("cache hit for haplotype gnn")
		return cached.(*HaplotypeGNNResult), nil
	}

	sets, ids := ds.activeSampleSetsLocked()
	if len(ids) < 1 {
		return nil, errors.InvalidInput("no active sample sets")
	}
	nodeSets, names := ds.orderedSetsLocked(sets, ids)

	windows, err := treeseq.MakeWindows(windowSize, ds.ts.SequenceLength())
	if err != nil {
		return nil, err
	}

	haplotypes := make([][][]float64, len(ind.Nodes))
	for h, node := range ind.Nodes {
		windowed, err := ds.ts.WindowedGNN([]core.NodeID{node}, nodeSets, windows)
		if err != nil {
			return nil, err
		}
		haplotypes[h] = make([][]float64, len(windowed))
		for w := range windowed {
			haplotypes[h][w] = windowed[w][0]
		}
	}

	result := &HaplotypeGNNResult{
		Individual: id,
		Windows:    windows,
		SetNames:   names,
		Haplotypes: haplotypes,
		Nodes:      ind.Nodes,
	}
	ds.cache[key] = result
	return result, nil
}

// orderedSetsLocked lays the active sets out in ascending id order and
// resolves their display names.
func (ds *DataStore) orderedSetsLocked(sets map[core.SampleSetID][]core.NodeID, ids []core.SampleSetID) ([][]core.NodeID, []string) {
	nodeSets := make([][]core.NodeID, len(ids))
	names := make([]string, len(ids))
	for k, id := range ids {
		nodeSets[k] = sets[id]
		if int(id) >= 0 && int(id) < len(ds.sampleSets) {
			names[k] = ds.sampleSets[id].Name
		} else {
			names[k] = fmt.Sprintf("SampleSet-%d", id)
		}
	}
	return nodeSets, names
}
