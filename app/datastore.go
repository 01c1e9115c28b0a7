package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tseda/domain/core"
	"tseda/domain/dataset"
	"tseda/domain/treeseq"
	"tseda/internal"
	"tseda/internal/errors"
	"tseda/ports"
)

// DataStore holds the loaded tree sequence plus the session state the
// dashboard edits: individual selection, sample set assignments, and
// the sample sets themselves. Statistic results are cached per
// selection state.
type DataStore struct {
	mu sync.RWMutex

	ts          *treeseq.TreeSequence
	individuals []dataset.Individual
	sampleSets  []dataset.SampleSet
	source      string

	cache   map[core.StatKey]interface{}
	session core.SessionID
	log     *internal.Logger
}

// LoadDataStore reads a preprocessed dataset from the store and builds
// the session state.
func LoadDataStore(ctx context.Context, store ports.TreeStore, logger *internal.Logger) (*DataStore, error) {
	tables, err := store.LoadTables(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := treeseq.New(*tables)
	if err != nil {
		return nil, errors.Wrap(err, "validating stored tables")
	}
	sets, err := store.LoadSampleSets(ctx)
	if err != nil {
		return nil, err
	}
	source, err := store.GetMeta(ctx, "source")
	if err != nil {
		source = ""
	}

	ds := &DataStore{
		ts:         ts,
		sampleSets: sets,
		source:     source,
		cache:      make(map[core.StatKey]interface{}),
		session:    core.NewSessionID(),
		log:        logger.Component("DataStore"),
	}
	ds.initIndividuals()

	ds.log.Info("loaded %s: %d individuals, %d sample sets, %d trees, session %s",
		source, len(ds.individuals), len(sets), ts.NumTrees(), ds.session)
	return ds, nil
}

// initIndividuals builds the editable individuals from the tables. An
// individual's population comes from its nodes, and its initial sample
// set is that population.
func (ds *DataStore) initIndividuals() {
	ds.individuals = make([]dataset.Individual, 0, ds.ts.NumIndividuals())
	for i := 0; i < ds.ts.NumIndividuals(); i++ {
		id := core.IndividualID(i)
		row := ds.ts.Individual(id)
		nodes := ds.ts.IndividualNodes(id)
		population := core.PopulationID(core.NullID)
		if len(nodes) > 0 {
			population = ds.ts.Node(nodes[0]).Population
		}
		ds.individuals = append(ds.individuals,
			dataset.NewIndividual(id, row.Flags, row.Metadata, population, nodes))
	}
}

// Session returns the session identifier.
func (ds *DataStore) Session() core.SessionID {
	return ds.session
}

// TreeSequence returns the loaded model.
func (ds *DataStore) TreeSequence() *treeseq.TreeSequence {
	return ds.ts
}

// Info describes the loaded dataset.
type Info struct {
	Source         string  `json:"source"`
	SequenceLength float64 `json:"sequence_length"`
	TimeUnits      string  `json:"time_units"`
	NumNodes       int     `json:"num_nodes"`
	NumEdges       int     `json:"num_edges"`
	NumSites       int     `json:"num_sites"`
	NumMutations   int     `json:"num_mutations"`
	NumIndividuals int     `json:"num_individuals"`
	NumSamples     int     `json:"num_samples"`
	NumTrees       int     `json:"num_trees"`
	NumSampleSets  int     `json:"num_sample_sets"`
}

// Info returns summary counts for the loaded dataset.
func (ds *DataStore) Info() Info {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.infoLocked()
}

func (ds *DataStore) infoLocked() Info {
	return Info{
		Source:         ds.source,
		SequenceLength: ds.ts.SequenceLength(),
		TimeUnits:      ds.ts.TimeUnits(),
		NumNodes:       ds.ts.NumNodes(),
		NumEdges:       ds.ts.NumEdges(),
		NumSites:       ds.ts.NumSites(),
		NumMutations:   ds.ts.NumMutations(),
		NumIndividuals: ds.ts.NumIndividuals(),
		NumSamples:     ds.ts.NumSamples(),
		NumTrees:       ds.ts.NumTrees(),
		NumSampleSets:  len(ds.sampleSets),
	}
}

// =========================================================================
// Individuals
// =========================================================================

// Individuals returns a copy of the individuals table.
func (ds *DataStore) Individuals() []dataset.Individual {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]dataset.Individual, len(ds.individuals))
	copy(out, ds.individuals)
	return out
}

// Individual returns one individual.
func (ds *DataStore) Individual(id core.IndividualID) (dataset.Individual, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(ds.individuals) {
		return dataset.Individual{}, errors.NotFound("individual %d", id)
	}
	return ds.individuals[id], nil
}

// ToggleIndividual flips an individual's selection. The change covers
// all the individual's sample nodes.
func (ds *DataStore) ToggleIndividual(id core.IndividualID) error {
	return ds.editIndividual(id, func(ind *dataset.Individual) { ind.Toggle() })
}

// SelectIndividual includes an individual in analyses.
func (ds *DataStore) SelectIndividual(id core.IndividualID) error {
	return ds.editIndividual(id, func(ind *dataset.Individual) { ind.Select() })
}

// DeselectIndividual excludes an individual from analyses.
func (ds *DataStore) DeselectIndividual(id core.IndividualID) error {
	return ds.editIndividual(id, func(ind *dataset.Individual) { ind.Deselect() })
}

// UpdateIndividualSampleSet reassigns an individual to a sample set.
func (ds *DataStore) UpdateIndividualSampleSet(id core.IndividualID, ssid core.SampleSetID) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if int(ssid) < 0 || int(ssid) >= len(ds.sampleSets) {
		return errors.InvalidInput("sample set %d does not exist", ssid)
	}
	if int(id) < 0 || int(id) >= len(ds.individuals) {
		return errors.NotFound("individual %d", id)
	}
	ds.individuals[id].SampleSet = ssid
	return nil
}

// BatchUpdateSampleSet reassigns every individual of a population to
// the given sample set. Returns the number of reassigned individuals.
func (ds *DataStore) BatchUpdateSampleSet(popFrom core.PopulationID, ssTo core.SampleSetID) (int, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if int(ssTo) < 0 || int(ssTo) >= len(ds.sampleSets) {
		return 0, errors.InvalidInput("sample set %d does not exist", ssTo)
	}
	count := 0
	for i := range ds.individuals {
		if ds.individuals[i].Population == popFrom {
			ds.individuals[i].SampleSet = ssTo
			count++
		}
	}
	return count, nil
}

// ToggleSampleSet flips the selection of every individual currently
// assigned to the sample set.
func (ds *DataStore) ToggleSampleSet(ssid core.SampleSetID) (int, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if int(ssid) < 0 || int(ssid) >= len(ds.sampleSets) {
		return 0, errors.InvalidInput("sample set %d does not exist", ssid)
	}
	count := 0
	for i := range ds.individuals {
		if ds.individuals[i].SampleSet == ssid {
			ds.individuals[i].Toggle()
			count++
		}
	}
	return count, nil
}

func (ds *DataStore) editIndividual(id core.IndividualID, edit func(*dataset.Individual)) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if int(id) < 0 || int(id) >= len(ds.individuals) {
		return errors.NotFound("individual %d", id)
	}
	edit(&ds.individuals[id])
	return nil
}

// SelectedGeolocated returns the selected individuals carrying
// geolocation coordinates, for map output.
func (ds *DataStore) SelectedGeolocated() []dataset.Individual {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	var out []dataset.Individual
	for i := range ds.individuals {
		if ds.individuals[i].Selected && ds.individuals[i].HasLocation() {
			out = append(out, ds.individuals[i])
		}
	}
	return out
}

// =========================================================================
// Sample sets
// =========================================================================

// SampleSets returns a copy of the sample set table.
func (ds *DataStore) SampleSets() []dataset.SampleSet {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]dataset.SampleSet, len(ds.sampleSets))
	copy(out, ds.sampleSets)
	return out
}

// SampleSet returns one sample set.
func (ds *DataStore) SampleSet(id core.SampleSetID) (dataset.SampleSet, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(ds.sampleSets) {
		return dataset.SampleSet{}, errors.NotFound("sample set %d", id)
	}
	return ds.sampleSets[id], nil
}

// CreateSampleSet appends a new sample set. Ids stay dense and
// sequential, so the new id is the current table size.
func (ds *DataStore) CreateSampleSet(name string) (dataset.SampleSet, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ss := dataset.NewSampleSet(core.SampleSetID(len(ds.sampleSets)), name)
	ds.sampleSets = append(ds.sampleSets, ss)
	ds.log.Info("created sample set %d (%s)", ss.ID, ss.Name)
	return ss, nil
}

// UpdateSampleSet edits a sample set's name and/or color. Ids are
// immutable, including for population-derived sets.
func (ds *DataStore) UpdateSampleSet(id core.SampleSetID, name, color *string) (dataset.SampleSet, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if int(id) < 0 || int(id) >= len(ds.sampleSets) {
		return dataset.SampleSet{}, errors.NotFound("sample set %d", id)
	}
	if name != nil {
		if *name == "" {
			return dataset.SampleSet{}, errors.InvalidInput("sample set name must not be empty")
		}
		ds.sampleSets[id].Name = *name
	}
	if color != nil {
		ds.sampleSets[id].Color = *color
	}
	return ds.sampleSets[id], nil
}

// ActiveSampleSets returns, per sample set id, the sample nodes of the
// selected individuals assigned to it, along with the ids in ascending
// order. Sets with no selected individuals are absent.
func (ds *DataStore) ActiveSampleSets() (map[core.SampleSetID][]core.NodeID, []core.SampleSetID) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.activeSampleSetsLocked()
}

func (ds *DataStore) activeSampleSetsLocked() (map[core.SampleSetID][]core.NodeID, []core.SampleSetID) {
	sets := make(map[core.SampleSetID][]core.NodeID)
	for i := range ds.individuals {
		ind := &ds.individuals[i]
		if !ind.Selected {
			continue
		}
		sets[ind.SampleSet] = append(sets[ind.SampleSet], ind.Nodes...)
	}
	ids := make([]core.SampleSetID, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return sets, ids
}

func (ds *DataStore) selectionHashLocked() core.SelectionHash {
	entries := make([]string, len(ds.individuals))
	for i := range ds.individuals {
		ind := &ds.individuals[i]
		entries[i] = fmt.Sprintf("%d:%d:%t", ind.ID, ind.SampleSet, ind.Selected)
	}
	return core.ComputeSelectionHash(entries)
}
