// Package app wires the domain model to the adapters: preprocessing
// dumps into .tseda files and serving the in-memory session state the
// dashboard edits.
package app

import (
	"context"
	"strings"
	"time"

	"tseda/adapters/sqlite"
	"tseda/domain/core"
	"tseda/domain/dataset"
	"tseda/domain/treeseq"
	"tseda/internal"
	"tseda/internal/errors"
	"tseda/ports"
)

// Preprocessor converts a tree-sequence dump into a .tseda file.
type Preprocessor struct {
	reader ports.SequenceReader
	log    *internal.Logger
}

// NewPreprocessor creates a preprocessor over a dump reader.
func NewPreprocessor(reader ports.SequenceReader, logger *internal.Logger) *Preprocessor {
	return &Preprocessor{reader: reader, log: logger.Component("Preprocess")}
}

// PreprocessResult summarizes what was written.
type PreprocessResult struct {
	OutputPath     string
	SequenceLength float64
	NumNodes       int
	NumEdges       int
	NumSites       int
	NumIndividuals int
	NumSampleSets  int
	NumTrees       int
}

// OutputPath derives the .tseda path for a dump: the .tsz suffix is
// replaced, so example.trees.tsz becomes example.trees.tseda.
func OutputPath(inPath string) string {
	if strings.HasSuffix(inPath, ".tsz") {
		return strings.TrimSuffix(inPath, ".tsz") + ".tseda"
	}
	return inPath + ".tseda"
}

// Run reads and validates the dump at inPath and writes the .tseda
// file at outPath. An empty outPath derives the output next to the
// input.
func (p *Preprocessor) Run(ctx context.Context, inPath, outPath string) (*PreprocessResult, error) {
	if outPath == "" {
		outPath = OutputPath(inPath)
	}
	p.log.Info("reading %s", inPath)

	tables, err := p.reader.ReadFile(inPath)
	if err != nil {
		return nil, err
	}
	ts, err := treeseq.New(*tables)
	if err != nil {
		return nil, errors.Wrap(err, "validating tree sequence")
	}

	// One predefined sample set per population, named from its
	// metadata when possible.
	sets := make([]dataset.SampleSet, 0, ts.NumPopulations())
	for i := 0; i < ts.NumPopulations(); i++ {
		pop := ts.Population(core.PopulationID(i))
		sets = append(sets, dataset.NewPopulationSampleSet(core.SampleSetID(i), pop.Metadata))
	}

	store, err := sqlite.Open(outPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.SaveTables(ctx, tables); err != nil {
		return nil, err
	}
	if err := store.SaveSampleSets(ctx, sets); err != nil {
		return nil, err
	}
	if err := store.SetMeta(ctx, sqlite.MetaSource, inPath); err != nil {
		return nil, err
	}
	if err := store.SetMeta(ctx, sqlite.MetaCreatedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}

	p.log.Info("wrote %s: %d nodes, %d edges, %d trees, %d sample sets",
		outPath, ts.NumNodes(), ts.NumEdges(), ts.NumTrees(), len(sets))

	return &PreprocessResult{
		OutputPath:     outPath,
		SequenceLength: ts.SequenceLength(),
		NumNodes:       ts.NumNodes(),
		NumEdges:       ts.NumEdges(),
		NumSites:       ts.NumSites(),
		NumIndividuals: ts.NumIndividuals(),
		NumSampleSets:  len(sets),
		NumTrees:       ts.NumTrees(),
	}, nil
}
