package ports

import (
	"context"

	"tseda/domain/dataset"
	"tseda/domain/treeseq"
)

// TreeStore persists a preprocessed dataset: the tree sequence tables
// plus the sample sets derived from its populations.
type TreeStore interface {
	SaveTables(ctx context.Context, tables *treeseq.Tables) error
	LoadTables(ctx context.Context) (*treeseq.Tables, error)

	SaveSampleSets(ctx context.Context, sets []dataset.SampleSet) error
	LoadSampleSets(ctx context.Context) ([]dataset.SampleSet, error)

	// SetMeta/GetMeta store file-level key-value metadata (source
	// path, preprocessing timestamp, format version).
	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, error)

	Close() error
}
