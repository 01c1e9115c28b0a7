package ports

import (
	"io"

	"tseda/domain/treeseq"
)

// SequenceReader decodes a tree sequence dump into tables.
type SequenceReader interface {
	ReadTables(r io.Reader) (*treeseq.Tables, error)
	ReadFile(path string) (*treeseq.Tables, error)
}
