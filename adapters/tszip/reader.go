// Package tszip reads compressed tree-sequence dumps: a gzip stream
// wrapping a JSON encoding of the table collection.
package tszip

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"

	"tseda/domain/treeseq"
	"tseda/internal/errors"
	"tseda/ports"
)

type reader struct{}

// NewReader creates a dump reader.
func NewReader() ports.SequenceReader {
	return &reader{}
}

// ReadTables decodes a gzip-compressed JSON table dump.
func (rd *reader) ReadTables(r io.Reader) (*treeseq.Tables, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "input is not gzip compressed")
	}
	defer gz.Close()

	var tables treeseq.Tables
	dec := json.NewDecoder(gz)
	if err := dec.Decode(&tables); err != nil {
		return nil, errors.Wrap(err, "decoding table dump")
	}
	return &tables, nil
}

// ReadFile decodes a dump file.
func (rd *reader) ReadFile(path string) (*treeseq.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return rd.ReadTables(f)
}
