package tszip

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"strings"
	"testing"

	"tseda/domain/core"
	"tseda/domain/treeseq"
)

func encodeDump(t *testing.T, tables treeseq.Tables) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(tables); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	return buf.Bytes()
}

func TestReadTables(t *testing.T) {
	tables := treeseq.Tables{
		SequenceLength: 100,
		TimeUnits:      "uncalibrated",
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Population: core.NullID, Individual: 0},
			{Time: 1, Population: core.NullID, Individual: core.NullID},
		},
		Edges: []treeseq.Edge{
			{Left: 0, Right: 100, Parent: 1, Child: 0},
		},
		Individuals: []treeseq.IndividualRow{
			{Metadata: json.RawMessage(`{"name": "tsk_0"}`)},
		},
		Sites: []treeseq.Site{{Position: 10, AncestralState: "A"}},
	}

	got, err := NewReader().ReadTables(bytes.NewReader(encodeDump(t, tables)))
	if err != nil {
		t.Fatalf("ReadTables failed: %v", err)
	}

	if got.SequenceLength != 100 {
		t.Errorf("Expected sequence length 100, got %g", got.SequenceLength)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 || len(got.Sites) != 1 {
		t.Errorf("Table sizes do not match: %d nodes, %d edges, %d sites",
			len(got.Nodes), len(got.Edges), len(got.Sites))
	}
	if !got.Nodes[0].IsSample() {
		t.Error("Expected node 0 to be a sample")
	}
	// Encoding compacts raw metadata, so compare compacted forms.
	var want bytes.Buffer
	if err := json.Compact(&want, []byte(`{"name": "tsk_0"}`)); err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if string(got.Individuals[0].Metadata) != want.String() {
		t.Errorf("Metadata did not round-trip: %s", got.Individuals[0].Metadata)
	}
}

func TestReadTables_NotGzip(t *testing.T) {
	if _, err := NewReader().ReadTables(strings.NewReader("plain text")); err == nil {
		t.Error("Expected error for uncompressed input")
	}
}

func TestReadTables_BadJSON(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("{broken"))
	gz.Close()

	if _, err := NewReader().ReadTables(&buf); err == nil {
		t.Error("Expected error for malformed json")
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := NewReader().ReadFile("/nonexistent/file.trees.tsz"); err == nil {
		t.Error("Expected error for missing file")
	}
}
