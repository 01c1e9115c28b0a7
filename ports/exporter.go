package ports

import (
	"io"

	"tseda/domain/dataset"
)

// StatSheet is one windowed statistic laid out for export: one row per
// window, one value column per series.
type StatSheet struct {
	Name    string
	Windows []float64
	Columns []string
	Values  [][]float64
}

// ExportBundle collects everything a workbook export includes.
type ExportBundle struct {
	Source      string
	Individuals []dataset.Individual
	SampleSets  []dataset.SampleSet
	Sheets      []StatSheet
}

// TableExporter writes an export bundle to a workbook stream.
type TableExporter interface {
	Export(w io.Writer, bundle ExportBundle) error
}
