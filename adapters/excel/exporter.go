// Package excel writes dataset exports as xlsx workbooks.
package excel

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"tseda/internal/errors"
	"tseda/ports"
)

type exporter struct{}

// NewExporter creates a workbook exporter.
func NewExporter() ports.TableExporter {
	return &exporter{}
}

// Export writes one sheet of individuals, one of sample sets, plus one
// sheet per exported statistic.
func (e *exporter) Export(w io.Writer, bundle ports.ExportBundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeIndividuals(f, bundle); err != nil {
		return err
	}
	if err := e.writeSampleSets(f, bundle); err != nil {
		return err
	}
	for _, sheet := range bundle.Sheets {
		if err := e.writeStatSheet(f, sheet); err != nil {
			return err
		}
	}

	// Drop the default sheet so the workbook opens on individuals.
	f.DeleteSheet("Sheet1")
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func (e *exporter) writeIndividuals(f *excelize.File, bundle ports.ExportBundle) error {
	const sheet = "Individuals"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "creating individuals sheet")
	}

	header := []interface{}{"id", "name", "population", "sample_set_id", "selected", "longitude", "latitude"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing individuals header")
	}
	for i, ind := range bundle.Individuals {
		row := []interface{}{
			int(ind.ID), ind.Name, int(ind.Population), int(ind.SampleSet), ind.Selected,
			coord(ind.Longitude), coord(ind.Latitude),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing individual row %d", i)
		}
	}
	return nil
}

func (e *exporter) writeSampleSets(f *excelize.File, bundle ports.ExportBundle) error {
	const sheet = "SampleSets"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "creating sample sets sheet")
	}

	header := []interface{}{"id", "name", "color", "predefined"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing sample sets header")
	}
	for i, ss := range bundle.SampleSets {
		row := []interface{}{int(ss.ID), ss.Name, ss.Color, ss.Predefined}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing sample set row %d", i)
		}
	}
	return nil
}

func (e *exporter) writeStatSheet(f *excelize.File, sheet ports.StatSheet) error {
	if _, err := f.NewSheet(sheet.Name); err != nil {
		return errors.Wrapf(err, "creating sheet %s", sheet.Name)
	}

	header := []interface{}{"window_start", "window_end"}
	for _, col := range sheet.Columns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return errors.Wrapf(err, "writing %s header", sheet.Name)
	}

	for w := 0; w+1 < len(sheet.Windows); w++ {
		row := []interface{}{sheet.Windows[w], sheet.Windows[w+1]}
		for _, v := range sheet.Values[w] {
			if math.IsNaN(v) {
				row = append(row, nil)
			} else {
				row = append(row, v)
			}
		}
		cell := fmt.Sprintf("A%d", w+2)
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet.Name, w)
		}
	}
	return nil
}

func coord(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
