package app

import (
	"tseda/domain/treeseq"
	"tseda/ports"
)

// BuildExport assembles the workbook bundle: the individuals and
// sample set tables plus, when enough sets are active, the default
// windowed statistic sheets.
func (ds *DataStore) BuildExport(windowSize float64) ports.ExportBundle {
	bundle := ports.ExportBundle{
		Source:      ds.source,
		Individuals: ds.Individuals(),
		SampleSets:  ds.SampleSets(),
	}

	for _, statistic := range []string{treeseq.StatDiversity, treeseq.StatTajimasD} {
		result, err := ds.Oneway(statistic, windowSize)
		if err != nil {
			ds.log.Warn("export: skipping %s: %v", statistic, err)
			continue
		}
		bundle.Sheets = append(bundle.Sheets, ports.StatSheet{
			Name:    result.Statistic,
			Windows: result.Windows,
			Columns: result.Columns,
			Values:  result.Values,
		})
	}
	for _, statistic := range []string{treeseq.StatFst, treeseq.StatDivergence} {
		result, err := ds.Multiway(statistic, windowSize, nil)
		if err != nil {
			ds.log.Warn("export: skipping %s: %v", statistic, err)
			continue
		}
		bundle.Sheets = append(bundle.Sheets, ports.StatSheet{
			Name:    result.Statistic,
			Windows: result.Windows,
			Columns: result.Columns,
			Values:  result.Values,
		})
	}
	return bundle
}
