package app

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SeriesSummary describes one per-tree or per-window series.
type SeriesSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	StdDev float64 `json:"std_dev"`
}

// Overview aggregates the dataset summaries shown on the landing page.
type Overview struct {
	Info           Info          `json:"info"`
	TreeSpans      SeriesSummary `json:"tree_spans"`
	SitesPerTree   SeriesSummary `json:"sites_per_tree"`
	MaxRootTime    float64       `json:"max_root_time"`
	SelectedCount  int           `json:"selected_count"`
	GeolocatedPct  float64       `json:"geolocated_pct"`
	MutationsPerKb float64       `json:"mutations_per_kb"`
}

// Overview computes descriptive statistics of the loaded dataset.
func (ds *DataStore) Overview() Overview {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var spans []float64
	var sitesPerTree []float64
	siteID := 0
	positions := ds.ts.Tables().Sites
	for it := ds.ts.EdgeDiffs(); it.Next(); {
		diff := it.Diff()
		spans = append(spans, diff.Right-diff.Left)
		count := 0.0
		for siteID < len(positions) && positions[siteID].Position < diff.Right {
			count++
			siteID++
		}
		sitesPerTree = append(sitesPerTree, count)
	}

	selected := 0
	geolocated := 0
	for i := range ds.individuals {
		if ds.individuals[i].Selected {
			selected++
		}
		if ds.individuals[i].HasLocation() {
			geolocated++
		}
	}
	geoPct := 0.0
	if len(ds.individuals) > 0 {
		geoPct = 100 * float64(geolocated) / float64(len(ds.individuals))
	}

	return Overview{
		Info:           ds.infoLocked(),
		TreeSpans:      summarize(spans),
		SitesPerTree:   summarize(sitesPerTree),
		MaxRootTime:    ds.ts.MaxRootTime(),
		SelectedCount:  selected,
		GeolocatedPct:  geoPct,
		MutationsPerKb: 1000 * float64(ds.ts.NumMutations()) / ds.ts.SequenceLength(),
	}
}

func summarize(series []float64) SeriesSummary {
	if len(series) == 0 {
		return SeriesSummary{}
	}
	min, _ := stats.Min(series)
	max, _ := stats.Max(series)
	median, _ := stats.Median(series)
	quartiles, err := stats.Quartile(series)
	q1, q3 := median, median
	if err == nil {
		q1, q3 = quartiles.Q1, quartiles.Q3
	}
	mean, variance := stat.MeanVariance(series, nil)
	if math.IsNaN(variance) {
		variance = 0
	}
	return SeriesSummary{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		Q1:     q1,
		Q3:     q3,
		StdDev: math.Sqrt(variance),
	}
}
