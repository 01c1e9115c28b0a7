package ui

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Sidebar help texts, rendered from markdown per page.
const (
	overviewHelp = `Summary of the loaded tree sequence: table sizes,
tree span and site distributions, and how many individuals are
currently included in analyses.`

	individualsHelp = `Individuals table with the columns relevant for
modifying plots. The **population** column is immutable and displays
the population id assigned during inference. The **sample set**
column is editable: reassign an individual to any sample set. The
**selected** flag includes or excludes an individual from all
analyses. Individuals lacking geolocation coordinates are not shown
on the map.`

	sampleSetsHelp = `Create new sample sets and edit the name and
color of existing ones. Population-derived sets keep their id; new
sets get the next sequential id.`

	statsHelp = `Windowed statistics over the active sample sets.
*Diversity* and *Tajima's D* are computed per set; *Fst* and
*divergence* per pair of sets. Pick a window size in base pairs to
control resolution.`

	structureHelp = `Population structure from genealogical nearest
neighbours: each cell gives the mean proportion of a set's haplotypes
whose nearest neighbour falls in the other set, plus the pairwise Fst
matrix.`

	ignnHelp = `Genealogical nearest neighbour proportions of one
focal individual's haplotypes, windowed along the genome. The focal
individual must be selected.`

	mapHelp = `Geographic distribution of the selected, geolocated
individuals, colored by sample set.`

	treesHelp = `Marginal tree rendering. Navigate by tree index or
jump to the tree covering a genome position; sample symbols are
colored by sample set.`
)

// renderHelp converts sidebar markdown into sanitized-by-construction
// HTML (the source is compile-time constant).
func renderHelp(md string) template.HTML {
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}
