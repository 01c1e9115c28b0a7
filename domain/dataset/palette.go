package dataset

// DefaultPalette is a small colorblind-friendly palette used to color
// sample sets. Sets cycle through it by id.
var DefaultPalette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072",
	"#80b1d3", "#fdb462", "#b3de69", "#fccde5",
	"#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// ColorFor returns the default color for a sample set id.
func ColorFor(id int) string {
	if id < 0 {
		id = -id
	}
	return DefaultPalette[id%len(DefaultPalette)]
}
