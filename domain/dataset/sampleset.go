package dataset

import (
	"encoding/json"
	"fmt"

	"tseda/domain/core"
)

// SampleSet groups sample nodes for statistics. Population-derived
// sets keep their id fixed; name and color stay editable.
type SampleSet struct {
	ID         core.SampleSetID `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Color      string           `json:"color" db:"color"`
	Predefined bool             `json:"predefined" db:"predefined"`
}

// NewSampleSet builds a user-created sample set with the default
// palette color for its id.
func NewSampleSet(id core.SampleSetID, name string) SampleSet {
	ss := SampleSet{ID: id, Name: name, Color: ColorFor(int(id))}
	if ss.Name == "" {
		ss.Name = fmt.Sprintf("SampleSet-%d", id)
	}
	return ss
}

// NewPopulationSampleSet builds the predefined sample set mirroring a
// population, naming it from the population metadata when possible.
func NewPopulationSampleSet(id core.SampleSetID, metadata json.RawMessage) SampleSet {
	ss := SampleSet{ID: id, Color: ColorFor(int(id)), Predefined: true}
	if name, ok := metaString(metadata, popNameKeys); ok && name != "" {
		ss.Name = name
	} else {
		ss.Name = fmt.Sprintf("SampleSet-%d", id)
	}
	return ss
}

// CSSClass returns the css class attached to sample nodes of this set
// in tree renderings.
func (ss SampleSet) CSSClass() string {
	return fmt.Sprintf("p%d", ss.ID)
}
