// Package dataset holds the editable session records layered over the
// immutable tree sequence tables: individuals with parsed metadata and
// selection state, and the sample sets they are grouped into.
package dataset

import (
	"encoding/json"

	"tseda/domain/core"
)

// Individual is one individual of the dataset, enriched with metadata
// parsed from its JSON blob and with the mutable analysis state the
// dashboard edits: selection and sample-set assignment.
type Individual struct {
	ID         core.IndividualID `json:"id" db:"id"`
	Flags      uint32            `json:"flags" db:"flags"`
	Metadata   json.RawMessage   `json:"metadata,omitempty" db:"metadata"`
	Population core.PopulationID `json:"population" db:"population"`
	Nodes      []core.NodeID     `json:"nodes" db:"-"`

	Name      string   `json:"name" db:"name"`
	Longitude *float64 `json:"longitude" db:"longitude"`
	Latitude  *float64 `json:"latitude" db:"latitude"`

	SampleSet core.SampleSetID `json:"sample_set_id" db:"sample_set_id"`
	Selected  bool             `json:"selected" db:"selected"`
}

// NewIndividual builds an Individual from table data. The sample set
// assignment starts as the individual's population and the individual
// starts selected.
func NewIndividual(id core.IndividualID, flags uint32, metadata json.RawMessage,
	population core.PopulationID, nodes []core.NodeID) Individual {

	ind := Individual{
		ID:         id,
		Flags:      flags,
		Metadata:   metadata,
		Population: population,
		Nodes:      nodes,
		SampleSet:  core.SampleSetID(population),
		Selected:   true,
	}
	if name, ok := metaString(metadata, nameKeys); ok {
		ind.Name = name
	}
	if lon, ok := metaFloat(metadata, longitudeKeys); ok {
		ind.Longitude = &lon
	}
	if lat, ok := metaFloat(metadata, latitudeKeys); ok {
		ind.Latitude = &lat
	}
	return ind
}

// HasLocation reports whether the individual carries geolocation
// coordinates. Individuals without them stay off the map.
func (ind *Individual) HasLocation() bool {
	return ind.Longitude != nil && ind.Latitude != nil
}

// Toggle flips the selection status.
func (ind *Individual) Toggle() {
	ind.Selected = !ind.Selected
}

// Select marks the individual as included in analyses.
func (ind *Individual) Select() {
	ind.Selected = true
}

// Deselect excludes the individual from analyses.
func (ind *Individual) Deselect() {
	ind.Selected = false
}
