package dataset

import (
	"encoding/json"
	"testing"

	"tseda/domain/core"
)

func TestNewIndividual_MetadataParsing(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		wantName string
		wantLon  *float64
		wantLat  *float64
	}{
		{
			name:     "canonical keys",
			metadata: `{"name": "tsk_0", "longitude": 17.6, "latitude": 59.9}`,
			wantName: "tsk_0",
			wantLon:  ptr(17.6),
			wantLat:  ptr(59.9),
		},
		{
			name:     "alias keys",
			metadata: `{"SM": "sample-1", "lng": -122.4, "lat": 37.8}`,
			wantName: "sample-1",
			wantLon:  ptr(-122.4),
			wantLat:  ptr(37.8),
		},
		{
			name:     "capitalised keys",
			metadata: `{"Name": "X", "Longitude": 1, "Latitude": 2}`,
			wantName: "X",
			wantLon:  ptr(1.0),
			wantLat:  ptr(2.0),
		},
		{
			name:     "string coordinates",
			metadata: `{"longitude": "17.6", "latitude": "59.9"}`,
			wantLon:  ptr(17.6),
			wantLat:  ptr(59.9),
		},
		{
			name:     "missing coordinates",
			metadata: `{"name": "dry"}`,
			wantName: "dry",
		},
		{
			name:     "invalid json",
			metadata: `not json`,
		},
		{
			name: "empty metadata",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ind := NewIndividual(3, 0, json.RawMessage(tc.metadata), 1, []core.NodeID{6, 7})

			if ind.Name != tc.wantName {
				t.Errorf("Expected name %q, got %q", tc.wantName, ind.Name)
			}
			checkCoord(t, "longitude", ind.Longitude, tc.wantLon)
			checkCoord(t, "latitude", ind.Latitude, tc.wantLat)
			if ind.HasLocation() != (tc.wantLon != nil && tc.wantLat != nil) {
				t.Errorf("HasLocation mismatch for %q", tc.metadata)
			}
		})
	}
}

func TestNewIndividual_Defaults(t *testing.T) {
	ind := NewIndividual(0, 0, nil, 2, []core.NodeID{0, 1})

	if !ind.Selected {
		t.Error("Expected new individuals to start selected")
	}
	if ind.SampleSet != 2 {
		t.Errorf("Expected sample set to start as population 2, got %d", ind.SampleSet)
	}
	if len(ind.Nodes) != 2 {
		t.Errorf("Expected 2 nodes, got %d", len(ind.Nodes))
	}
}

func TestIndividual_SelectionToggling(t *testing.T) {
	ind := NewIndividual(0, 0, nil, 0, nil)

	ind.Toggle()
	if ind.Selected {
		t.Error("Expected toggle to deselect")
	}
	ind.Toggle()
	if !ind.Selected {
		t.Error("Expected toggle to reselect")
	}
	ind.Deselect()
	if ind.Selected {
		t.Error("Expected deselect to clear selection")
	}
	ind.Select()
	if !ind.Selected {
		t.Error("Expected select to set selection")
	}
}

func TestNewSampleSet(t *testing.T) {
	ss := NewSampleSet(2, "ancients")
	if ss.Name != "ancients" {
		t.Errorf("Expected name 'ancients', got %q", ss.Name)
	}
	if ss.Color != DefaultPalette[2] {
		t.Errorf("Expected palette color %q, got %q", DefaultPalette[2], ss.Color)
	}
	if ss.Predefined {
		t.Error("Expected user-created set to not be predefined")
	}

	unnamed := NewSampleSet(5, "")
	if unnamed.Name != "SampleSet-5" {
		t.Errorf("Expected fallback name, got %q", unnamed.Name)
	}
}

func TestNewPopulationSampleSet(t *testing.T) {
	ss := NewPopulationSampleSet(0, json.RawMessage(`{"population": "CEU"}`))
	if ss.Name != "CEU" {
		t.Errorf("Expected population name, got %q", ss.Name)
	}
	if !ss.Predefined {
		t.Error("Expected population-derived set to be predefined")
	}

	anon := NewPopulationSampleSet(1, nil)
	if anon.Name != "SampleSet-1" {
		t.Errorf("Expected fallback name, got %q", anon.Name)
	}
}

func TestColorFor_Cycles(t *testing.T) {
	if ColorFor(0) != ColorFor(len(DefaultPalette)) {
		t.Error("Expected the palette to cycle")
	}
	if ColorFor(3) == ColorFor(4) {
		t.Error("Expected adjacent ids to get distinct colors")
	}
}

func TestSampleSetCSSClass(t *testing.T) {
	ss := NewSampleSet(7, "x")
	if ss.CSSClass() != "p7" {
		t.Errorf("Expected css class p7, got %q", ss.CSSClass())
	}
}

func ptr(v float64) *float64 { return &v }

func checkCoord(t *testing.T, label string, got, want *float64) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("Expected no %s, got %g", label, *got)
	case want != nil && got == nil:
		t.Errorf("Expected %s %g, got none", label, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("Expected %s %g, got %g", label, *want, *got)
	}
}
