package core

import "testing"

func TestParseIndividualID(t *testing.T) {
	cases := []struct {
		in      string
		want    IndividualID
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{" 7 ", 7, false},
		{"-1", IndividualID(NullID), true},
		{"abc", IndividualID(NullID), true},
		{"", IndividualID(NullID), true},
	}
	for _, tc := range cases {
		got, err := ParseIndividualID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseIndividualID(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIndividualID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseIndividualID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseSampleSetID(t *testing.T) {
	if got, err := ParseSampleSetID("3"); err != nil || got != 3 {
		t.Errorf("ParseSampleSetID(3) = %d, %v", got, err)
	}
	if _, err := ParseSampleSetID("-2"); err == nil {
		t.Error("negative sample set id should fail")
	}
}

func TestIsNull(t *testing.T) {
	if !NodeID(NullID).IsNull() {
		t.Error("NullID node should be null")
	}
	if NodeID(0).IsNull() {
		t.Error("node 0 should not be null")
	}
	if !IndividualID(-1).IsNull() {
		t.Error("individual -1 should be null")
	}
}

// Table rows assign NullID to differently typed id fields directly, so
// the constant must stay untyped.
func TestNullIDAssignsAcrossIDTypes(t *testing.T) {
	row := struct {
		Population PopulationID
		Individual IndividualID
		Node       NodeID
		SampleSet  SampleSetID
	}{
		Population: NullID,
		Individual: NullID,
		Node:       NullID,
		SampleSet:  NullID,
	}
	if !row.Population.IsNull() || !row.Individual.IsNull() ||
		!row.Node.IsNull() || !row.SampleSet.IsNull() {
		t.Error("NullID must mark every id type as null")
	}
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == "" || b == "" {
		t.Fatal("session ids must not be empty")
	}
	if a == b {
		t.Error("session ids must be unique")
	}
}
