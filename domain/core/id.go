package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NullID marks a missing table reference, matching the -1 convention
// used throughout tree sequence tables. Untyped so it assigns directly
// to any of the id types below.
const NullID = -1

// Domain-specific identifier types. Tree sequence tables are indexed
// by dense zero-based integer ids, so these are int32 row indexes
// rather than opaque strings.
type (
	NodeID       int32
	IndividualID int32
	PopulationID int32
	SampleSetID  int32
	SiteID       int32
	TreeIndex    int32
)

// IsNull checks whether the id refers to a missing row.
func (id NodeID) IsNull() bool       { return int32(id) == NullID }
func (id IndividualID) IsNull() bool { return int32(id) == NullID }
func (id PopulationID) IsNull() bool { return int32(id) == NullID }
func (id SampleSetID) IsNull() bool  { return int32(id) == NullID }

// String conversions for domain ids
func (id NodeID) String() string       { return strconv.Itoa(int(id)) }
func (id IndividualID) String() string { return strconv.Itoa(int(id)) }
func (id PopulationID) String() string { return strconv.Itoa(int(id)) }
func (id SampleSetID) String() string  { return strconv.Itoa(int(id)) }
func (id SiteID) String() string       { return strconv.Itoa(int(id)) }
func (id TreeIndex) String() string    { return strconv.Itoa(int(id)) }

// ParseIndividualID parses a string into an IndividualID.
func ParseIndividualID(s string) (IndividualID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return IndividualID(NullID), fmt.Errorf("invalid individual id %q: %w", s, err)
	}
	if n < 0 {
		return IndividualID(NullID), fmt.Errorf("individual id must be non-negative, got %d", n)
	}
	return IndividualID(n), nil
}

// ParseSampleSetID parses a string into a SampleSetID.
func ParseSampleSetID(s string) (SampleSetID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return SampleSetID(NullID), fmt.Errorf("invalid sample set id %q: %w", s, err)
	}
	if n < 0 {
		return SampleSetID(NullID), fmt.Errorf("sample set id must be non-negative, got %d", n)
	}
	return SampleSetID(n), nil
}

// SessionID identifies one serve session, used in logs and the admin
// endpoint to correlate requests with a server run.
type SessionID string

// NewSessionID creates a new unique session identifier using UUID v7
// for time-ordered generation, falling back to v4.
func NewSessionID() SessionID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return SessionID(id.String())
}

// String returns the string representation.
func (id SessionID) String() string { return string(id) }
