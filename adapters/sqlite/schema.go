package sqlite

// Schema of a .tseda file. One database per dataset, written once by
// preprocess and read back by serve.
const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	id         INTEGER PRIMARY KEY,
	flags      INTEGER NOT NULL,
	time       REAL NOT NULL,
	population INTEGER NOT NULL,
	individual INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	id      INTEGER PRIMARY KEY,
	"left"  REAL NOT NULL,
	"right" REAL NOT NULL,
	parent  INTEGER NOT NULL,
	child   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS individuals (
	id       INTEGER PRIMARY KEY,
	flags    INTEGER NOT NULL,
	location TEXT,
	parents  TEXT,
	metadata TEXT
);

CREATE TABLE IF NOT EXISTS populations (
	id       INTEGER PRIMARY KEY,
	metadata TEXT
);

CREATE TABLE IF NOT EXISTS sites (
	id              INTEGER PRIMARY KEY,
	position        REAL NOT NULL,
	ancestral_state TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mutations (
	id            INTEGER PRIMARY KEY,
	site          INTEGER NOT NULL,
	node          INTEGER NOT NULL,
	derived_state TEXT NOT NULL,
	time          REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS sample_sets (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL,
	predefined INTEGER NOT NULL DEFAULT 0
);
`

// Meta keys written by preprocess.
const (
	MetaSequenceLength = "sequence_length"
	MetaTimeUnits      = "time_units"
	MetaSource         = "source"
	MetaCreatedAt      = "created_at"
	MetaFormatVersion  = "format_version"
)

// FormatVersion identifies the .tseda schema revision.
const FormatVersion = "1"
