// Package sqlite implements the .tseda file format: an embedded
// SQLite database holding the tree sequence tables and the derived
// sample sets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"tseda/domain/dataset"
	"tseda/domain/treeseq"
	"tseda/internal/errors"
	"tseda/ports"
)

// Store is a TreeStore over a single .tseda database file.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) a .tseda file and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTables writes the full table collection, replacing any previous
// contents.
func (s *Store) SaveTables(ctx context.Context, tables *treeseq.Tables) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "individuals", "populations", "sites", "mutations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clearing %s", table)
		}
	}

	for i, n := range tables.Nodes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, flags, time, population, individual) VALUES (?, ?, ?, ?, ?)`,
			i, n.Flags, n.Time, n.Population, n.Individual)
		if err != nil {
			return errors.Wrapf(err, "inserting node %d", i)
		}
	}
	for i, e := range tables.Edges {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO edges (id, "left", "right", parent, child) VALUES (?, ?, ?, ?, ?)`,
			i, e.Left, e.Right, e.Parent, e.Child)
		if err != nil {
			return errors.Wrapf(err, "inserting edge %d", i)
		}
	}
	for i, ind := range tables.Individuals {
		location, err := json.Marshal(ind.Location)
		if err != nil {
			return errors.Wrapf(err, "encoding individual %d location", i)
		}
		parents, err := json.Marshal(ind.Parents)
		if err != nil {
			return errors.Wrapf(err, "encoding individual %d parents", i)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO individuals (id, flags, location, parents, metadata) VALUES (?, ?, ?, ?, ?)`,
			i, ind.Flags, string(location), string(parents), string(ind.Metadata))
		if err != nil {
			return errors.Wrapf(err, "inserting individual %d", i)
		}
	}
	for i, p := range tables.Populations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO populations (id, metadata) VALUES (?, ?)`,
			i, string(p.Metadata))
		if err != nil {
			return errors.Wrapf(err, "inserting population %d", i)
		}
	}
	for i, site := range tables.Sites {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sites (id, position, ancestral_state) VALUES (?, ?, ?)`,
			i, site.Position, site.AncestralState)
		if err != nil {
			return errors.Wrapf(err, "inserting site %d", i)
		}
	}
	for i, m := range tables.Mutations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO mutations (id, site, node, derived_state, time) VALUES (?, ?, ?, ?, ?)`,
			i, m.Site, m.Node, m.DerivedState, m.Time)
		if err != nil {
			return errors.Wrapf(err, "inserting mutation %d", i)
		}
	}

	if err := setMetaTx(ctx, tx, MetaSequenceLength, strconv.FormatFloat(tables.SequenceLength, 'g', -1, 64)); err != nil {
		return err
	}
	if err := setMetaTx(ctx, tx, MetaTimeUnits, tables.TimeUnits); err != nil {
		return err
	}
	if err := setMetaTx(ctx, tx, MetaFormatVersion, FormatVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing tables")
	}
	return nil
}

// LoadTables reads the full table collection back.
func (s *Store) LoadTables(ctx context.Context) (*treeseq.Tables, error) {
	var tables treeseq.Tables

	seqlen, err := s.GetMeta(ctx, MetaSequenceLength)
	if err != nil {
		return nil, err
	}
	tables.SequenceLength, err = strconv.ParseFloat(seqlen, 64)
	if err != nil {
		return nil, errors.Wrap(err, "parsing sequence length")
	}
	if tables.TimeUnits, err = s.GetMeta(ctx, MetaTimeUnits); err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &tables.Nodes,
		`SELECT flags, time, population, individual FROM nodes ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading nodes")
	}
	err = s.db.SelectContext(ctx, &tables.Edges,
		`SELECT "left", "right", parent, child FROM edges ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading edges")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT flags, location, parents, metadata FROM individuals ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading individuals")
	}
	defer rows.Close()
	for rows.Next() {
		var ind treeseq.IndividualRow
		var location, parents, metadata sql.NullString
		if err := rows.Scan(&ind.Flags, &location, &parents, &metadata); err != nil {
			return nil, errors.Wrap(err, "scanning individual")
		}
		if location.Valid && location.String != "" && location.String != "null" {
			if err := json.Unmarshal([]byte(location.String), &ind.Location); err != nil {
				return nil, errors.Wrap(err, "decoding individual location")
			}
		}
		if parents.Valid && parents.String != "" && parents.String != "null" {
			if err := json.Unmarshal([]byte(parents.String), &ind.Parents); err != nil {
				return nil, errors.Wrap(err, "decoding individual parents")
			}
		}
		if metadata.Valid && metadata.String != "" {
			ind.Metadata = json.RawMessage(metadata.String)
		}
		tables.Individuals = append(tables.Individuals, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating individuals")
	}

	prows, err := s.db.QueryContext(ctx, `SELECT metadata FROM populations ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading populations")
	}
	defer prows.Close()
	for prows.Next() {
		var pop treeseq.PopulationRow
		var metadata sql.NullString
		if err := prows.Scan(&metadata); err != nil {
			return nil, errors.Wrap(err, "scanning population")
		}
		if metadata.Valid && metadata.String != "" {
			pop.Metadata = json.RawMessage(metadata.String)
		}
		tables.Populations = append(tables.Populations, pop)
	}
	if err := prows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating populations")
	}

	err = s.db.SelectContext(ctx, &tables.Sites,
		`SELECT position, ancestral_state AS "ancestralstate" FROM sites ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading sites")
	}
	err = s.db.SelectContext(ctx, &tables.Mutations,
		`SELECT site, node, derived_state AS "derivedstate", time FROM mutations ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading mutations")
	}

	return &tables, nil
}

// SaveSampleSets replaces the stored sample sets.
func (s *Store) SaveSampleSets(ctx context.Context, sets []dataset.SampleSet) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sample_sets`); err != nil {
		return errors.Wrap(err, "clearing sample sets")
	}
	for _, ss := range sets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sample_sets (id, name, color, predefined) VALUES (?, ?, ?, ?)`,
			ss.ID, ss.Name, ss.Color, ss.Predefined)
		if err != nil {
			return errors.Wrapf(err, "inserting sample set %d", ss.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing sample sets")
	}
	return nil
}

// LoadSampleSets reads the stored sample sets ordered by id.
func (s *Store) LoadSampleSets(ctx context.Context) ([]dataset.SampleSet, error) {
	var sets []dataset.SampleSet
	err := s.db.SelectContext(ctx, &sets,
		`SELECT id, name, color, predefined FROM sample_sets ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "loading sample sets")
	}
	return sets, nil
}

// SetMeta upserts a meta key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return errors.Wrapf(err, "setting meta %s", key)
	}
	return nil
}

// GetMeta reads a meta key.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM meta WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return "", errors.NotFound("meta key %s", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "getting meta %s", key)
	}
	return value, nil
}

func setMetaTx(ctx context.Context, tx *sqlx.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return errors.Wrapf(err, "setting meta %s", key)
	}
	return nil
}

var _ ports.TreeStore = (*Store)(nil)
