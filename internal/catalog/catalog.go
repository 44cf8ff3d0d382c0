// Package catalog persists the JEMAF song metadata table in a local SQLite
// database, so repeated runs can work offline once the catalog has been
// synced.
package catalog

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bricedupuy/chordshow/core/errors"
	"github.com/bricedupuy/chordshow/core/meta"
)

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	stem           TEXT PRIMARY KEY,
	number         TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	title2         TEXT NOT NULL DEFAULT '',
	original_title TEXT NOT NULL DEFAULT '',
	composer       TEXT NOT NULL DEFAULT '',
	author         TEXT NOT NULL DEFAULT '',
	key            TEXT NOT NULL DEFAULT '',
	format         TEXT NOT NULL DEFAULT '',
	copyright      TEXT NOT NULL DEFAULT '',
	reference      TEXT NOT NULL DEFAULT '',
	theme          TEXT NOT NULL DEFAULT '',
	tune_of        TEXT NOT NULL DEFAULT '',
	volume         TEXT NOT NULL DEFAULT '',
	supplement     TEXT NOT NULL DEFAULT '',
	f1             TEXT NOT NULL DEFAULT '',
	link           TEXT NOT NULL DEFAULT '',
	updated_at     TEXT NOT NULL
);
`

// Store is a catalog database handle.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize catalog schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored catalog with the given table. The write is
// transactional: either the whole table lands or nothing changes.
func (s *Store) Save(ctx context.Context, table meta.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin catalog transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM songs`); err != nil {
		return errors.Wrap(err, "clear catalog")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (
			stem, number, title, title2, original_title, composer, author,
			key, format, copyright, reference, theme, tune_of, volume,
			supplement, f1, link, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare catalog insert")
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for stem, rec := range table {
		_, err := stmt.ExecContext(ctx,
			stem, rec.Number, rec.Title, rec.Title2, rec.OriginalTitle,
			rec.Composer, rec.Author, rec.Key, rec.Format, rec.Copyright,
			rec.Reference, rec.Theme, rec.TuneOf, rec.Volume,
			rec.Supplement, rec.F1, rec.Link, now)
		if err != nil {
			return errors.Wrapf(err, "insert catalog row %s", stem)
		}
	}

	return errors.Wrap(tx.Commit(), "commit catalog")
}

// Load reads the full stored catalog.
func (s *Store) Load(ctx context.Context) (meta.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stem, number, title, title2, original_title, composer, author,
		       key, format, copyright, reference, theme, tune_of, volume,
		       supplement, f1, link
		FROM songs`)
	if err != nil {
		return nil, errors.Wrap(err, "query catalog")
	}
	defer rows.Close()

	table := make(meta.Table)
	for rows.Next() {
		var stem string
		var rec meta.Record
		err := rows.Scan(
			&stem, &rec.Number, &rec.Title, &rec.Title2, &rec.OriginalTitle,
			&rec.Composer, &rec.Author, &rec.Key, &rec.Format, &rec.Copyright,
			&rec.Reference, &rec.Theme, &rec.TuneOf, &rec.Volume,
			&rec.Supplement, &rec.F1, &rec.Link)
		if err != nil {
			return nil, errors.Wrap(err, "scan catalog row")
		}
		table[stem] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read catalog rows")
	}
	return table, nil
}

// Count reports the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count catalog rows")
	}
	return n, nil
}

// UpdatedAt reports the most recent sync time, or the zero time for an
// empty catalog.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	var stamp sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM songs`).Scan(&stamp)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "read catalog timestamp")
	}
	if !stamp.Valid || stamp.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, stamp.String)
	if err != nil {
		return time.Time{}, errors.NewParse("timestamp", "", err.Error())
	}
	return t, nil
}
