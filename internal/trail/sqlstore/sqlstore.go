// Package sqlstore backs the trail with SQLite. The seq primary key
// enforces the no-gaps, no-overwrite discipline at the schema level.
package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/davidahmann/jtrail/internal/trail"
	"github.com/davidahmann/jtrail/pkg/types"
)

type Store struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) a SQLite-backed trail store.
func OpenSQLite(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := trail.Migrate(db, trail.DBSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Append(entry trail.StoredRecord) error {
	body, err := json.Marshal(entry.Record)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO trail_entries(seq, record_id, body_json, prev_digest, digest, key_id, sig)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		entry.Seq, entry.RecordID, string(body), entry.PrevDigest, entry.Digest, entry.KeyID, entry.Sig,
	)
	return err
}

func (s *Store) ReadAll() ([]trail.StoredRecord, error) {
	rows, err := s.db.Query(
		`SELECT seq, record_id, body_json, prev_digest, digest, key_id, sig
FROM trail_entries ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trail.StoredRecord
	for rows.Next() {
		var entry trail.StoredRecord
		var body string
		if err := rows.Scan(&entry.Seq, &entry.RecordID, &body, &entry.PrevDigest, &entry.Digest, &entry.KeyID, &entry.Sig); err != nil {
			return nil, err
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("trail entry %d: %w", entry.Seq, err)
		}
		entry.Record = rec
		out = append(out, entry)
	}
	return out, rows.Err()
}
