// Package catalog persists a record of every sampling run into a
// SQLite database so `gwa runs` can answer what ran, where its chain
// lives, and how it ended without walking output directories.
package catalog

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/db"
	"github.com/Hazboun6/gwa/errors"
)

// Record is one catalog row. ID doubles as the run directory name.
type Record struct {
	ID               string    `json:"id"`
	Pulsar           string    `json:"pulsar"`
	Model            string    `json:"model"`
	NDim             int       `json:"ndim"`
	Iterations       int       `json:"iterations"`
	Completed        int       `json:"completed"`
	Status           string    `json:"status"`
	Acceptance       float64   `json:"acceptance"`
	MaxLnPost        float64   `json:"max_lnpost"`
	OutDir           string    `json:"outdir"`
	Version          string    `json:"version"`
	DataCommit       string    `json:"data_commit,omitempty"`
	HostMemTotal     uint64    `json:"host_mem_total,omitempty"`
	HostMemAvailable uint64    `json:"host_mem_available,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Pulsar string
	Status string
	Limit  int
}

// Query constants
const (
	runUpsertQuery = `
		INSERT INTO runs (id, pulsar, model, ndim, iterations, completed, status,
			acceptance, max_lnpost, outdir, version, data_commit,
			host_mem_total, host_mem_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			iterations = excluded.iterations,
			completed = excluded.completed,
			status = excluded.status,
			acceptance = excluded.acceptance,
			max_lnpost = excluded.max_lnpost,
			updated_at = excluded.updated_at`

	runSelectColumns = `id, pulsar, model, ndim, iterations, completed, status,
			acceptance, max_lnpost, outdir, version, data_commit,
			host_mem_total, host_mem_available, created_at, updated_at`
)

// Store is the run catalog backed by a SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore wraps an already-open database handle.
func NewStore(database *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: database, logger: logger}
}

// Open opens (creating if necessary) the catalog database at path and
// brings its schema up to date.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating catalog directory %s", dir)
		}
	}
	database, err := db.OpenWithMigrations(path, logger)
	if err != nil {
		return nil, err
	}
	return NewStore(database, logger), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a run record, or updates its progress fields when the
// run ID is already cataloged. A run is saved once when it starts and
// again when it finishes; identity columns never change in between.
func (s *Store) Save(rec *Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := s.db.Exec(runUpsertQuery,
		rec.ID, rec.Pulsar, rec.Model, rec.NDim, rec.Iterations, rec.Completed,
		rec.Status, rec.Acceptance, rec.MaxLnPost, rec.OutDir, rec.Version,
		rec.DataCommit, rec.HostMemTotal, rec.HostMemAvailable,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "cataloging run %s", rec.ID)
	}

	if s.logger != nil {
		s.logger.Debugw("Cataloged run",
			"id", rec.ID,
			"status", rec.Status,
			"completed", rec.Completed,
		)
	}
	return nil
}

// Get returns the catalog record for a run ID.
func (s *Store) Get(id string) (*Record, error) {
	row := s.db.QueryRow(
		"SELECT "+runSelectColumns+" FROM runs WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "run %s is not in the catalog", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading run %s", id)
	}
	return rec, nil
}

// List returns cataloged runs, newest first.
func (s *Store) List(f Filter) ([]*Record, error) {
	query := "SELECT " + runSelectColumns + " FROM runs WHERE 1=1"
	var args []interface{}
	if f.Pulsar != "" {
		query += " AND pulsar = ?"
		args = append(args, f.Pulsar)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning run row")
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a run from the catalog. The run directory itself is
// left alone.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "deleting run %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "run %s is not in the catalog", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var dataCommit sql.NullString
	var memTotal, memAvail sql.NullInt64

	err := row.Scan(
		&rec.ID, &rec.Pulsar, &rec.Model, &rec.NDim, &rec.Iterations,
		&rec.Completed, &rec.Status, &rec.Acceptance, &rec.MaxLnPost,
		&rec.OutDir, &rec.Version, &dataCommit, &memTotal, &memAvail,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DataCommit = dataCommit.String
	if memTotal.Valid {
		rec.HostMemTotal = uint64(memTotal.Int64)
	}
	if memAvail.Valid {
		rec.HostMemAvailable = uint64(memAvail.Int64)
	}
	return &rec, nil
}

// FromManifest builds a catalog record from a run directory's manifest.
// The caller fills provenance fields the manifest does not carry.
func FromManifest(id, outDir string, m *chain.Manifest) *Record {
	return &Record{
		ID:         id,
		Pulsar:     m.Pulsar,
		Model:      m.Model,
		NDim:       m.NDim,
		Iterations: m.Iterations,
		Completed:  m.Completed,
		Status:     m.Status,
		OutDir:     outDir,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
	}
}
