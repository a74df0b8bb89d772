package store

import (
	"database/sql"
	"errors"
	"time"
)

// SnapshotFormat is the file format of a saved snapshot.
type SnapshotFormat string

const (
	// FormatPNG is the raster canvas export.
	FormatPNG SnapshotFormat = "png"
	// FormatPDF is the vector journal export.
	FormatPDF SnapshotFormat = "pdf"
)

// Snapshot records one file written by a save.
type Snapshot struct {
	ID        string         `json:"id"`
	Path      string         `json:"path"`
	Format    SnapshotFormat `json:"format"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Ops       int            `json:"ops"`
	CreatedAt time.Time      `json:"created_at"`
}

// SnapshotRepository provides operations on the snapshot history.
type SnapshotRepository struct {
	db *sql.DB
}

// Snapshots returns the snapshot repository for this store.
func (s *Store) Snapshots() *SnapshotRepository {
	return &SnapshotRepository{db: s.db}
}

// Create inserts a new snapshot record.
func (r *SnapshotRepository) Create(snap *Snapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO snapshots (id, path, format, width, height, ops, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Path, string(snap.Format), snap.Width, snap.Height, snap.Ops, snap.CreatedAt,
	)
	return err
}

// GetByID retrieves a snapshot by its ID.
func (r *SnapshotRepository) GetByID(id string) (*Snapshot, error) {
	snap := &Snapshot{}
	var format string

	err := r.db.QueryRow(
		`SELECT id, path, format, width, height, ops, created_at
		 FROM snapshots WHERE id = ?`,
		id,
	).Scan(&snap.ID, &snap.Path, &format, &snap.Width, &snap.Height, &snap.Ops, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	snap.Format = SnapshotFormat(format)
	return snap, nil
}

// List returns snapshots, newest first. A limit <= 0 returns all of them.
func (r *SnapshotRepository) List(limit int) ([]*Snapshot, error) {
	query := `SELECT id, path, format, width, height, ops, created_at
		 FROM snapshots ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		snap := &Snapshot{}
		var format string
		if err := rows.Scan(&snap.ID, &snap.Path, &format, &snap.Width, &snap.Height, &snap.Ops, &snap.CreatedAt); err != nil {
			return nil, err
		}
		snap.Format = SnapshotFormat(format)
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Delete removes a snapshot record. The file on disk is left alone.
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
