package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/pdfchat/internal/models"
)

// segmentStore keeps segment text and metadata for every collection of one client in a
// private in-memory SQLite database.
type segmentStore struct {
	db *sql.DB
}

func openSegmentStore() (*segmentStore, error) {
	// A named shared-cache memory database lives as long as one connection is open;
	// pinning the pool to a single connection keeps it alive and private to this client.
	dsn := fmt.Sprintf("file:pdfchat-%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &segmentStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS segments (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		document_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		page INTEGER NOT NULL,
		segment_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (collection, id),
		FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_segments_position ON segments(collection, position);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *segmentStore) createCollection(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO collections (name, created_at) VALUES (?, ?)`, name, time.Now())
	return err
}

func (s *segmentStore) deleteCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE collection = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return err
	}
	return tx.Commit()
}

// batchInsert inserts segments in a transaction, numbering positions from start.
func (s *segmentStore) batchInsert(ctx context.Context, collection string, start int, segments []models.Segment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (collection, id, position, document_id, filename, page, segment_index, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, seg := range segments {
		if _, err := stmt.ExecContext(ctx, collection, seg.ID, start+i, seg.DocumentID, seg.Filename, seg.Page, seg.Index, seg.Text); err != nil {
			return fmt.Errorf("insert segment %s: %w", seg.ID, err)
		}
	}
	return tx.Commit()
}

func (s *segmentStore) get(ctx context.Context, collection string, ids []string) (map[string]*models.Segment, error) {
	out := make(map[string]*models.Segment, len(ids))
	stmt, err := s.db.PrepareContext(ctx,
		`SELECT id, document_id, filename, page, segment_index, content
		 FROM segments WHERE collection = ? AND id = ?`,
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	for _, id := range ids {
		var seg models.Segment
		err := stmt.QueryRowContext(ctx, collection, id).Scan(&seg.ID, &seg.DocumentID, &seg.Filename, &seg.Page, &seg.Index, &seg.Text)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = &seg
	}
	return out, nil
}

func (s *segmentStore) all(ctx context.Context, collection string) ([]models.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, filename, page, segment_index, content
		 FROM segments WHERE collection = ? ORDER BY position`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		var seg models.Segment
		if err := rows.Scan(&seg.ID, &seg.DocumentID, &seg.Filename, &seg.Page, &seg.Index, &seg.Text); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *segmentStore) count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments WHERE collection = ?`, collection).Scan(&count)
	return count, err
}

func (s *segmentStore) close() error {
	return s.db.Close()
}
