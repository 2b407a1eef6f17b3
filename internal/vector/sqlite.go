package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// SnapshotStore persists index entries to a SQLite file so the corpus
// does not have to be re-embedded on every start. Entries are keyed by
// position to preserve the vector/metadata alignment.
type SnapshotStore struct {
	db   *sql.DB
	path string
}

// OpenSnapshot opens (or creates) a snapshot database at the given path.
func OpenSnapshot(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	s := &SnapshotStore{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("snapshot: pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			pos INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("snapshot: schema creation failed: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot with the given entries.
func (s *SnapshotStore) Save(ctx context.Context, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("snapshot: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (pos, source, content, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, i, c.Source, c.Content, encodeFloat32Slice(vectors[i])); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load returns all stored entries in position order.
func (s *SnapshotStore) Load(ctx context.Context) ([]Chunk, [][]float32, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, content, embedding FROM entries ORDER BY pos")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	var vectors [][]float32
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.Source, &c.Content, &blob); err != nil {
			return nil, nil, err
		}
		chunks = append(chunks, c)
		vectors = append(vectors, decodeFloat32Slice(blob))
	}
	return chunks, vectors, rows.Err()
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// encodeFloat32Slice converts []float32 to []byte.
func encodeFloat32Slice(f []float32) []byte {
	buf := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeFloat32Slice converts []byte to []float32.
func decodeFloat32Slice(b []byte) []float32 {
	f := make([]float32, len(b)/4)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return f
}
