// Package sqlite is a durable vector store on a local SQLite file.
// Embeddings are stored as little-endian float32 blobs and scored by brute
// force; the insertion sequence is the table's autoincrement key.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	sqlitedb "github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/sqlite"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vector_meta (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS chunk_vectors (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        chunk_id TEXT NOT NULL UNIQUE,
        transcript_id TEXT NOT NULL,
        chunk_index INTEGER NOT NULL,
        start_offset INTEGER NOT NULL,
        end_offset INTEGER NOT NULL,
        text TEXT NOT NULL,
        metadata TEXT NOT NULL DEFAULT '{}',
        embedding BLOB NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_chunk_vectors_transcript ON chunk_vectors(transcript_id)`,
}

const metaDimension = "dimension"

// Store implements vectorstore.Store over database/sql.
type Store struct {
	db        *sql.DB
	metric    vectorstore.Metric
	dim       atomic.Int64
	persisted atomic.Bool
}

// Open opens the database at path, ensures the schema and reconciles the
// configured dimension with the one recorded on disk.
func Open(ctx context.Context, path string, opts vectorstore.Options) (*Store, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := NewWithDB(ctx, db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB builds a store over an existing handle. The caller keeps ownership
// of db only if this returns an error.
func NewWithDB(ctx context.Context, db *sql.DB, opts vectorstore.Options) (*Store, error) {
	if err := sqlitedb.Exec(ctx, db, schema); err != nil {
		return nil, err
	}
	s := &Store{db: db, metric: opts.Metric}
	if s.metric == "" {
		s.metric = vectorstore.Cosine
	}

	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM vector_meta WHERE key = ?`, metaDimension).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.dim.Store(int64(opts.Dimension))
	case err != nil:
		return nil, err
	default:
		onDisk, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return nil, fmt.Errorf("vector_meta dimension %q: %w", raw, convErr)
		}
		if opts.Dimension != 0 && opts.Dimension != onDisk {
			return nil, model.DimensionMismatchError{Want: onDisk, Got: opts.Dimension}
		}
		s.dim.Store(int64(onDisk))
		s.persisted.Store(true)
	}
	return s, nil
}

func (s *Store) Dimension() int             { return int(s.dim.Load()) }
func (s *Store) Metric() vectorstore.Metric { return s.metric }
func (s *Store) Close() error               { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Upsert(ctx context.Context, chunk model.Chunk, embedding []float32) error {
	if err := vectorstore.CheckDimension(&s.dim, embedding); err != nil {
		return err
	}
	if !s.persisted.Load() {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO vector_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
			metaDimension, strconv.Itoa(s.Dimension())); err != nil {
			return err
		}
		s.persisted.Store(true)
	}

	meta, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO chunk_vectors (chunk_id, transcript_id, chunk_index, start_offset, end_offset, text, metadata, embedding)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(chunk_id) DO UPDATE SET
            transcript_id = excluded.transcript_id,
            chunk_index = excluded.chunk_index,
            start_offset = excluded.start_offset,
            end_offset = excluded.end_offset,
            text = excluded.text,
            metadata = excluded.metadata,
            embedding = excluded.embedding
    `, chunk.ID, chunk.TranscriptID, chunk.Index, chunk.Start, chunk.End, chunk.Text, string(meta), encode(embedding))
	return err
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *vectorstore.Filter) ([]model.RetrievalRecord, error) {
	if err := vectorstore.CheckQueryDimension(s.Dimension(), vector); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []model.RetrievalRecord{}, nil
	}

	q := `SELECT seq, chunk_id, transcript_id, chunk_index, start_offset, end_offset, text, metadata, embedding FROM chunk_vectors`
	var args []any
	if filter != nil && filter.TranscriptID != "" {
		q += ` WHERE transcript_id = ?`
		args = append(args, filter.TranscriptID)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cands []vectorstore.Candidate
	for rows.Next() {
		var (
			c    model.Chunk
			seq  int64
			meta string
			blob []byte
		)
		if err := rows.Scan(&seq, &c.ID, &c.TranscriptID, &c.Index, &c.Start, &c.End, &c.Text, &meta, &blob); err != nil {
			return nil, err
		}
		if meta != "" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
				return nil, fmt.Errorf("chunk %s metadata: %w", c.ID, err)
			}
		}
		vec, err := decode(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		if len(vec) != len(vector) {
			return nil, model.DimensionMismatchError{Want: len(vector), Got: len(vec)}
		}
		cands = append(cands, vectorstore.Candidate{
			Record: model.RetrievalRecord{Chunk: c, Score: vectorstore.Score(s.metric, vector, vec)},
			Seq:    seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vectorstore.Rank(cands, topK), nil
}

// DeleteTranscript removes every chunk of the transcript in one statement.
func (s *Store) DeleteTranscript(ctx context.Context, transcriptID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunk_vectors WHERE transcript_id = ?`, transcriptID)
	return err
}

func encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
