package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcripts (
        transcript_id TEXT PRIMARY KEY,
        title TEXT NOT NULL DEFAULT '',
        source_audio TEXT NOT NULL DEFAULT '',
        text TEXT NOT NULL,
        chunk_count INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS summaries (
        summary_id TEXT PRIMARY KEY,
        transcript_id TEXT NOT NULL REFERENCES transcripts(transcript_id) ON DELETE CASCADE,
        query TEXT NOT NULL DEFAULT '',
        summary TEXT NOT NULL,
        action_items JSONB NOT NULL DEFAULT '[]',
        decisions JSONB NOT NULL DEFAULT '[]',
        key_points JSONB NOT NULL DEFAULT '[]',
        topics JSONB NOT NULL DEFAULT '[]',
        participants JSONB NOT NULL DEFAULT '[]',
        notes TEXT NOT NULL DEFAULT '',
        model TEXT NOT NULL DEFAULT '',
        attempts INTEGER NOT NULL DEFAULT 1,
        created_at TIMESTAMPTZ NOT NULL,
        seq BIGSERIAL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_summaries_transcript_created ON summaries(transcript_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS summary_chunks (
        summary_id TEXT NOT NULL REFERENCES summaries(summary_id) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        chunk_id TEXT NOT NULL,
        PRIMARY KEY (summary_id, position)
    )`,
}

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn and bootstraps the schema.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// Bootstrap creates the history tables when missing.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Transcripts() store.Transcripts { return &transcripts{db: s.db} }
func (s *pgStore) Summaries() store.Summaries     { return &summaries{db: s.db} }
func (s *pgStore) Close() error                   { return s.db.Close() }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// --- Transcripts ---
type transcripts struct{ db *sql.DB }

func (r *transcripts) Create(ctx context.Context, t *model.Transcript) (*model.Transcript, error) {
	out := *t
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO transcripts (transcript_id, title, source_audio, text, chunk_count, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, out.ID, out.Title, out.SourceAudio, out.Text, out.ChunkCount, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transcripts) Get(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	var out model.Transcript
	row := r.db.QueryRowContext(ctx, `
        SELECT transcript_id, title, source_audio, text, chunk_count, created_at
        FROM transcripts WHERE transcript_id=$1
    `, transcriptID)
	if err := row.Scan(&out.ID, &out.Title, &out.SourceAudio, &out.Text, &out.ChunkCount, &out.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transcript %s: %w", transcriptID, model.ErrNotFound)
		}
		return nil, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}

func (r *transcripts) List(ctx context.Context, req model.ListTranscriptsRequest) ([]*model.Transcript, error) {
	q := `SELECT transcript_id, title, source_audio, text, chunk_count, created_at
        FROM transcripts ORDER BY created_at DESC, transcript_id`
	var args []any
	if req.Limit > 0 {
		q += ` LIMIT $1`
		args = append(args, req.Limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Transcript
	for rows.Next() {
		var t model.Transcript
		if err := rows.Scan(&t.ID, &t.Title, &t.SourceAudio, &t.Text, &t.ChunkCount, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *transcripts) Delete(ctx context.Context, transcriptID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE transcript_id=$1`, transcriptID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transcript %s: %w", transcriptID, model.ErrNotFound)
	}
	return nil
}

// --- Summaries ---
type summaries struct{ db *sql.DB }

func (r *summaries) Create(ctx context.Context, s *model.Summary) (*model.Summary, error) {
	out := *s
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now()
	}
	lists, err := encodeLists(&out)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM transcripts WHERE transcript_id=$1 FOR SHARE`, out.TranscriptID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transcript %s: %w", out.TranscriptID, model.ErrNotFound)
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO summaries (summary_id, transcript_id, query, summary, action_items, decisions, key_points,
            topics, participants, notes, model, attempts, created_at)
        VALUES ($1,$2,$3,$4,$5::jsonb,$6::jsonb,$7::jsonb,$8::jsonb,$9::jsonb,$10,$11,$12,$13)
    `, out.ID, out.TranscriptID, out.Query, out.Summary, lists[0], lists[1], lists[2], lists[3], lists[4],
		out.Notes, out.Model, out.Attempts, out.CreatedAt); err != nil {
		return nil, err
	}
	for i, id := range out.ChunkIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO summary_chunks (summary_id, position, chunk_id) VALUES ($1,$2,$3)`,
			out.ID, i, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

const summaryColumns = `summary_id, transcript_id, query, summary, action_items::text, decisions::text, key_points::text,
    topics::text, participants::text, notes, model, attempts, created_at`

func (r *summaries) Get(ctx context.Context, summaryID string) (*model.Summary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE summary_id=$1`, summaryID)
	out, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("summary %s: %w", summaryID, model.ErrNotFound)
		}
		return nil, err
	}
	if out.ChunkIDs, err = r.chunkIDs(ctx, out.ID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *summaries) List(ctx context.Context, f model.SummaryFilter) ([]*model.Summary, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.TranscriptID != "" {
		where = append(where, "transcript_id = "+arg(f.TranscriptID))
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= "+arg(f.Since))
	}
	if !f.Until.IsZero() {
		where = append(where, "created_at < "+arg(f.Until))
	}
	q := `SELECT ` + summaryColumns + ` FROM summaries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var res []*model.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for _, s := range res {
		if s.ChunkIDs, err = r.chunkIDs(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *summaries) chunkIDs(ctx context.Context, summaryID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT chunk_id FROM summary_chunks WHERE summary_id=$1 ORDER BY position`, summaryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*model.Summary, error) {
	var (
		out   model.Summary
		lists [5]string
	)
	if err := row.Scan(&out.ID, &out.TranscriptID, &out.Query, &out.Summary,
		&lists[0], &lists[1], &lists[2], &lists[3], &lists[4],
		&out.Notes, &out.Model, &out.Attempts, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	dst := []*[]string{&out.ActionItems, &out.Decisions, &out.KeyPoints, &out.Topics, &out.Participants}
	for i, c := range lists {
		if err := json.Unmarshal([]byte(c), dst[i]); err != nil {
			return nil, fmt.Errorf("summary %s: %w", out.ID, err)
		}
	}
	return &out, nil
}

func encodeLists(s *model.Summary) ([5]string, error) {
	var out [5]string
	for i, l := range [][]string{s.ActionItems, s.Decisions, s.KeyPoints, s.Topics, s.Participants} {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return out, err
		}
		out[i] = string(b)
	}
	return out, nil
}
