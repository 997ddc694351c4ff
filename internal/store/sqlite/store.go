package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
)

// New opens the history database at path and ensures its schema.
func New(ctx context.Context, path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	s, err := NewWithDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB ensures the schema on db and wraps it.
func NewWithDB(ctx context.Context, db *sql.DB) (store.Store, error) {
	if err := Exec(ctx, db, schema); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Transcripts() store.Transcripts { return &transcripts{db: s.db} }
func (s *sqliteStore) Summaries() store.Summaries     { return &summaries{db: s.db} }
func (s *sqliteStore) Close() error                   { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

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
        VALUES (?, ?, ?, ?, ?, ?)
    `, out.ID, out.Title, out.SourceAudio, out.Text, out.ChunkCount, out.CreatedAt.UnixNano())
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transcripts) Get(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	var out model.Transcript
	var created int64
	row := r.db.QueryRowContext(ctx, `
        SELECT transcript_id, title, source_audio, text, chunk_count, created_at
        FROM transcripts WHERE transcript_id = ?
    `, transcriptID)
	if err := row.Scan(&out.ID, &out.Title, &out.SourceAudio, &out.Text, &out.ChunkCount, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transcript %s: %w", transcriptID, model.ErrNotFound)
		}
		return nil, err
	}
	out.CreatedAt = fromNanos(created)
	return &out, nil
}

func (r *transcripts) List(ctx context.Context, req model.ListTranscriptsRequest) ([]*model.Transcript, error) {
	q := `SELECT transcript_id, title, source_audio, text, chunk_count, created_at
        FROM transcripts ORDER BY created_at DESC, transcript_id`
	var args []any
	if req.Limit > 0 {
		q += ` LIMIT ?`
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
		var created int64
		if err := rows.Scan(&t.ID, &t.Title, &t.SourceAudio, &t.Text, &t.ChunkCount, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = fromNanos(created)
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *transcripts) Delete(ctx context.Context, transcriptID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE transcript_id = ?`, transcriptID)
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
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM transcripts WHERE transcript_id = ?`, out.TranscriptID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transcript %s: %w", out.TranscriptID, model.ErrNotFound)
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO summaries (summary_id, transcript_id, query, summary, action_items, decisions, key_points,
            topics, participants, notes, model, attempts, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, out.ID, out.TranscriptID, out.Query, out.Summary, lists[0], lists[1], lists[2], lists[3], lists[4],
		out.Notes, out.Model, out.Attempts, out.CreatedAt.UnixNano()); err != nil {
		return nil, err
	}
	for i, id := range out.ChunkIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO summary_chunks (summary_id, position, chunk_id) VALUES (?, ?, ?)`,
			out.ID, i, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

const summaryColumns = `summary_id, transcript_id, query, summary, action_items, decisions, key_points,
    topics, participants, notes, model, attempts, created_at`

func (r *summaries) Get(ctx context.Context, summaryID string) (*model.Summary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE summary_id = ?`, summaryID)
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
	if f.TranscriptID != "" {
		where = append(where, "transcript_id = ?")
		args = append(args, f.TranscriptID)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if !f.Until.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.Until.UnixNano())
	}
	q := `SELECT ` + summaryColumns + ` FROM summaries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
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
	rows, err := r.db.QueryContext(ctx, `SELECT chunk_id FROM summary_chunks WHERE summary_id = ? ORDER BY position`, summaryID)
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
		out     model.Summary
		lists   [5]string
		created int64
	)
	if err := row.Scan(&out.ID, &out.TranscriptID, &out.Query, &out.Summary,
		&lists[0], &lists[1], &lists[2], &lists[3], &lists[4],
		&out.Notes, &out.Model, &out.Attempts, &created); err != nil {
		return nil, err
	}
	out.CreatedAt = fromNanos(created)
	if err := decodeLists(&out, lists); err != nil {
		return nil, fmt.Errorf("summary %s: %w", out.ID, err)
	}
	return &out, nil
}

// encodeLists returns the JSON columns in schema order: action_items,
// decisions, key_points, topics, participants.
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

func decodeLists(s *model.Summary, cols [5]string) error {
	dst := []*[]string{&s.ActionItems, &s.Decisions, &s.KeyPoints, &s.Topics, &s.Participants}
	for i, c := range cols {
		if c == "" {
			*dst[i] = []string{}
			continue
		}
		if err := json.Unmarshal([]byte(c), dst[i]); err != nil {
			return err
		}
	}
	return nil
}
