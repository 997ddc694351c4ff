package vectorstore

import (
	"context"
	"sync"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Locked wraps a Store with the service's write discipline:
//   - writes to the same transcript are serialized;
//   - DeleteTranscript is a barrier, so no query or upsert runs while a
//     transcript is being removed and no reader sees it half deleted;
//   - queries run concurrently with each other and with upserts.
type Locked struct {
	inner Store

	barrier sync.RWMutex

	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocked wraps inner.
func NewLocked(inner Store) *Locked {
	return &Locked{inner: inner, keys: make(map[string]*keyLock)}
}

// Unwrap returns the wrapped backend.
func (l *Locked) Unwrap() Store { return l.inner }

func (l *Locked) Upsert(ctx context.Context, chunk model.Chunk, embedding []float32) error {
	l.barrier.RLock()
	defer l.barrier.RUnlock()
	unlock := l.lockKey(chunk.TranscriptID)
	defer unlock()
	return l.inner.Upsert(ctx, chunk, embedding)
}

// UpsertAll writes every chunk of one transcript under a single key lock.
// embeddings[i] belongs to chunks[i].
func (l *Locked) UpsertAll(ctx context.Context, transcriptID string, chunks []model.Chunk, embeddings [][]float32) error {
	l.barrier.RLock()
	defer l.barrier.RUnlock()
	unlock := l.lockKey(transcriptID)
	defer unlock()
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.inner.Upsert(ctx, chunks[i], embeddings[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Locked) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]model.RetrievalRecord, error) {
	l.barrier.RLock()
	defer l.barrier.RUnlock()
	return l.inner.Query(ctx, vector, topK, filter)
}

func (l *Locked) DeleteTranscript(ctx context.Context, transcriptID string) error {
	l.barrier.Lock()
	defer l.barrier.Unlock()
	return l.inner.DeleteTranscript(ctx, transcriptID)
}

func (l *Locked) Dimension() int { return l.inner.Dimension() }
func (l *Locked) Metric() Metric { return l.inner.Metric() }
func (l *Locked) Close() error   { return l.inner.Close() }

// HealthPing forwards to the backend when it supports pinging.
func (l *Locked) HealthPing(ctx context.Context) error {
	if p, ok := l.inner.(interface{ HealthPing(context.Context) error }); ok {
		return p.HealthPing(ctx)
	}
	return nil
}

func (l *Locked) lockKey(key string) func() {
	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &keyLock{}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()
	return func() {
		k.mu.Unlock()
		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.keys, key)
		}
		l.mu.Unlock()
	}
}
