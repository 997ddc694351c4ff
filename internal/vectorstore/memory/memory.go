// Package memory is an in-process vector store with brute-force scoring.
// Contents are lost on restart; it backs tests and single-process dev runs.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

type entry struct {
	chunk model.Chunk
	vec   []float32
	seq   int64
}

// Store keeps every embedding in a map guarded by an RWMutex.
type Store struct {
	metric vectorstore.Metric
	dim    atomic.Int64

	mu      sync.RWMutex
	nextSeq int64
	entries map[string]*entry
}

// New creates an empty store.
func New(opts vectorstore.Options) *Store {
	s := &Store{metric: opts.Metric, entries: make(map[string]*entry)}
	if s.metric == "" {
		s.metric = vectorstore.Cosine
	}
	s.dim.Store(int64(opts.Dimension))
	return s
}

func (s *Store) Dimension() int                 { return int(s.dim.Load()) }
func (s *Store) Metric() vectorstore.Metric     { return s.metric }
func (s *Store) Close() error                   { return nil }
func (s *Store) HealthPing(context.Context) error { return nil }

// Upsert stores a copy of embedding. Re-upserting a chunk keeps its original
// insertion position.
func (s *Store) Upsert(ctx context.Context, chunk model.Chunk, embedding []float32) error {
	if err := vectorstore.CheckDimension(&s.dim, embedding); err != nil {
		return err
	}
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[chunk.ID]; ok {
		e.chunk, e.vec = chunk, vec
		return nil
	}
	s.nextSeq++
	s.entries[chunk.ID] = &entry{chunk: chunk, vec: vec, seq: s.nextSeq}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *vectorstore.Filter) ([]model.RetrievalRecord, error) {
	if err := vectorstore.CheckQueryDimension(s.Dimension(), vector); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []model.RetrievalRecord{}, nil
	}

	s.mu.RLock()
	cands := make([]vectorstore.Candidate, 0, len(s.entries))
	for _, e := range s.entries {
		if !filter.Match(e.chunk) {
			continue
		}
		cands = append(cands, vectorstore.Candidate{
			Record: model.RetrievalRecord{Chunk: e.chunk, Score: vectorstore.Score(s.metric, vector, e.vec)},
			Seq:    e.seq,
		})
	}
	s.mu.RUnlock()

	return vectorstore.Rank(cands, topK), nil
}

func (s *Store) DeleteTranscript(ctx context.Context, transcriptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.chunk.TranscriptID == transcriptID {
			delete(s.entries, id)
		}
	}
	return nil
}
