// Package storetest holds the compliance suite for store.Store implementations.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Transcripts
	tr, err := s.Transcripts().Create(ctx, &model.Transcript{Title: "weekly sync", Text: "Alice: hello\n\nBob: hi", ChunkCount: 1})
	if err != nil {
		t.Fatalf("CreateTranscript: %v", err)
	}
	if tr.ID == "" || tr.CreatedAt.IsZero() {
		t.Fatalf("CreateTranscript: id/created not assigned: %+v", tr)
	}
	got, err := s.Transcripts().Get(ctx, tr.ID)
	if err != nil || got.Text != tr.Text || got.Title != "weekly sync" || got.ChunkCount != 1 {
		t.Fatalf("GetTranscript: got=%+v err=%v", got, err)
	}
	if !got.CreatedAt.Equal(tr.CreatedAt) {
		t.Fatalf("GetTranscript: created %v, want %v", got.CreatedAt, tr.CreatedAt)
	}
	if _, err := s.Transcripts().Get(ctx, "missing-"+uuid.NewString()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetTranscript missing: want ErrNotFound, got %v", err)
	}

	other, err := s.Transcripts().Create(ctx, &model.Transcript{ID: "t-" + uuid.NewString(), Text: "Carol: standup"})
	if err != nil {
		t.Fatalf("CreateTranscript explicit id: %v", err)
	}
	if lst, err := s.Transcripts().List(ctx, model.ListTranscriptsRequest{}); err != nil || len(lst) < 2 {
		t.Fatalf("ListTranscripts: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Transcripts().List(ctx, model.ListTranscriptsRequest{Limit: 1}); err != nil || len(lst) != 1 {
		t.Fatalf("ListTranscripts limit: n=%d err=%v", len(lst), err)
	}

	// Summaries
	first, err := s.Summaries().Create(ctx, &model.Summary{
		TranscriptID: tr.ID,
		Summary:      "Greetings were exchanged.",
		ActionItems:  []string{"Bob to send notes"},
		KeyPoints:    []string{"everyone attended"},
		ChunkIDs:     []string{tr.ID + "_chunk_1", tr.ID + "_chunk_0"},
		Model:        "llama2",
		Attempts:     1,
	})
	if err != nil {
		t.Fatalf("CreateSummary: %v", err)
	}
	gs, err := s.Summaries().Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if gs.Summary != first.Summary || len(gs.ActionItems) != 1 || gs.ActionItems[0] != "Bob to send notes" {
		t.Fatalf("GetSummary fields: %+v", gs)
	}
	if gs.Decisions == nil || len(gs.Decisions) != 0 {
		t.Fatalf("GetSummary: nil lists must read back empty, got %#v", gs.Decisions)
	}
	if len(gs.ChunkIDs) != 2 || gs.ChunkIDs[0] != tr.ID+"_chunk_1" || gs.ChunkIDs[1] != tr.ID+"_chunk_0" {
		t.Fatalf("GetSummary chunk order lost: %v", gs.ChunkIDs)
	}
	if _, err := s.Summaries().Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetSummary missing: want ErrNotFound, got %v", err)
	}
	if _, err := s.Summaries().Create(ctx, &model.Summary{TranscriptID: "missing-" + uuid.NewString(), Summary: "x"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CreateSummary for missing transcript: want ErrNotFound, got %v", err)
	}

	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	second, err := s.Summaries().Create(ctx, &model.Summary{TranscriptID: tr.ID, Summary: "Second run.", Query: "decisions?"})
	if err != nil {
		t.Fatalf("CreateSummary second: %v", err)
	}
	if _, err := s.Summaries().Create(ctx, &model.Summary{TranscriptID: other.ID, Summary: "Standup."}); err != nil {
		t.Fatalf("CreateSummary other: %v", err)
	}

	hist, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: tr.ID})
	if err != nil || len(hist) != 2 {
		t.Fatalf("ListSummaries by transcript: n=%d err=%v", len(hist), err)
	}
	if hist[0].ID != second.ID || hist[1].ID != first.ID {
		t.Fatalf("ListSummaries not newest first: %s, %s", hist[0].ID, hist[1].ID)
	}
	if len(hist[1].ChunkIDs) != 2 {
		t.Fatalf("ListSummaries lost chunk ids: %v", hist[1].ChunkIDs)
	}
	if lim, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: tr.ID, Limit: 1}); err != nil || len(lim) != 1 || lim[0].ID != second.ID {
		t.Fatalf("ListSummaries limit: n=%d err=%v", len(lim), err)
	}
	if since, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: tr.ID, Since: second.CreatedAt}); err != nil || len(since) != 1 {
		t.Fatalf("ListSummaries since: n=%d err=%v", len(since), err)
	}
	if until, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: tr.ID, Until: second.CreatedAt}); err != nil || len(until) != 1 || until[0].ID != first.ID {
		t.Fatalf("ListSummaries until: n=%d err=%v", len(until), err)
	}

	// Delete cascades to summaries
	if err := s.Transcripts().Delete(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTranscript: %v", err)
	}
	if _, err := s.Transcripts().Get(ctx, tr.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetTranscript after delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.Summaries().Get(ctx, first.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("summary survived transcript delete: %v", err)
	}
	if hist, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: tr.ID}); err != nil || len(hist) != 0 {
		t.Fatalf("ListSummaries after delete: n=%d err=%v", len(hist), err)
	}
	if err := s.Transcripts().Delete(ctx, tr.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second DeleteTranscript: want ErrNotFound, got %v", err)
	}
	if hist, err := s.Summaries().List(ctx, model.SummaryFilter{TranscriptID: other.ID}); err != nil || len(hist) != 1 {
		t.Fatalf("other transcript's history affected: n=%d err=%v", len(hist), err)
	}
}
