package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("MEETING_SUMMARY_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MEETING_SUMMARY_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	s, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
