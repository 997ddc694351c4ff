package memory_test

import (
	"testing"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/memory"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/vectorstoretest"
)

func TestMemoryStoreCompliance(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T, opts vectorstore.Options) vectorstore.Store {
		return memory.New(opts)
	})
}

func TestLockedMemoryStoreCompliance(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T, opts vectorstore.Options) vectorstore.Store {
		return vectorstore.NewLocked(memory.New(opts))
	})
}
