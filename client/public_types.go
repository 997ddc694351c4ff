package client

import "github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"

// Public aliases so callers never import client/internal packages.
type (
	Transcript       = types.Transcript
	Chunk            = types.Chunk
	SearchHit        = types.SearchHit
	Summary          = types.Summary
	IngestRequest    = types.IngestRequest
	SummarizeRequest = types.SummarizeRequest
	HistoryQuery     = types.HistoryQuery
	SearchRequest    = types.SearchRequest
	HealthResponse   = types.HealthResponse
)

// MaxTopK is the largest topK the service accepts for search.
const MaxTopK = types.MaxTopK
