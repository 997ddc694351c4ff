package types

import "time"

// ------------------------------
// Request Types
// ------------------------------

// IngestRequest submits transcript text.
type IngestRequest struct {
	Text        string `json:"text"`
	Title       string `json:"title,omitempty"`
	SourceAudio string `json:"sourceAudio,omitempty"`
}

// SummarizeRequest carries an optional query; empty uses the server default.
type SummarizeRequest struct {
	Query string `json:"query,omitempty"`
}

// HistoryQuery filters stored summaries. Zero values mean no constraint.
type HistoryQuery struct {
	TranscriptID string
	Since        time.Time
	Until        time.Time
	Limit        int
}

// SearchRequest runs a similarity search over indexed chunks.
type SearchRequest struct {
	Query        string `json:"query"`
	TopK         int    `json:"topK,omitempty"`
	TranscriptID string `json:"transcriptId,omitempty"`
}
