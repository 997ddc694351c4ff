package model

import "time"

// Transcript is the raw text of one meeting. Immutable once created.
type Transcript struct {
	ID          string    `json:"transcriptId"`
	Title       string    `json:"title,omitempty"`
	SourceAudio string    `json:"sourceAudio,omitempty"`
	Text        string    `json:"text"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Chunk metadata keys.
const (
	MetaChunkType   = "chunk_type"
	MetaTotalChunks = "total_chunks"

	ChunkTypeTranscript = "transcript"
)

// Chunk is a contiguous substring of a transcript: Text == transcript[Start:End].
// Start and End are byte offsets.
type Chunk struct {
	ID           string            `json:"chunkId"`
	TranscriptID string            `json:"transcriptId"`
	Index        int               `json:"index"`
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Text         string            `json:"text"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RetrievalRecord pairs a chunk with its similarity to a query. Never persisted.
type RetrievalRecord struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Summary is the structured result of one summarization run.
type Summary struct {
	ID           string    `json:"summaryId"`
	TranscriptID string    `json:"transcriptId"`
	Query        string    `json:"query,omitempty"`
	Summary      string    `json:"summary"`
	ActionItems  []string  `json:"actionItems"`
	Decisions    []string  `json:"decisions"`
	KeyPoints    []string  `json:"keyPoints"`
	Topics       []string  `json:"topics,omitempty"`
	Participants []string  `json:"participants,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	ChunkIDs     []string  `json:"chunkIds"`
	Model        string    `json:"model,omitempty"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SummaryFilter narrows a history query. Zero values mean "no constraint".
type SummaryFilter struct {
	TranscriptID string
	Since        time.Time
	Until        time.Time
	Limit        int
}

// ListTranscriptsRequest pages over stored transcripts, newest first.
type ListTranscriptsRequest struct {
	Limit int
}
