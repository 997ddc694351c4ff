package types

import "time"

// ------------------------------
// Domain entities
// ------------------------------

// Transcript is a stored meeting transcript.
type Transcript struct {
	ID          string    `json:"transcriptId"`
	Title       string    `json:"title,omitempty"`
	SourceAudio string    `json:"sourceAudio,omitempty"`
	Text        string    `json:"text"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Chunk is an indexed span of a transcript.
type Chunk struct {
	ID           string            `json:"chunkId"`
	TranscriptID string            `json:"transcriptId"`
	Index        int               `json:"index"`
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Text         string            `json:"text"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SearchHit is a chunk with its similarity score.
type SearchHit struct {
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
