package types

import "time"

// ------------------------------
// Response Types
// ------------------------------

type ListTranscriptsResponse struct {
	Transcripts []Transcript `json:"transcripts"`
	Count       int          `json:"count"`
}

type ListSummariesResponse struct {
	Summaries []Summary `json:"summaries"`
	Count     int       `json:"count"`
}

type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

// HealthResponse mirrors GET /api/health.
type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Healthy reports whether every dependency is up.
func (h *HealthResponse) Healthy() bool { return h.Status == "healthy" }
