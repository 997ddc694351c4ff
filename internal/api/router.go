package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/recovery"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
)

// NewRouter wires HTTP routes to handlers.
func NewRouter(svc *services.MeetingService, health HealthReporter, maxAudioBytes int64, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(log))

	// Transcripts
	tr := NewTranscriptHandler(svc, maxAudioBytes)
	root.HandleFunc("/api/transcripts", tr.CreateTranscript).Methods(http.MethodPost)
	root.HandleFunc("/api/transcripts", tr.ListTranscripts).Methods(http.MethodGet)
	root.HandleFunc("/api/transcripts/audio", tr.UploadAudio).Methods(http.MethodPost)
	root.HandleFunc("/api/transcripts/{transcriptId}", tr.GetTranscript).Methods(http.MethodGet)
	root.HandleFunc("/api/transcripts/{transcriptId}", tr.DeleteTranscript).Methods(http.MethodDelete)

	// Summaries
	sum := NewSummaryHandler(svc)
	root.HandleFunc("/api/transcripts/{transcriptId}/summaries", sum.Summarize).Methods(http.MethodPost)
	root.HandleFunc("/api/summaries", sum.ListSummaries).Methods(http.MethodGet)
	root.HandleFunc("/api/summaries/{summaryId}", sum.GetSummary).Methods(http.MethodGet)
	root.HandleFunc("/api/summaries/{summaryId}/report", sum.GetReport).Methods(http.MethodGet)

	// Search
	root.HandleFunc("/api/search", NewSearchHandler(svc).HandleSearch).Methods(http.MethodPost)

	// Health and metrics
	root.HandleFunc("/api/health", NewHealthHandler(health).CheckHealth).Methods(http.MethodGet)
	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return root
}
