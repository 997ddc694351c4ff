package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/respond"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/validate"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
)

// multipart overhead allowed on top of the audio size limit
const uploadSlack = 1 << 20

type TranscriptHandler struct {
	svc           *services.MeetingService
	maxAudioBytes int64
}

func NewTranscriptHandler(svc *services.MeetingService, maxAudioBytes int64) *TranscriptHandler {
	return &TranscriptHandler{svc: svc, maxAudioBytes: maxAudioBytes}
}

// CreateTranscript POST /api/transcripts
func (h *TranscriptHandler) CreateTranscript(w http.ResponseWriter, r *http.Request) {
	var req services.IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, validate.MaxTranscriptBytes+uploadSlack)).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateTranscript(req.Text, req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.Ingest(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UploadAudio POST /api/transcripts/audio (multipart field "file", optional "title")
func (h *TranscriptHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	if h.maxAudioBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+uploadSlack)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		respond.WriteBadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	title := r.FormValue("title")
	if err := validate.Title(title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.IngestAudio(r.Context(), header.Filename, header.Size, file, title)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListTranscripts GET /api/transcripts?limit=
func (h *TranscriptHandler) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.ListTranscripts(r.Context(), limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Transcript{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"transcripts": out, "count": len(out)})
}

// GetTranscript GET /api/transcripts/{transcriptId}
func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetTranscript(r.Context(), mux.Vars(r)["transcriptId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteTranscript DELETE /api/transcripts/{transcriptId}
func (h *TranscriptHandler) DeleteTranscript(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTranscript(r.Context(), mux.Vars(r)["transcriptId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
