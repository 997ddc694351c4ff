package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/respond"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/validate"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
)

type SummaryHandler struct {
	svc *services.MeetingService
}

func NewSummaryHandler(svc *services.MeetingService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Summarize POST /api/transcripts/{transcriptId}/summaries
// The body is optional; an absent query uses the default summarization task.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Query(req.Query); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.Summarize(r.Context(), mux.Vars(r)["transcriptId"], req.Query)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListSummaries GET /api/summaries?transcriptId=&since=&until=&limit=
func (h *SummaryHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.SummaryFilter{TranscriptID: q.Get("transcriptId")}
	var err error
	if f.Since, err = validate.Timestamp("since", q.Get("since")); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if f.Until, err = validate.Timestamp("until", q.Get("until")); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if f.Limit, err = validate.Limit(q.Get("limit")); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.QueryHistory(r.Context(), f)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Summary{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"summaries": out, "count": len(out)})
}

// GetSummary GET /api/summaries/{summaryId}
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetSummary(r.Context(), mux.Vars(r)["summaryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetReport GET /api/summaries/{summaryId}/report
func (h *SummaryHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["summaryId"]
	out, err := h.svc.Report(r.Context(), id)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="meeting-summary-`+id+`.txt"`)
	respond.WriteText(w, http.StatusOK, out)
}
