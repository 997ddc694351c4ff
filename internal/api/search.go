package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/respond"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api/validate"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
)

// SearchHandler handles POST /api/search
type SearchHandler struct {
	svc *services.MeetingService
}

func NewSearchHandler(svc *services.MeetingService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type searchRequest struct {
	Query        string `json:"query"`
	TopK         int    `json:"topK"`
	TranscriptID string `json:"transcriptId"`
}

func decodeSearchRequest(r *http.Request) (searchRequest, error) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := validate.NonEmpty("query", req.Query); err != nil {
		return req, err
	}
	if err := validate.Query(req.Query); err != nil {
		return req, err
	}
	if req.TopK < 0 || req.TopK > services.MaxSearchTopK {
		return req, model.NewValidationError("topK", "must be between 1 and 50")
	}
	return req, nil
}

// HandleSearch returns the chunks most similar to the query.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSearchRequest(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	results, err := h.svc.Search(r.Context(), req.Query, req.TopK, req.TranscriptID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if results == nil {
		results = []model.RetrievalRecord{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}
