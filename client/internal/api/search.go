package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"
)

// Search performs a similarity search. Searches have no side effects, so
// the POST is retried like a read.
func Search(ctx context.Context, t *Transport, req types.SearchRequest) ([]types.SearchHit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op:         "search",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetBody(req).Post("/api/search")
		},
	})
	if err != nil {
		return nil, err
	}
	out, err := decode[types.SearchResponse](resp, "search")
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}
