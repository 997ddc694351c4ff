package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"
)

// GetHealth reads the service health report. It always answers 200; the
// status field says whether every component is up.
func GetHealth(ctx context.Context, t *Transport) (*types.HealthResponse, error) {
	resp, err := t.do(ctx, call{
		op: "health",
		ok: []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.Get("/api/health")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.HealthResponse](resp, "health")
}
