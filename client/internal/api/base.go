package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	clienterrors "github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/errors"
)

// Transport carries the HTTP state shared by every API call.
type Transport struct {
	HTTP       *resty.Client
	MaxRetries uint64
	Backoff    time.Duration
	// OnRetry is invoked before each retry of op. Optional.
	OnRetry func(op string)
}

// call describes one request. Only idempotent calls are retried.
type call struct {
	op         string
	idempotent bool
	ok         []int
	send       func(r *resty.Request) (*resty.Response, error)
}

func (t *Transport) do(ctx context.Context, c call) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp *resty.Response
	attempt := func() error {
		r, err := c.send(t.HTTP.R().SetContext(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return clienterrors.NewNetworkError(c.op, err)
		}
		if !slices.Contains(c.ok, r.StatusCode()) {
			ce := clienterrors.NewHTTPError(r.StatusCode(), r.Body(), c.op)
			if ce.Category == clienterrors.Irrecoverable {
				return backoff.Permanent(ce)
			}
			return ce
		}
		resp = r
		return nil
	}

	if !c.idempotent || t.MaxRetries == 0 {
		err := attempt()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return resp, err
	}

	exp := backoff.NewExponentialBackOff()
	if t.Backoff > 0 {
		exp.InitialInterval = t.Backoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, t.MaxRetries), ctx)
	err := backoff.RetryNotify(attempt, policy, func(error, time.Duration) {
		if t.OnRetry != nil {
			t.OnRetry(c.op)
		}
	})
	return resp, err
}

func decode[T any](resp *resty.Response, op string) (*T, error) {
	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &out, nil
}
