package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPError(t *testing.T) {
	cases := map[int]ErrorCategory{
		400: Irrecoverable,
		404: Irrecoverable,
		408: Recoverable,
		429: Recoverable,
		500: Recoverable,
		502: Irrecoverable,
		503: Recoverable,
		504: Irrecoverable,
	}
	for status, want := range cases {
		got := NewHTTPError(status, nil, "op")
		assert.Equal(t, want, got.Category, "status %d", status)
	}
}

func TestClassifiedError_ParsesBody(t *testing.T) {
	err := NewHTTPError(502, []byte(`{"error":"Bad Gateway","code":502,"message":"model output is not valid JSON","step":"parse"}`), "summarize")
	assert.Equal(t, "parse", err.Step)
	assert.Contains(t, err.Error(), "model output is not valid JSON")
	assert.Contains(t, err.Error(), "step parse")
	assert.True(t, errors.Is(err, ErrBackend))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsIrrecoverable(err))
}

func TestClassifiedError_Sentinels(t *testing.T) {
	assert.True(t, errors.Is(NewHTTPError(404, nil, "get"), ErrNotFound))
	assert.True(t, errors.Is(NewHTTPError(400, nil, "get"), ErrValidation))
	assert.True(t, errors.Is(NewHTTPError(409, nil, "get"), ErrDimensionMismatch))
	assert.True(t, errors.Is(NewHTTPError(504, nil, "get"), ErrTimeout))

	net := NewNetworkError("get", io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(net, io.ErrUnexpectedEOF))
	assert.False(t, IsIrrecoverable(net))
}
