package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{model.NewValidationError("text", "required"), http.StatusBadRequest},
		{fmt.Errorf("transcript x: %w", model.ErrNotFound), http.StatusNotFound},
		{model.DimensionMismatchError{Want: 3, Got: 4}, http.StatusConflict},
		{&model.StepError{Step: "parse", Err: model.ErrMalformedOutput}, http.StatusBadGateway},
		{fmt.Errorf("%w: refused", model.ErrEmbeddingFailure), http.StatusBadGateway},
		{model.ErrGenerationFailure, http.StatusBadGateway},
		{model.ErrTranscription, http.StatusBadGateway},
		{&model.StepError{Step: "generate", Err: model.ErrBackendTimeout}, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.err), "%v", c.err)
	}
}

func TestWriteServiceError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteServiceError(rr, &model.StepError{Step: "parse", Err: fmt.Errorf("%w: not json", model.ErrMalformedOutput)})
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "parse", body.Step)
	assert.Contains(t, body.Message, "not json")

	rr = httptest.NewRecorder()
	WriteServiceError(rr, errors.New("dsn password leaked"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
}
