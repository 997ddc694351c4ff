package client

import (
	clienterrors "github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/errors"
	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"
)

// Errors returned by Client methods can be matched with errors.Is.
var (
	ErrInvalidArgument   = types.ErrInvalidArgument
	ErrNotFound          = clienterrors.ErrNotFound
	ErrValidation        = clienterrors.ErrValidation
	ErrDimensionMismatch = clienterrors.ErrDimensionMismatch
	ErrBackend           = clienterrors.ErrBackend
	ErrTimeout           = clienterrors.ErrTimeout
)

// APIError is the error type for non-2xx responses and transport failures.
// Step names the pipeline step that failed when the server reports one.
type APIError = clienterrors.ClassifiedError

// IsRetryable reports whether err came from a failure worth retrying.
func IsRetryable(err error) bool {
	return err != nil && !clienterrors.IsIrrecoverable(err) && asAPIError(err)
}
