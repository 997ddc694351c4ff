// Package transcription turns recorded meeting audio into speaker-labelled text.
package transcription

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Transcriber converts an audio stream into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// SupportedFormats lists accepted audio file extensions.
var SupportedFormats = []string{".mp3", ".wav", ".m4a", ".mp4", ".webm"}

// ValidateAudio checks the file extension and size before any upload.
func ValidateAudio(filename string, size, maxBytes int64) error {
	if filename == "" {
		return model.NewValidationError("file", "no file uploaded")
	}
	if size <= 0 {
		return model.NewValidationError("file", "file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return model.NewValidationError("file", fmt.Sprintf("file size exceeds %dMB limit", maxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range SupportedFormats {
		if ext == f {
			return nil
		}
	}
	return model.NewValidationError("file", fmt.Sprintf("unsupported format %q; supported: %s", ext, strings.Join(SupportedFormats, ", ")))
}
