package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"
)

// IngestTranscript stores and indexes transcript text.
func IngestTranscript(ctx context.Context, t *Transport, req types.IngestRequest) (*types.Transcript, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op: "ingest transcript",
		ok: []int{http.StatusCreated},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetBody(req).Post("/api/transcripts")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Transcript](resp, "ingest transcript")
}

// UploadAudio sends an audio file for transcription and ingest.
func UploadAudio(ctx context.Context, t *Transport, filename string, audio io.Reader, title string) (*types.Transcript, error) {
	if err := types.ValidateIDPresent(filename, "filename"); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op: "upload audio",
		ok: []int{http.StatusCreated},
		send: func(r *resty.Request) (*resty.Response, error) {
			if title != "" {
				r.SetFormData(map[string]string{"title": title})
			}
			return r.SetFileReader("file", filename, audio).Post("/api/transcripts/audio")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Transcript](resp, "upload audio")
}

// ListTranscripts returns stored transcripts, newest first.
func ListTranscripts(ctx context.Context, t *Transport, limit int) ([]types.Transcript, error) {
	resp, err := t.do(ctx, call{
		op:         "list transcripts",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			if limit > 0 {
				r.SetQueryParam("limit", strconv.Itoa(limit))
			}
			return r.Get("/api/transcripts")
		},
	})
	if err != nil {
		return nil, err
	}
	out, err := decode[types.ListTranscriptsResponse](resp, "list transcripts")
	if err != nil {
		return nil, err
	}
	return out.Transcripts, nil
}

func GetTranscript(ctx context.Context, t *Transport, transcriptID string) (*types.Transcript, error) {
	if err := types.ValidateIDPresent(transcriptID, "transcriptId"); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op:         "get transcript",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("transcriptId", transcriptID).Get("/api/transcripts/{transcriptId}")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Transcript](resp, "get transcript")
}

// DeleteTranscript removes the transcript with its chunks and summaries.
func DeleteTranscript(ctx context.Context, t *Transport, transcriptID string) error {
	if err := types.ValidateIDPresent(transcriptID, "transcriptId"); err != nil {
		return err
	}
	_, err := t.do(ctx, call{
		op:         "delete transcript",
		idempotent: true,
		ok:         []int{http.StatusNoContent},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("transcriptId", transcriptID).Delete("/api/transcripts/{transcriptId}")
		},
	})
	return err
}
