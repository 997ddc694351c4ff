package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

func newIngestCmd(newClient clientFactory) *cobra.Command {
	var file, title string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a transcript text file (- for stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if title == "" && file != "-" {
				title = filepath.Base(file)
			}
			tr, err := newClient().IngestTranscript(cmd.Context(), client.IngestRequest{Text: text, Title: title})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tr)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Transcript file path (required)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (defaults to the file name)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newUploadCmd(newClient clientFactory) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "upload AUDIO_FILE",
		Short: "Upload an audio recording for transcription and ingest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			tr, err := newClient().UploadAudio(cmd.Context(), filepath.Base(args[0]), f, title)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tr)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title")
	return cmd
}

func newTranscriptsCmd(newClient clientFactory) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List stored transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient().ListTranscripts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, tr := range out {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d chunks\t%s\n", tr.ID, tr.CreatedAt.Format("2006-01-02 15:04"), tr.ChunkCount, tr.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum transcripts to list")
	return cmd
}

func newShowCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "show TRANSCRIPT_ID",
		Short: "Show a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := newClient().GetTranscript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tr)
		},
	}
}

func newDeleteCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TRANSCRIPT_ID",
		Short: "Delete a transcript with its chunks and summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteTranscript(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
