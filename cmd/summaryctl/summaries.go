package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

func newSummarizeCmd(newClient clientFactory) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "summarize TRANSCRIPT_ID",
		Short: "Summarize a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().Summarize(cmd.Context(), args[0], query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Focus question (defaults to a full summary)")
	return cmd
}

func newHistoryCmd(newClient clientFactory) *cobra.Command {
	var (
		transcriptID string
		since, until string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored summaries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := client.HistoryQuery{TranscriptID: transcriptID, Limit: limit}
			var err error
			if q.Since, err = parseTime("since", since); err != nil {
				return err
			}
			if q.Until, err = parseTime("until", until); err != nil {
				return err
			}
			out, err := newClient().QueryHistory(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&transcriptID, "transcript", "m", "", "Only summaries of this transcript")
	cmd.Flags().StringVar(&since, "since", "", "RFC3339 lower bound (inclusive)")
	cmd.Flags().StringVar(&until, "until", "", "RFC3339 upper bound (inclusive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum summaries to return")
	return cmd
}

func newReportCmd(newClient clientFactory) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "report SUMMARY_ID",
		Short: "Print or save the text report for a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := newClient().GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), report)
				return err
			}
			if err := os.WriteFile(outPath, []byte(report), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the report to this file")
	return cmd
}

func parseTime(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be RFC3339: %w", field, err)
	}
	return t, nil
}
