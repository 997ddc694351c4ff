package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

func newSearchCmd(newClient clientFactory) *cobra.Command {
	var (
		query        string
		topK         int
		transcriptID string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search indexed transcript chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("query cannot be empty")
			}
			hits, err := newClient().Search(cmd.Context(), client.SearchRequest{Query: query, TopK: topK, TranscriptID: transcriptID})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), hits)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query text (required)")
	cmd.Flags().IntVarP(&topK, "topk", "k", 5, "Number of top results to return")
	cmd.Flags().StringVarP(&transcriptID, "transcript", "m", "", "Restrict to one transcript")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newHealthCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newClient().Health(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), h); err != nil {
				return err
			}
			if !h.Healthy() {
				return fmt.Errorf("service is %s", h.Status)
			}
			return nil
		},
	}
}
