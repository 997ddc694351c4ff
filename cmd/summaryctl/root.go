package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

func newRootCmd() *cobra.Command {
	var (
		apiFlag string
		timeout time.Duration
	)
	root := &cobra.Command{
		Use:           "summaryctl",
		Short:         "CLI client for the meeting summary service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Meeting summary service base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Per-request HTTP timeout")

	newClient := func() *client.Client {
		return client.New(apiFlag, client.WithHTTPTimeout(timeout))
	}
	root.AddCommand(
		newIngestCmd(newClient),
		newUploadCmd(newClient),
		newTranscriptsCmd(newClient),
		newShowCmd(newClient),
		newDeleteCmd(newClient),
		newSummarizeCmd(newClient),
		newHistoryCmd(newClient),
		newReportCmd(newClient),
		newSearchCmd(newClient),
		newHealthCmd(newClient),
	)
	return root
}

type clientFactory func() *client.Client

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
