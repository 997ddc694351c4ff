package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/priyanshu10cruzo/ai-meeting-summary/summaryservice"
)

func main() {
	if err := summaryservice.Run(); err != nil {
		log.Error().Err(err).Msg("summary-service exited with error")
		os.Exit(1)
	}
}
