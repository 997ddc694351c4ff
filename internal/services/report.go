package services

import (
	"strings"
	"time"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

const (
	rule         = "=================================================="
	notAvailable = "Not available"
)

// RenderReport formats a summary as a sectioned text document followed by
// the full transcript.
func RenderReport(tr *model.Transcript, s *model.Summary) string {
	var b strings.Builder
	b.WriteString("MEETING SUMMARY REPORT\n")
	b.WriteString("Generated on: " + s.CreatedAt.UTC().Format(time.DateTime) + "\n")
	b.WriteString("Meeting ID: " + tr.ID + "\n")
	if tr.Title != "" {
		b.WriteString("Title: " + tr.Title + "\n")
	}
	b.WriteString("Summary ID: " + s.ID + "\n")

	section(&b, "MEETING SUMMARY", s.Summary)
	section(&b, "PARTICIPANTS", bullets(s.Participants))
	section(&b, "MAIN TOPICS DISCUSSED", bullets(s.Topics))
	section(&b, "ACTION ITEMS & NEXT STEPS", bullets(s.ActionItems))
	section(&b, "KEY DECISIONS MADE", bullets(s.Decisions))
	section(&b, "KEY POINTS", bullets(s.KeyPoints))
	section(&b, "IMPORTANT NOTES & FOLLOW-UPS", s.Notes)
	section(&b, "FULL TRANSCRIPT", tr.Text)
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	b.WriteString("\n" + rule + "\n" + title + "\n" + rule + "\n")
	if strings.TrimSpace(body) == "" {
		body = notAvailable
	}
	b.WriteString(body)
	b.WriteString("\n")
}

func bullets(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}
