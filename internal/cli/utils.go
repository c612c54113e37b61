// Package cli formats answers and upload reports for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/pkg/utils"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnswer writes a chat response to w. Text output lists the cited segments when
// showSources is set; JSON output always carries the full retrieval.
func WriteAnswer(w io.Writer, resp *models.ChatResponse, format OutputFormat, showSources bool) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeAnswerText(w, resp, showSources)
		return nil
	}
}

func writeAnswerText(w io.Writer, resp *models.ChatResponse, showSources bool) {
	fmt.Fprintln(w, resp.Answer)
	if !showSources || resp.Retrieval == nil {
		return
	}
	fmt.Fprintf(w, "\n--- Sources (%s, %dms) ---\n", strings.Join(resp.Retrieval.Strategies, " + "), resp.QueryTime)
	for _, hit := range resp.Retrieval.Hits {
		writeOneHit(w, hit)
	}
	if len(resp.Retrieval.Hits) == 0 && resp.Retrieval.Summary != "" {
		fmt.Fprintf(w, "summary: %s\n", TruncateWords(resp.Retrieval.Summary, 40))
	}
}

func writeOneHit(w io.Writer, hit *models.Hit) {
	fmt.Fprintf(w, "[%d] %s score %.3f (keyword %.3f, semantic %.3f)\n",
		hit.Rank, hit.Citation(), hit.Score, hit.KeywordScore, hit.SemanticScore)
	if hit.Segment != nil {
		fmt.Fprintf(w, "    %s\n", utils.Truncate(strings.Join(strings.Fields(hit.Segment.Text), " "), 160))
	}
}

// WriteUpload writes the upload status line, plus skip counts when anything was dropped.
func WriteUpload(w io.Writer, res *models.UploadResult) {
	fmt.Fprintln(w, res.Status)
	if res.SkippedPages > 0 || res.FilesOpened < res.Files {
		fmt.Fprintf(w, "(%d of %d files opened, %d pages skipped, %d OCR attempts)\n",
			res.FilesOpened, res.Files, res.SkippedPages, res.OCRAttempts)
	}
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
