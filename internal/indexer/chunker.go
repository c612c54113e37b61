// Package indexer splits page documents into segments and builds the session's retrieval index.
package indexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/pdfchat/internal/models"
)

var (
	sentenceRe       = regexp.MustCompile(`[^.!?]*[.!?]+["')\]]*|[^.!?]+$`)
	segmentNamespace = uuid.MustParse("0b7d5a9e-52c4-4f0e-8d1b-7a6c3e9f2b10")
)

// Chunker splits page documents into overlapping segments that prefer sentence boundaries.
// Size and overlap are counted in whitespace-separated tokens.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in tokens).
// An overlap not smaller than the size is reduced to size/4.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// unit is a sentence, or a window of a sentence longer than the chunk size.
type unit struct {
	words []string
}

// Split chunks every document in order. Segments never span two documents, and the output
// depends only on docs and the chunker parameters.
func (c *Chunker) Split(docs []models.PageDocument) []models.Segment {
	var segments []models.Segment
	for ordinal, doc := range docs {
		for i, text := range c.chunk(doc.Text) {
			segments = append(segments, models.Segment{
				ID:         segmentID(doc.ID, ordinal, i),
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				Page:       doc.Page,
				Index:      i,
				Text:       text,
			})
		}
	}
	return segments
}

// chunk packs whole sentences up to the chunk size. Each new chunk starts with the trailing
// sentences of the previous one that fit in the overlap.
func (c *Chunker) chunk(text string) []string {
	units := c.units(Preprocess(text))
	if len(units) == 0 {
		return nil
	}

	var (
		chunks  []string
		current []unit
		count   int
		fresh   bool
	)
	emit := func() {
		chunks = append(chunks, joinUnits(current))
		fresh = false
	}
	for _, u := range units {
		n := len(u.words)
		if count+n > c.chunkSize && fresh {
			emit()
			current, count = c.overlapTail(current)
		}
		for count+n > c.chunkSize && len(current) > 0 {
			count -= len(current[0].words)
			current = current[1:]
		}
		current = append(current, u)
		count += n
		fresh = true
	}
	if fresh {
		emit()
	}
	return chunks
}

func (c *Chunker) overlapTail(current []unit) ([]unit, int) {
	count := 0
	start := len(current)
	for start > 0 {
		n := len(current[start-1].words)
		if count+n > c.chunkOverlap {
			break
		}
		count += n
		start--
	}
	tail := make([]unit, len(current)-start)
	copy(tail, current[start:])
	return tail, count
}

// units splits text into sentences, breaking any sentence longer than the chunk size into
// overlapping word windows.
func (c *Chunker) units(text string) []unit {
	var out []unit
	for _, s := range splitSentences(text) {
		words := strings.Fields(s)
		if len(words) <= c.chunkSize {
			out = append(out, unit{words: words})
			continue
		}
		step := c.chunkSize - c.chunkOverlap
		if step <= 0 {
			step = 1
		}
		for i := 0; i < len(words); i += step {
			end := i + c.chunkSize
			if end > len(words) {
				end = len(words)
			}
			out = append(out, unit{words: words[i:end]})
			if end >= len(words) {
				break
			}
		}
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func joinUnits(units []unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strings.Join(u.words, " ")
	}
	return strings.Join(parts, " ")
}

func segmentID(docID string, ordinal, index int) string {
	return uuid.NewSHA1(segmentNamespace, []byte(fmt.Sprintf("%s\x00%d\x00%d", docID, ordinal, index))).String()
}
