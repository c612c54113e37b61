package models

import "fmt"

// Hit is a single retrieved segment with fused keyword/semantic scores.
type Hit struct {
	Segment       *Segment `json:"segment"`
	Score         float64  `json:"score"`
	KeywordScore  float64  `json:"keyword_score"`
	SemanticScore float64  `json:"semantic_score"`
	Rank          int      `json:"rank"`
}

// Citation formats the hit's provenance as "(filename, page N)".
func (h *Hit) Citation() string {
	if h.Segment == nil {
		return ""
	}
	return fmt.Sprintf("(%s, page %d)", h.Segment.Filename, h.Segment.Page)
}

// Retrieval is the outcome of routing one query through one or more strategies.
// Context is the text handed to the answer composer.
type Retrieval struct {
	Query      string   `json:"query"`
	Strategies []string `json:"strategies"`
	Hits       []*Hit   `json:"hits,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Context    string   `json:"context"`
}

// ChatResponse is the answer returned for one chat call.
type ChatResponse struct {
	Question        string     `json:"question"`
	Rewritten       string     `json:"rewritten,omitempty"`
	StandaloneQuery string     `json:"standalone_query,omitempty"`
	Answer          string     `json:"answer"`
	Retrieval       *Retrieval `json:"retrieval,omitempty"`
	QueryTime       int64      `json:"query_time_ms"`
}
