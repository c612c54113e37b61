package models

import "fmt"

// State is the session lifecycle state.
type State int

const (
	// StateEmpty has no documents.
	StateEmpty State = iota
	// StateDocumented has documents but no index.
	StateDocumented
	// StateReady has an index and a chat engine.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDocumented:
		return "documented"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StateEmpty
	case "documented":
		*s = StateDocumented
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// SessionStatus is a point-in-time snapshot of a session for status views and logs.
type SessionStatus struct {
	State      State    `json:"state"`
	Documents  int      `json:"documents"`
	Segments   int      `json:"segments"`
	Filenames  []string `json:"filenames"`
	Turns      int      `json:"turns"`
	Collection string   `json:"collection,omitempty"`
	// Indexed is the number of segments the collection held when it was built.
	Indexed    int      `json:"indexed"`
	Strategies []string `json:"strategies,omitempty"`
}

// UploadResult reports the outcome of one upload call.
type UploadResult struct {
	Status       string `json:"status"`
	Pages        int    `json:"pages"`
	Files        int    `json:"files"`
	FilesOpened  int    `json:"files_opened"`
	OCRAttempts  int    `json:"ocr_attempts"`
	SkippedPages int    `json:"skipped_pages"`
	Segments     int    `json:"segments"`
	State        State  `json:"state"`
}
