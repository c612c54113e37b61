// Package models defines core data structures for uploads, page documents, segments, and chat.
package models

// UploadedFile is a raw PDF byte stream with its declared filename. It is consumed
// once per upload call.
type UploadedFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Size returns the file size in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// TotalSize returns the combined size of files in bytes.
func TotalSize(files []UploadedFile) int64 {
	var n int64
	for _, f := range files {
		n += f.Size()
	}
	return n
}

// PageDocument is the extracted text of one PDF page with its provenance.
// It is never mutated after creation.
type PageDocument struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	OCR      bool   `json:"ocr"`
}

// Segment is a chunk of one PageDocument, the unit that gets embedded and retrieved.
type Segment struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Filename   string    `json:"filename" db:"filename"`
	Page       int       `json:"page" db:"page"`
	Index      int       `json:"index" db:"segment_index"`
	Text       string    `json:"text" db:"content"`
	Embedding  []float32 `json:"-" db:"-"`
}

// Filenames returns the distinct filenames of docs in first-seen order.
func Filenames(docs []PageDocument) []string {
	seen := make(map[string]struct{}, len(docs))
	var names []string
	for _, d := range docs {
		if _, ok := seen[d.Filename]; ok {
			continue
		}
		seen[d.Filename] = struct{}{}
		names = append(names, d.Filename)
	}
	return names
}
