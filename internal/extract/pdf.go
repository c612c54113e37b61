package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeOpener reads the PDF text layer with ledongthuc/pdf.
type NativeOpener struct{}

// Open parses data as a PDF.
func (NativeOpener) Open(data []byte) (PDFDocument, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return &nativeDocument{reader: r}, nil
}

type nativeDocument struct {
	reader *pdf.Reader
}

func (d *nativeDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *nativeDocument) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extract page %d: %v", page, r)
		}
	}()
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", page, err)
	}
	return text, nil
}
