// Package extract turns uploaded PDFs into per-page text documents, falling back to OCR
// for pages without a usable text layer.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// ErrOCRUnavailable is returned by the rasterizer or recognizer when the binary was built
// without the native libraries they need.
var ErrOCRUnavailable = errors.New("OCR support not available in this build")

// PDFDocument is an opened PDF whose pages can be read as plain text.
type PDFDocument interface {
	NumPages() int
	// PageText returns the native text of the 1-based page.
	PageText(page int) (string, error)
}

// PDFOpener opens raw bytes as a PDF.
type PDFOpener interface {
	Open(data []byte) (PDFDocument, error)
}

// Rasterizer renders one 1-based page of a PDF to a PNG image at the given resolution.
type Rasterizer interface {
	Render(ctx context.Context, data []byte, page int, dpi float64) ([]byte, error)
}

// Recognizer runs optical character recognition on an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Report counts what happened during one Extract call.
type Report struct {
	Files        int
	FilesOpened  int
	Pages        int
	OCRAttempts  int
	OCRSucceeded int
	Skipped      int
}

// Extractor extracts page documents from uploaded PDFs.
type Extractor struct {
	opener     PDFOpener
	rasterizer Rasterizer
	recognizer Recognizer
	minChars   int
	dpi        float64
	logger     *zap.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets a logger for skipped files and pages.
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// WithOpener replaces the native PDF text reader.
func WithOpener(o PDFOpener) ExtractorOption {
	return func(e *Extractor) { e.opener = o }
}

// WithOCR replaces the page rasterizer and the text recognizer.
func WithOCR(r Rasterizer, rec Recognizer) ExtractorOption {
	return func(e *Extractor) {
		e.rasterizer = r
		e.recognizer = rec
	}
}

// NewExtractor returns an extractor that triggers OCR when a page's trimmed native text is
// shorter than minChars, rendering the page at dpi. Defaults use ledongthuc/pdf for text,
// MuPDF for rendering and Tesseract for recognition.
func NewExtractor(minChars int, dpi float64, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		opener:     NativeOpener{},
		rasterizer: NewFitzRasterizer(),
		recognizer: NewTesseractRecognizer("eng"),
		minChars:   minChars,
		dpi:        dpi,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one PageDocument per page that yields non-empty text, in file then page
// order. Files that cannot be opened and pages whose OCR fails or is empty are logged
// and skipped; they never fail the batch.
func (e *Extractor) Extract(ctx context.Context, files []models.UploadedFile) ([]models.PageDocument, Report) {
	var docs []models.PageDocument
	report := Report{Files: len(files)}

	for _, file := range files {
		if ctx.Err() != nil {
			e.logger.Warn("extraction cancelled", zap.Error(ctx.Err()))
			break
		}
		pdfDoc, err := e.open(file.Data)
		if err != nil {
			e.logger.Warn("could not open PDF, skipping file", zap.String("filename", file.Name), zap.Error(err))
			continue
		}
		report.FilesOpened++

		for page := 1; page <= pdfDoc.NumPages(); page++ {
			report.Pages++
			text, ocr, ok := e.pageText(ctx, file, pdfDoc, page, &report)
			if !ok {
				report.Skipped++
				continue
			}
			docs = append(docs, models.PageDocument{
				ID:       pageDocumentID(file.Name, page, len(docs)),
				Text:     text,
				Filename: file.Name,
				Page:     page,
				OCR:      ocr,
			})
		}
	}

	e.logger.Debug("extraction finished",
		zap.Int("files", report.Files),
		zap.Int("files_opened", report.FilesOpened),
		zap.Int("pages", report.Pages),
		zap.Int("documents", len(docs)),
		zap.Int("ocr_attempts", report.OCRAttempts),
	)
	return docs, report
}

func (e *Extractor) pageText(ctx context.Context, file models.UploadedFile, pdfDoc PDFDocument, page int, report *Report) (string, bool, bool) {
	native, err := pdfDoc.PageText(page)
	if err != nil {
		e.logger.Debug("native text extraction failed", zap.String("filename", file.Name), zap.Int("page", page), zap.Error(err))
	}
	text := strings.TrimSpace(native)
	if len([]rune(text)) >= e.minChars {
		return text, false, true
	}

	report.OCRAttempts++
	e.logger.Info("running OCR on page", zap.String("filename", file.Name), zap.Int("page", page))
	text, err = e.ocr(ctx, file.Data, page)
	if err != nil {
		e.logger.Warn("OCR failed, skipping page", zap.String("filename", file.Name), zap.Int("page", page), zap.Error(err))
		return "", true, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Warn("OCR produced no text, skipping page", zap.String("filename", file.Name), zap.Int("page", page))
		return "", true, false
	}
	report.OCRSucceeded++
	return text, true, true
}

func (e *Extractor) ocr(ctx context.Context, data []byte, page int) (string, error) {
	img, err := e.rasterizer.Render(ctx, data, page, e.dpi)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	text, err := e.recognizer.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// open guards against panics inside the PDF parser on malformed input.
func (e *Extractor) open(data []byte) (doc PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return e.opener.Open(data)
}

var pageNamespace = uuid.MustParse("6f1c2b4e-1d0a-4b7e-9a53-3c1f0e2d8a71")

// pageDocumentID is stable for the same file, page and position in the batch.
func pageDocumentID(filename string, page, position int) string {
	return uuid.NewSHA1(pageNamespace, []byte(fmt.Sprintf("%s\x00%d\x00%d", filename, page, position))).String()
}
