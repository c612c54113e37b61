package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/extract"
	"github.com/hyperjump/pdfchat/internal/llm/llmtest"
	"github.com/hyperjump/pdfchat/internal/models"
)

// pagesExtractor returns one page document per text, named after the file.
type pagesExtractor struct {
	pages map[string][]string
}

func (p *pagesExtractor) Extract(_ context.Context, files []models.UploadedFile) ([]models.PageDocument, extract.Report) {
	var docs []models.PageDocument
	report := extract.Report{Files: len(files)}
	for _, f := range files {
		texts, ok := p.pages[f.Name]
		if !ok {
			continue
		}
		report.FilesOpened++
		for i, text := range texts {
			report.Pages++
			if text == "" {
				report.Skipped++
				continue
			}
			docs = append(docs, models.PageDocument{ID: fmt.Sprintf("%s-%d", f.Name, i+1), Text: text, Filename: f.Name, Page: i + 1})
		}
	}
	return docs, report
}

type brokenEmbedder struct {
	*embedding.MockEmbedder
}

func (brokenEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func file(name string) models.UploadedFile {
	return models.UploadedFile{Name: name, Data: []byte("%PDF-1.4 " + name)}
}

func newTestController(t *testing.T, ex Extractor, emb embedding.Embedder, fake *llmtest.Fake) *Controller {
	t.Helper()
	if emb == nil {
		emb = embedding.NewMockEmbedder(64)
	}
	if fake == nil {
		fake = &llmtest.Fake{Default: "answer"}
	}
	c := NewController(config.Default(), ex, emb, fake)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func defaultPages() *pagesExtractor {
	return &pagesExtractor{pages: map[string][]string{
		"report.pdf":   {"Revenue in 2023 was 4 million dollars.", "Costs were 3 million dollars."},
		"handbook.pdf": {"Employees receive twenty vacation days."},
		"scan.pdf":     {"", ""},
	}}
}

func TestController_ChatBeforeUpload(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	if _, err := c.Chat(context.Background(), "hello"); !errors.Is(err, ErrEngineNotInitialized) {
		t.Fatalf("expected ErrEngineNotInitialized, got %v", err)
	}
	if c.State() != models.StateEmpty {
		t.Errorf("state = %v", c.State())
	}
}

func TestController_UploadThenChat(t *testing.T) {
	fake := &llmtest.Fake{Default: "It was 4 million dollars. (Reference: report.pdf, page 1)"}
	c := newTestController(t, defaultPages(), nil, fake)
	ctx := context.Background()

	res, err := c.Upload(ctx, []models.UploadedFile{file("report.pdf")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Status != "Uploaded 2 pages from 1 files." {
		t.Errorf("status = %q", res.Status)
	}
	if res.State != models.StateReady || c.State() != models.StateReady {
		t.Fatalf("state = %v", c.State())
	}

	resp, err := c.Chat(ctx, "What was revenue in 2023?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(resp.Answer, "4 million") {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Retrieval == nil || len(resp.Retrieval.Hits) == 0 || resp.Retrieval.Hits[0].Segment.Page != 1 {
		t.Errorf("expected a page 1 hit, got %+v", resp.Retrieval)
	}
	if c.Status().Turns != 2 {
		t.Errorf("turns = %d", c.Status().Turns)
	}
}

func TestController_ReuploadRechunksEverything(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	ctx := context.Background()

	if _, err := c.Upload(ctx, []models.UploadedFile{file("report.pdf")}); err != nil {
		t.Fatal(err)
	}
	first := c.Status().Segments
	res, err := c.Upload(ctx, []models.UploadedFile{file("handbook.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != "Uploaded 3 pages from 1 files." {
		t.Errorf("status = %q", res.Status)
	}
	st := c.Status()
	if st.Documents != 3 || st.Segments != first+1 {
		t.Errorf("status = %+v", st)
	}
	col, err := c.client.GetCollection(c.cfg.Retrieval.CollectionName)
	if err != nil {
		t.Fatal(err)
	}
	n, err := col.All(ctx)
	if err != nil || len(n) != st.Segments {
		t.Errorf("collection holds %d segments, want %d (%v)", len(n), st.Segments, err)
	}
	if got := st.Filenames; len(got) != 2 || got[0] != "report.pdf" || got[1] != "handbook.pdf" {
		t.Errorf("filenames = %v", got)
	}
	if st.Indexed != st.Segments {
		t.Errorf("indexed = %d, segments = %d", st.Indexed, st.Segments)
	}
	if got := strings.Join(st.Strategies, ","); got != "vector search,summary" {
		t.Errorf("strategies = %q", got)
	}
}

func TestController_ZeroTextUpload(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	res, err := c.Upload(context.Background(), []models.UploadedFile{file("scan.pdf"), file("unknown.pdf")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Status != "Uploaded 0 pages from 2 files." || res.State != models.StateEmpty {
		t.Errorf("result = %+v", res)
	}
	if _, err := c.Chat(context.Background(), "anything"); !errors.Is(err, ErrEngineNotInitialized) {
		t.Errorf("expected ErrEngineNotInitialized, got %v", err)
	}
}

func TestController_IndexFailureLeavesDocumented(t *testing.T) {
	c := newTestController(t, defaultPages(), brokenEmbedder{embedding.NewMockEmbedder(8)}, nil)
	res, err := c.Upload(context.Background(), []models.UploadedFile{file("report.pdf")})
	if err == nil || !strings.Contains(err.Error(), "embedding service unavailable") {
		t.Fatalf("expected the embedding error to surface, got %v", err)
	}
	if res == nil || res.State != models.StateDocumented || c.State() != models.StateDocumented {
		t.Fatalf("state = %v", c.State())
	}
	if c.Status().Documents != 2 {
		t.Errorf("documents should stay appended, got %d", c.Status().Documents)
	}
	if _, err := c.Chat(context.Background(), "q"); !errors.Is(err, ErrEngineNotInitialized) {
		t.Errorf("expected ErrEngineNotInitialized, got %v", err)
	}
}

func TestController_ResetTwice(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	ctx := context.Background()
	if _, err := c.Upload(ctx, []models.UploadedFile{file("report.pdf")}); err != nil {
		t.Fatal(err)
	}
	c.Reset(ctx)
	first := c.Status()
	c.Reset(ctx)
	second := c.Status()
	if first.State != models.StateEmpty || second.State != models.StateEmpty {
		t.Errorf("states = %v, %v", first.State, second.State)
	}
	if first.Documents != 0 || first.Segments != 0 || second.Documents != 0 {
		t.Errorf("reset left state behind: %+v", first)
	}
	if first.Indexed != 0 || first.Strategies != nil || c.client != nil {
		t.Errorf("reset left the index behind: %+v", first)
	}
	if _, err := c.Chat(ctx, "q"); !errors.Is(err, ErrEngineNotInitialized) {
		t.Errorf("chat after reset: %v", err)
	}
}

func TestController_ResetToleratesDeleteFailure(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	ctx := context.Background()
	if _, err := c.Upload(ctx, []models.UploadedFile{file("report.pdf")}); err != nil {
		t.Fatal(err)
	}
	// The store is already gone; deleting the collection fails.
	_ = c.client.Close()
	c.Reset(ctx)
	if c.State() != models.StateEmpty {
		t.Errorf("state = %v", c.State())
	}

	if _, err := c.Upload(ctx, []models.UploadedFile{file("handbook.pdf")}); err != nil {
		t.Fatalf("upload after reset should get a fresh store: %v", err)
	}
	if c.State() != models.StateReady {
		t.Errorf("state = %v", c.State())
	}
}

func TestController_ReuploadClearsMemory(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	ctx := context.Background()
	_, _ = c.Upload(ctx, []models.UploadedFile{file("report.pdf")})
	_, _ = c.Chat(ctx, "What was revenue?")
	_, _ = c.Upload(ctx, []models.UploadedFile{file("handbook.pdf")})
	if c.Status().Turns != 0 {
		t.Errorf("a rebuilt engine starts with empty memory, got %d turns", c.Status().Turns)
	}
}

func TestController_EmptyQuestion(t *testing.T) {
	c := newTestController(t, defaultPages(), nil, nil)
	_, _ = c.Upload(context.Background(), []models.UploadedFile{file("report.pdf")})
	if _, err := c.Chat(context.Background(), "   "); err == nil {
		t.Error("expected error for blank question")
	}
}

type fakeOpener struct {
	pages map[string][]string
}

type fakeDocument struct{ pages []string }

func (o *fakeOpener) Open(data []byte) (extract.PDFDocument, error) {
	for name, pages := range o.pages {
		if strings.HasSuffix(string(data), name) {
			return &fakeDocument{pages: pages}, nil
		}
	}
	return nil, errors.New("not a PDF")
}

func (d *fakeDocument) NumPages() int                     { return len(d.pages) }
func (d *fakeDocument) PageText(page int) (string, error) { return d.pages[page-1], nil }

type fakeRasterizer struct{ dpis []float64 }

func (r *fakeRasterizer) Render(_ context.Context, _ []byte, page int, dpi float64) ([]byte, error) {
	r.dpis = append(r.dpis, dpi)
	return []byte(fmt.Sprintf("image-%d", page)), nil
}

type fakeRecognizer struct {
	text  map[string]string
	calls int
}

func (r *fakeRecognizer) Recognize(_ context.Context, image []byte) (string, error) {
	r.calls++
	return r.text[string(image)], nil
}

func TestController_ScannedPDFEndToEnd(t *testing.T) {
	raster := &fakeRasterizer{}
	rec := &fakeRecognizer{text: map[string]string{"image-1": "Scanned contract signed on 1 May 2021."}}
	ex := extract.NewExtractor(config.DefaultOCRMinChars, config.DefaultOCRDPI,
		extract.WithOpener(&fakeOpener{pages: map[string][]string{"scan.pdf": {"", "  "}}}),
		extract.WithOCR(raster, rec))
	c := newTestController(t, ex, nil, nil)

	res, err := c.Upload(context.Background(), []models.UploadedFile{file("scan.pdf")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.calls != 2 || res.OCRAttempts != 2 {
		t.Errorf("both pages should go through OCR: calls=%d attempts=%d", rec.calls, res.OCRAttempts)
	}
	for _, dpi := range raster.dpis {
		if dpi != 300 {
			t.Errorf("rendered at %v DPI", dpi)
		}
	}
	if res.Pages != 1 || c.Status().Documents != 1 {
		t.Errorf("expected exactly one page document, got %+v", res)
	}
	if c.State() != models.StateReady {
		t.Errorf("state = %v", c.State())
	}
}

func TestValidateUploadSize(t *testing.T) {
	files := []models.UploadedFile{{Name: "a.pdf", Data: make([]byte, 600)}, {Name: "b.pdf", Data: make([]byte, 500)}}
	err := ValidateUploadSize(files, 1000)
	var tooLarge *UploadTooLargeError
	if !errors.As(err, &tooLarge) || tooLarge.Size != 1100 || tooLarge.Limit != 1000 {
		t.Errorf("expected UploadTooLargeError, got %v", err)
	}
	if err := ValidateUploadSize(files, 1100); err != nil {
		t.Errorf("at the limit should pass: %v", err)
	}
	if err := ValidateUploadSize(files, 0); err != nil {
		t.Errorf("zero limit disables the check: %v", err)
	}
}
