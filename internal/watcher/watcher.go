// Package watcher uploads PDFs dropped into an inbox directory. Events are debounced and
// the files that settled during one quiet period are uploaded together.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Uploader receives the files collected by the watcher.
type Uploader interface {
	Upload(ctx context.Context, files []models.UploadedFile) (*models.UploadResult, error)
}

// Inbox watches one directory and uploads matching files through an Uploader.
type Inbox struct {
	root       string
	extensions []string
	uploader   Uploader
	debounce   time.Duration
	onUpload   func(*models.UploadResult, error)

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	ctx      context.Context
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets a logger for watcher events.
func WithLogger(l *zap.Logger) Option {
	return func(in *Inbox) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithDebounce overrides the quiet period before pending files are uploaded.
func WithDebounce(d time.Duration) Option {
	return func(in *Inbox) {
		if d > 0 {
			in.debounce = d
		}
	}
}

// OnUpload registers a callback run after each upload attempt.
func OnUpload(fn func(*models.UploadResult, error)) Option {
	return func(in *Inbox) { in.onUpload = fn }
}

// NewInbox creates an inbox over root. extensions filters which files are uploaded
// (empty = all).
func NewInbox(root string, extensions []string, uploader Uploader, opts ...Option) *Inbox {
	in := &Inbox{
		root:       filepath.Clean(root),
		extensions: extensions,
		uploader:   uploader,
		debounce:   defaultDebounce,
		pending:    make(map[string]struct{}),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Root returns the watched directory.
func (in *Inbox) Root() string {
	return in.root
}

// Start creates the inbox directory if needed and watches it until ctx is cancelled or
// Stop is called.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.started {
		return nil
	}
	if err := os.MkdirAll(in.root, 0755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(in.root); err != nil {
		_ = w.Close()
		return err
	}
	in.watcher = w
	in.ctx = ctx
	in.started = true
	in.logger.Debug("inbox watching", zap.String("root", in.root), zap.Strings("extensions", in.extensions))
	go in.run(ctx, w)
	return nil
}

func (in *Inbox) run(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			in.Stop()
			return
		case <-in.done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			in.handleEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			in.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (in *Inbox) handleEvent(ev fsnotify.Event) {
	if filepath.Dir(filepath.Clean(ev.Name)) != in.root {
		return
	}
	in.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() || !matchExtension(ev.Name, in.extensions) {
			return
		}
		in.schedule(ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		in.mu.Lock()
		delete(in.pending, ev.Name)
		in.mu.Unlock()
	}
}

// schedule adds path to the pending set and restarts the quiet period.
func (in *Inbox) schedule(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.started {
		return
	}
	in.pending[path] = struct{}{}
	if in.timer != nil {
		in.timer.Stop()
	}
	in.timer = time.AfterFunc(in.debounce, in.flush)
}

func (in *Inbox) flush() {
	in.mu.Lock()
	paths := make([]string, 0, len(in.pending))
	for p := range in.pending {
		paths = append(paths, p)
	}
	in.pending = make(map[string]struct{})
	in.timer = nil
	ctx := in.ctx
	in.mu.Unlock()
	if len(paths) == 0 || ctx == nil {
		return
	}
	sort.Strings(paths)
	in.upload(ctx, paths)
}

// SyncExisting uploads every matching file already in the inbox as one batch.
func (in *Inbox) SyncExisting(ctx context.Context) error {
	entries, err := os.ReadDir(in.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(in.root, e.Name())
		if matchExtension(p, in.extensions) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	in.logger.Debug("inbox syncing existing files", zap.Int("files", len(paths)))
	_, err = in.upload(ctx, paths)
	return err
}

func (in *Inbox) upload(ctx context.Context, paths []string) (*models.UploadResult, error) {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			in.logger.Warn("failed to read inbox file", zap.String("path", p), zap.Error(err))
			continue
		}
		files = append(files, models.UploadedFile{Name: filepath.Base(p), Data: data})
	}
	if len(files) == 0 {
		return nil, nil
	}
	res, err := in.uploader.Upload(ctx, files)
	if err != nil {
		in.logger.Error("inbox upload failed", zap.Int("files", len(files)), zap.Error(err))
	} else {
		in.logger.Info("inbox upload", zap.Int("files", len(files)), zap.String("status", res.Status))
	}
	if in.onUpload != nil {
		in.onUpload(res, err)
	}
	return res, err
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Stop stops watching and drops files still waiting for their quiet period.
func (in *Inbox) Stop() {
	in.mu.Lock()
	if !in.started {
		in.mu.Unlock()
		return
	}
	if in.timer != nil {
		in.timer.Stop()
		in.timer = nil
	}
	in.pending = make(map[string]struct{})
	w := in.watcher
	in.watcher = nil
	in.started = false
	in.mu.Unlock()
	in.stopOnce.Do(func() { close(in.done) })
	_ = w.Close()
}
