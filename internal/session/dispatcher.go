package session

import (
	"context"
	"sync"

	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// Event is something a user does to the session.
type Event interface {
	apply(ctx context.Context, c *Controller) Result
}

// UploadEvent adds files to the session.
type UploadEvent struct {
	Files []models.UploadedFile
}

// ChatEvent asks a question.
type ChatEvent struct {
	Question string
}

// ResetEvent clears the session.
type ResetEvent struct{}

// StatusEvent reads a snapshot of the session.
type StatusEvent struct{}

// Result is the outcome of one event. Only the field matching the event is set.
type Result struct {
	Upload *models.UploadResult
	Chat   *models.ChatResponse
	Status models.SessionStatus
	Err    error
}

func (e UploadEvent) apply(ctx context.Context, c *Controller) Result {
	res, err := c.Upload(ctx, e.Files)
	return Result{Upload: res, Status: c.Status(), Err: err}
}

func (e ChatEvent) apply(ctx context.Context, c *Controller) Result {
	res, err := c.Chat(ctx, e.Question)
	return Result{Chat: res, Status: c.Status(), Err: err}
}

func (ResetEvent) apply(ctx context.Context, c *Controller) Result {
	c.Reset(ctx)
	return Result{Status: c.Status()}
}

func (StatusEvent) apply(_ context.Context, c *Controller) Result {
	return Result{Status: c.Status()}
}

type request struct {
	ctx   context.Context
	event Event
	reply chan Result
}

// Dispatcher owns a Controller and applies events to it one at a time, in arrival order,
// on a single goroutine.
type Dispatcher struct {
	ctrl      *Controller
	maxUpload int64
	requests  chan request
	quit      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher for ctrl. Uploads larger than maxUpload bytes are
// rejected before they reach the controller.
func NewDispatcher(ctrl *Controller, maxUpload int64, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		ctrl:      ctrl,
		maxUpload: maxUpload,
		requests:  make(chan request),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
		logger:    logger,
	}
}

// Start runs the event loop in a new goroutine until ctx is done or Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.run(ctx)
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.quit:
			return
		case req := <-d.requests:
			req.reply <- req.event.apply(req.ctx, d.ctrl)
		}
	}
}

// Submit queues ev and waits for its result. Oversized uploads fail with
// *UploadTooLargeError without being queued.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) (Result, error) {
	if up, ok := ev.(UploadEvent); ok {
		if err := ValidateUploadSize(up.Files, d.maxUpload); err != nil {
			d.logger.Warn("upload rejected", zap.Error(err))
			return Result{Err: err}, err
		}
	}

	req := request{ctx: ctx, event: ev, reply: make(chan Result, 1)}
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return Result{Err: ctx.Err()}, ctx.Err()
	case <-d.stopped:
		return Result{Err: ErrDispatcherClosed}, ErrDispatcherClosed
	}
	select {
	case res := <-req.reply:
		return res, res.Err
	case <-ctx.Done():
		return Result{Err: ctx.Err()}, ctx.Err()
	}
}

// Upload submits an UploadEvent.
func (d *Dispatcher) Upload(ctx context.Context, files []models.UploadedFile) (*models.UploadResult, error) {
	res, err := d.Submit(ctx, UploadEvent{Files: files})
	return res.Upload, err
}

// Chat submits a ChatEvent.
func (d *Dispatcher) Chat(ctx context.Context, question string) (*models.ChatResponse, error) {
	res, err := d.Submit(ctx, ChatEvent{Question: question})
	return res.Chat, err
}

// Reset submits a ResetEvent.
func (d *Dispatcher) Reset(ctx context.Context) (models.SessionStatus, error) {
	res, err := d.Submit(ctx, ResetEvent{})
	return res.Status, err
}

// Status submits a StatusEvent.
func (d *Dispatcher) Status(ctx context.Context) (models.SessionStatus, error) {
	res, err := d.Submit(ctx, StatusEvent{})
	return res.Status, err
}

// MaxUploadBytes returns the upload ceiling.
func (d *Dispatcher) MaxUploadBytes() int64 {
	return d.maxUpload
}

// Close stops the event loop, waits for the current event to finish and releases the
// controller. Submit fails with ErrDispatcherClosed afterwards.
func (d *Dispatcher) Close() error {
	d.stopOnce.Do(func() {
		close(d.quit)
	})
	d.startOnce.Do(func() { close(d.stopped) })
	<-d.stopped
	return d.ctrl.Close()
}
