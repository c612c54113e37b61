package session

import (
	"errors"
	"fmt"

	"github.com/hyperjump/pdfchat/internal/models"
)

var (
	// ErrEngineNotInitialized is returned by Chat before a successful upload has built an index.
	ErrEngineNotInitialized = errors.New("engine not initialized")
	// ErrDispatcherClosed is returned by Submit after the dispatcher stopped.
	ErrDispatcherClosed = errors.New("session dispatcher closed")
)

// UploadTooLargeError reports an upload whose combined size exceeds the limit.
type UploadTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *UploadTooLargeError) Error() string {
	return fmt.Sprintf("upload of %d MB exceeds the %d MB limit", e.Size>>20, e.Limit>>20)
}

// ValidateUploadSize rejects files whose combined size exceeds limit. A limit of zero or
// less disables the check. It never touches session state.
func ValidateUploadSize(files []models.UploadedFile, limit int64) error {
	if limit <= 0 {
		return nil
	}
	if size := models.TotalSize(files); size > limit {
		return &UploadTooLargeError{Size: size, Limit: limit}
	}
	return nil
}
