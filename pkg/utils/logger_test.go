package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(true) returned nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(false) returned nil logger")
		}
		_ = logger.Sync()
	})
}

func TestNewLoggerWithFile_writesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfchat.log")
	logger, err := NewLoggerWithFile(false, LogFileOptions{Path: path})
	if err != nil {
		t.Fatalf("NewLoggerWithFile: %v", err)
	}
	logger.Info("hello from test")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain the record")
	}
}

func TestNewLoggerWithFile_noPathFallsBack(t *testing.T) {
	logger, err := NewLoggerWithFile(true, LogFileOptions{})
	if err != nil {
		t.Fatalf("NewLoggerWithFile: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}
