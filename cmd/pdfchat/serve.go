package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperjump/pdfchat/internal/server"
	"github.com/hyperjump/pdfchat/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var inbox string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the upload/chat/reset/status HTTP API for a single session.

With --inbox (or watch.inbox in the config), PDFs dropped into that
directory are uploaded automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, inbox)
		},
	}
	cmd.Flags().StringVar(&inbox, "inbox", "", "directory whose PDFs are uploaded automatically")
	return cmd
}

func runServe(parent context.Context, flags *globalFlags, inbox string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if inbox == "" {
		inbox = a.cfg.Watch.Inbox
	}
	if inbox != "" {
		in := watcher.NewInbox(inbox, a.cfg.Watch.Extensions, a.dispatcher, watcher.WithLogger(logger))
		if err := in.Start(ctx); err != nil {
			return err
		}
		defer in.Stop()
		if err := in.SyncExisting(ctx); err != nil {
			logger.Warn("inbox sync failed", zap.String("inbox", in.Root()), zap.Error(err))
		}
	}

	srv := server.NewServer(a.dispatcher, &a.cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
