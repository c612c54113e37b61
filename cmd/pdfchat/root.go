package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/extract"
	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/session"
	"github.com/hyperjump/pdfchat/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yaml"

type globalFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "pdfchat",
		Short: "Chat with your PDF documents",
		Long: `pdfchat answers questions about uploaded PDFs.

Pages without a text layer are OCRed. Questions are routed to a hybrid
vector search, a whole-document summary, or both, and answered by an
OpenAI-compatible LLM (Gemini by default, key in GEMINI_API).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfigPath, "config file path")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(flags),
		newChatCmd(flags),
		newAskCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads config from path. When path is the default and missing from the
// working directory, the user config dir is tried before falling back to defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			if dir, dirErr := os.UserConfigDir(); dirErr == nil {
				fallback := filepath.Join(dir, "pdfchat", "config.yaml")
				if _, statErr := os.Stat(fallback); statErr == nil {
					path = fallback
				}
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// app is one wired session: the embedder and LLM client behind a dispatcher.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	embedder   embedding.Embedder
	dispatcher *session.Dispatcher
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, resolved, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || flags.debug
	logger, err := utils.NewLoggerWithFile(debug, utils.LogFileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))

	embedder, err := embedding.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	client, err := llm.New(cfg, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	extractor := extract.NewExtractor(cfg.Ingest.OCRMinChars, cfg.Ingest.OCRDPI,
		extract.WithOCR(extract.NewFitzRasterizer(), extract.NewTesseractRecognizer(cfg.Ingest.OCRLanguage)),
		extract.WithLogger(logger),
	)
	ctrl := session.NewController(cfg, extractor, embedder, client, session.WithLogger(logger))
	d := session.NewDispatcher(ctrl, cfg.Ingest.MaxUploadBytes, logger)
	d.Start(ctx)
	return &app{cfg: cfg, logger: logger, embedder: embedder, dispatcher: d}, nil
}

func (a *app) Close() {
	if err := a.dispatcher.Close(); err != nil {
		a.logger.Warn("failed to close session", zap.Error(err))
	}
	if err := a.embedder.Close(); err != nil {
		a.logger.Warn("failed to close embedder", zap.Error(err))
	}
	_ = a.logger.Sync()
}
