package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hyperjump/pdfchat/internal/tui"
	"github.com/spf13/cobra"
)

func newChatCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [files...]",
		Short: "Chat in the terminal",
		Long: `Open the terminal chat screen, uploading any PDFs given as arguments first.

Inside the chat, /upload <paths> adds more files, /reset clears the session,
/status shows what is loaded and /quit exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) > 0 {
				files, err := tui.ReadFiles(args)
				if err != nil {
					return err
				}
				if _, err := a.dispatcher.Upload(ctx, files); err != nil {
					return fmt.Errorf("failed to upload: %w", err)
				}
			}
			_, err = tea.NewProgram(tui.New(ctx, a.dispatcher), tea.WithAltScreen()).Run()
			return err
		},
	}
}
