package main

import (
	"context"
	"errors"
	"strings"

	"github.com/hyperjump/pdfchat/internal/cli"
	"github.com/hyperjump/pdfchat/internal/tui"
	"github.com/spf13/cobra"
)

type askOptions struct {
	files   []string
	format  string
	sources bool
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask --file <pdf> <question>",
		Short: "Answer one question about some PDFs",
		Long: `Upload the given PDFs, ask one question and print the answer.

The question is all remaining arguments joined by spaces.

Examples:
  pdfchat ask --file report.pdf What was revenue in 2023?
  pdfchat ask --file a.pdf --file b.pdf --sources "summarize"
  pdfchat ask --file report.pdf --format json "key risks"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.files) == 0 {
				return errors.New("at least one --file is required")
			}
			question := buildQuestion(args)
			if question == "" {
				return errors.New("question cannot be empty")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			files, err := tui.ReadFiles(opts.files)
			if err != nil {
				return err
			}
			up, err := a.dispatcher.Upload(ctx, files)
			if err != nil {
				return err
			}
			format := cli.OutputFormat(opts.format)
			if format != cli.OutputJSON {
				cli.WriteUpload(cmd.ErrOrStderr(), up)
			}
			resp, err := a.dispatcher.Chat(ctx, question)
			if err != nil {
				return err
			}
			return cli.WriteAnswer(cmd.OutOrStdout(), resp, format, opts.sources)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "PDF to upload (repeatable)")
	cmd.Flags().StringVar(&opts.format, "format", string(cli.OutputText), "output format: text or json")
	cmd.Flags().BoolVar(&opts.sources, "sources", false, "print the retrieved segments after the answer")
	return cmd
}

// buildQuestion joins positional arguments so quoted and unquoted questions read the same.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
