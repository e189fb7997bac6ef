package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/content"
	"github.com/nao1215/linklens/internal/model"
	"github.com/nao1215/linklens/internal/preview"
	"github.com/nao1215/linklens/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url|file>",
		Short: "Annotate the links of a page and report broken ones",
		Long: `Check loads a page, turns link highlighting on and waits until every
internal and external link has been checked. Each link is checked with a
HEAD request, then a GET, then an opaque GET; only a real 4xx or 5xx status
marks a link as broken.

Examples:
  # Check a live page
  linklens check https://example.com/

  # Check a saved page, resolving relative links against its origin
  linklens check page.html --base https://example.com/docs/

  # Write a Markdown report and the annotated HTML
  linklens check https://example.com/ -m -o report.md --html-out annotated.html

  # Output JSON
  linklens check --json https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}

	addPageFlags(cmd)

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("html-out", "",
		"Write the annotated HTML document to this path")
	cmd.Flags().BoolP("all", "a", false,
		"List every link in the text report, not only broken ones")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPageConfig(cmd, args)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if cfg.HTMLOut, err = flags.GetString("html-out"); err != nil {
		return err
	}
	listAll, err := flags.GetBool("all")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	linkReport, err := runCheck(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return outputReport(cmd, cfg, linkReport, listAll)
}

// runCheck annotates the page with highlighting on and returns its report.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.LinkReport, error) {
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(ctx, client, cfg, cfg.Targets[0])
	if err != nil {
		return nil, err
	}

	bus := newBus(cfg, client, originOf(doc.PageURL()), logger)
	store, closeStore := openStore(cfg, logger)
	defer closeStore()

	opts, err := contentOptions(cfg, store, preview.NewHTTPLoader(client, cfg.MaxBodySize), logger)
	if err != nil {
		return nil, err
	}
	c, err := content.Activate(ctx, doc, bus, opts)
	if err != nil {
		return nil, err
	}
	defer c.Stop()

	if _, err := bus.SendToggle(ctx, channel.ActionToggleHighlight, true); err != nil {
		return nil, fmt.Errorf("failed to enable highlighting: %w", err)
	}
	c.Settle()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("check completed",
		slog.String("page", c.String()),
		slog.Int("links", c.Engine().Len()),
	)

	if cfg.HTMLOut != "" {
		if err := writeHTML(cfg.HTMLOut, func(w io.Writer) error { return doc.Render(w) }); err != nil {
			return nil, err
		}
	}
	return c.Report(), nil
}

// writeHTML writes the rendered document to path.
func writeHTML(path string, render func(io.Writer) error) error {
	out, closeOut, err := openOutput(io.Discard, path)
	if err != nil {
		return err
	}
	if err := render(out); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return closeOut()
}

// outputReport outputs the link report in the requested format.
func outputReport(cmd *cobra.Command, cfg *config.Config, linkReport *model.LinkReport, listAll bool) error {
	output, closeOutput, err := openOutput(cmd.OutOrStdout(), cfg.ReportFile)
	if err != nil {
		return err
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(listAll))
	}

	if _, err := writer.Write(linkReport); err != nil {
		_ = closeOutput()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return closeOutput()
}
