package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/use-agent/linkpreview/fetcher"
	"github.com/use-agent/linkpreview/models"
	"github.com/use-agent/linkpreview/preview"
	"github.com/use-agent/linkpreview/unfurl"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL       string        `arg:"" help:"Page to preview; a bare host gets https://"`
	Format    string        `short:"f" enum:"json,markdown,html" default:"json" help:"Output format (json, markdown, html)"`
	Timeout   time.Duration `short:"t" default:"10s" help:"Fetch timeout"`
	UserAgent string        `help:"Override the User-Agent header"`
	Verbose   bool          `short:"v" help:"Log fetch details to stderr"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("unfurl"),
		kong.Description("Fetch a URL and print its link preview metadata"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	svc := unfurl.New(fetcher.New(
		fetcher.WithTimeout(cli.Timeout),
		fetcher.WithUserAgent(cli.UserAgent),
	))

	md, err := svc.Preview(ctx, fetcher.NormalizeInput(cli.URL))
	if err != nil {
		var pe *models.PreviewError
		if errors.As(err, &pe) {
			return fmt.Errorf("%s: %s", pe.Code, pe.Message)
		}
		return err
	}

	return write(stdout, cli.Format, md)
}

func write(w io.Writer, format string, md *models.LinkMetadata) error {
	switch format {
	case "markdown":
		out, err := preview.Markdown(md)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	case "html":
		return preview.RenderPage(w, preview.PageData{
			Input:    md.URL,
			Metadata: md,
			Cards:    preview.Cards(md),
		})
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	}
}
