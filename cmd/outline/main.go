// Command outline extracts document outlines from the command line. It
// writes one JSON file per input into -out, or prints the outlines to
// stdout as a styled tree, Markdown or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/pdfoutline/internal/outline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	levelStyles = map[outline.Level]lipgloss.Style{
		outline.H1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AFFF")),
		outline.H2: lipgloss.NewStyle().Foreground(lipgloss.Color("#87D7FF")),
		outline.H3: lipgloss.NewStyle().Foreground(lipgloss.Color("#BCBCBC")),
	}

	pageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

func main() {
	dir := flag.String("dir", "", "Directory of documents to process")
	out := flag.String("out", "", "Write <name>.json per document into this directory")
	format := flag.String("format", "tree", "Stdout format when -out is empty: tree, markdown or json")
	workers := flag.Int("workers", 4, "Documents processed concurrently")
	keepTitle := flag.Bool("keep-title-heading", false, "Keep a heading that also serves as the title")
	placeholder := flag.String("placeholder", "", "Title used when none can be found (default: the file name without extension)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: outline [flags] [file ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	paths := flag.Args()
	if *dir != "" {
		found, err := collectInputs(*dir)
		if err != nil {
			log.Error("collect inputs", "error", err)
			os.Exit(1)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []outline.Option{
		outline.WithLogger(log),
		outline.WithKeepTitleHeading(*keepTitle),
	}
	if *placeholder != "" {
		opts = append(opts, outline.WithPlaceholderTitle(*placeholder))
	}
	results := processAll(ctx, opts, paths, *workers, log)

	if *out != "" {
		if err := writeJSON(*out, results); err != nil {
			log.Error("write results", "error", err)
			os.Exit(1)
		}
		log.Info("outlines written", "files", len(results), "failed", countFailed(results), "out", *out)
	} else if err := render(os.Stdout, *format, results); err != nil {
		log.Error("render", "error", err)
		os.Exit(1)
	}

	if countFailed(results) > 0 {
		os.Exit(1)
	}
}

func countFailed(results []fileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func render(w io.Writer, format string, results []fileResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, r := range results {
			if err := enc.Encode(r.Result); err != nil {
				return err
			}
		}
	case "markdown":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			io.WriteString(w, r.Result.Markdown())
		}
	case "tree":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			io.WriteString(w, renderTree(r))
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// renderTree draws one document's outline indented by heading level.
func renderTree(r fileResult) string {
	var b strings.Builder
	b.WriteString(fileStyle.Render(r.Path))
	b.WriteByte('\n')
	if r.Result.Failed() {
		b.WriteString(errorStyle.Render(r.Result.Title))
		b.WriteByte('\n')
		return b.String()
	}
	b.WriteString(titleStyle.Render(r.Result.Title))
	b.WriteByte('\n')
	for _, e := range r.Result.Outline {
		indent := strings.Repeat("  ", indentOf(e.Level))
		fmt.Fprintf(&b, "%s%s %s\n", indent, levelStyles[e.Level].Render(e.Text), pageStyle.Render(fmt.Sprintf("p.%d", e.Page)))
	}
	return b.String()
}

func indentOf(l outline.Level) int {
	switch l {
	case outline.H2:
		return 2
	case outline.H3:
		return 3
	default:
		return 1
	}
}
