package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// fileResult is the outcome for one input file. Failed files still carry
// an "Error: ..." result.
type fileResult struct {
	Path   string
	Result outline.Result
	Err    error
}

// collectInputs lists the supported documents directly inside dir, sorted.
func collectInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// processAll extracts outlines for paths with at most workers in flight.
// Results come back in input order. Each file gets its own extractor built
// from opts, with the file stem as the placeholder title unless opts set one.
func processAll(ctx context.Context, opts []outline.Option, paths []string, workers int, log *slog.Logger) []fileResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]fileResult, len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case <-ctx.Done():
			results[i] = failed(path, ctx.Err())
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processFile(opts, path)
			if results[i].Err != nil {
				log.Warn("outline failed", "file", path, "error", results[i].Err)
			} else {
				log.Debug("outline extracted", "file", path, "headings", len(results[i].Result.Outline))
			}
		}()
	}
	wg.Wait()
	return results
}

func processFile(opts []outline.Option, path string) fileResult {
	perFile := append([]outline.Option{outline.WithPlaceholderTitle(stem(path))}, opts...)
	p, err := parser.ForFile(path, outline.New(perFile...))
	if err != nil {
		return failed(path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(path, err)
	}
	res, err := p.Parse(bytes.NewReader(data), path)
	if err != nil {
		return failed(path, err)
	}
	return fileResult{Path: path, Result: *res}
}

func failed(path string, err error) fileResult {
	return fileResult{Path: path, Result: outline.ErrorResult(err), Err: err}
}

// writeJSON stores each result as <outDir>/<stem>.json.
func writeJSON(outDir string, results []fileResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, r := range results {
		data, err := json.MarshalIndent(r.Result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Path, err)
		}
		name := stem(r.Path) + ".json"
		if err := os.WriteFile(filepath.Join(outDir, name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
