package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

// imageExtractor is the part of extraction.Pipeline batch mode needs.
type imageExtractor interface {
	Extract(imagePath string) extraction.Result
}

type batchLine struct {
	File string `json:"file"`
	extraction.Result
}

// runBatch extracts every file with at most workers running at once and
// writes one JSON object per file to w, in argument order. Files ending in
// .txt are treated as existing OCR transcripts.
func runBatch(w io.Writer, extractor imageExtractor, files []string, workers int) error {
	if workers < 1 {
		workers = 1
	}

	results := make([]extraction.Result, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			results[i] = extractFile(extractor, file)
			slog.Info("Extracted invoice", "file", file, "status", results[i].Status)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, file := range files {
		if err := enc.Encode(batchLine{File: file, Result: results[i]}); err != nil {
			return fmt.Errorf("writing result for %s: %w", file, err)
		}
	}
	return nil
}

func extractFile(extractor imageExtractor, file string) extraction.Result {
	if strings.EqualFold(filepath.Ext(file), ".txt") {
		text, err := os.ReadFile(file)
		if err != nil {
			slog.Error("Failed to read transcript", "path", file, "error", err)
			return extraction.FailedResult(fmt.Errorf("reading transcript: %w", err))
		}
		return extraction.ExtractText(string(text))
	}
	return extractor.Extract(file)
}
