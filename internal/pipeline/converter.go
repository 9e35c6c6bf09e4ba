package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/outlinexl/internal/extract"
	"github.com/dgallion1/outlinexl/internal/outline"
	"github.com/dgallion1/outlinexl/internal/sheet"
)

// ErrEmptyDocument marks a document whose extraction yielded no text. The
// condition is a structured result rather than a hard failure so callers can
// show a message instead of an error page.
var ErrEmptyDocument = errors.New("no text could be extracted from the document")

// Converter runs the whole document-to-workbook pipeline synchronously. It
// holds no per-document state, so one Converter serves concurrent callers.
type Converter struct {
	extractors extract.Factory
	writer     *sheet.Writer
	log        *slog.Logger
}

func NewConverter(extractors extract.Factory, writer *sheet.Writer, log *slog.Logger) *Converter {
	return &Converter{extractors: extractors, writer: writer, log: log}
}

// Result carries the finished workbook and its dimensions.
type Result struct {
	XLSX   []byte
	Rows   int
	Merges int
}

// ExtractText pulls the plain text out of the document bytes.
func (c *Converter) ExtractText(data []byte, filename string) (string, error) {
	extractor, err := c.extractors.ForFile(filename)
	if err != nil {
		return "", err
	}

	text, err := extractor.Extract(bytes.NewReader(data), filename)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			return "", ErrEmptyDocument
		}
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	c.log.Debug("extracted text", "filename", filename, "chars", len(text))
	return text, nil
}

// Render writes the records out as a workbook.
func (c *Converter) Render(records []outline.Record) (Result, error) {
	runs := outline.MergeRuns(records)
	xlsx, err := c.writer.Write(records)
	if err != nil {
		return Result{}, fmt.Errorf("render workbook: %w", err)
	}
	return Result{XLSX: xlsx, Rows: len(records), Merges: len(runs)}, nil
}

// Convert extracts text from the document bytes, parses the outline and
// renders the workbook.
func (c *Converter) Convert(data []byte, filename string) (Result, error) {
	text, err := c.ExtractText(data, filename)
	if err != nil {
		return Result{}, err
	}

	res, err := c.Render(outline.Parse(text))
	if err != nil {
		return Result{}, err
	}

	c.log.Info("converted document",
		"filename", filename,
		"rows", res.Rows,
		"merges", res.Merges,
	)
	return res, nil
}
