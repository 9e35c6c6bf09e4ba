// Package main provides the outlinexl command line interface.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/outlinexl/internal/extract"
	"github.com/dgallion1/outlinexl/internal/pipeline"
	"github.com/dgallion1/outlinexl/internal/sheet"
)

var (
	outputPath string
	engine     string
	title      string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "outlinexl",
		Short: "Convert outline-structured documents to spreadsheets",
		Long: `outlinexl extracts numbered headings and list items from PDF, DOCX,
Markdown, HTML and plain text documents and renders them as an xlsx
spreadsheet with the heading hierarchy shown as merged cells.`,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [input file]",
		Short: "Convert one document to an xlsx spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: input name with .xlsx)")
	convertCmd.Flags().StringVar(&engine, "engine", "auto", "PDF extraction engine: auto, pdftext, pdfcpu")
	convertCmd.Flags().StringVar(&title, "title", "", "Worksheet title")
	convertCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log conversion details")

	rootCmd.AddCommand(convertCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	pdfEngine := extract.PDFEngine(engine)
	if !pdfEngine.Valid() {
		return fmt.Errorf("invalid engine: %s (must be auto, pdftext or pdfcpu)", engine)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conv := pipeline.NewConverter(
		extract.Factory{PDFEngine: pdfEngine},
		sheet.NewWriter(log, title),
		log,
	)

	res, err := conv.Convert(data, filepath.Base(inputPath))
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".xlsx"
	}
	if err := os.WriteFile(out, res.XLSX, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %s (%d rows, %d merged ranges)\n", out, res.Rows, res.Merges)
	return nil
}
