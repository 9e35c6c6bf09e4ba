// Package sheet renders outline records as a styled xlsx workbook with the
// heading hierarchy expressed as merged cells.
package sheet

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/outlinexl/internal/outline"
)

// Header is the fixed five-column header row.
var Header = []string{
	"Level 1 Heading",
	"Level 2 Heading",
	"Level 3 Heading",
	"List Item No.",
	"List Item Description",
}

// columnWidths holds the display width for each of the five columns.
var columnWidths = []float64{25, 30, 35, 8, 60}

const rowHeight = 25

// DefaultSheetTitle names the worksheet when the caller supplies none.
const DefaultSheetTitle = "Outline"

// Writer turns record sequences into xlsx bytes.
type Writer struct {
	log   *slog.Logger
	title string
}

// NewWriter creates a Writer. title names the worksheet; empty selects
// DefaultSheetTitle.
func NewWriter(log *slog.Logger, title string) *Writer {
	if title == "" {
		title = DefaultSheetTitle
	}
	return &Writer{log: log, title: title}
}

// Write lays the records out as rows 2..N under the header, applies the
// precomputed hierarchy merges and styling, and returns the serialized
// workbook. Merge and styling failures on individual cells are logged and
// skipped; a formatting defect never aborts the conversion.
func (w *Writer) Write(records []outline.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.title); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, fmt.Errorf("register styles: %w", err)
	}

	if err := f.SetSheetRow(w.title, "A1", &Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		row := []any{rec.Level1, rec.Level2, rec.Level3, rec.ItemNo, rec.ItemDesc}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(w.title, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	w.applyMerges(f, outline.MergeRuns(records))
	w.applyLayout(f, len(records))
	w.applyStyles(f, styles, len(records))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// applyMerges executes the merge instructions. A single failed merge is
// logged and skipped so the rest of the grid still renders.
func (w *Writer) applyMerges(f *excelize.File, runs []outline.Run) {
	for _, run := range runs {
		start, err := excelize.CoordinatesToCellName(run.Col, run.StartRow)
		if err != nil {
			w.log.Warn("bad merge coordinates", "col", run.Col, "row", run.StartRow, "error", err)
			continue
		}
		end, err := excelize.CoordinatesToCellName(run.Col, run.EndRow)
		if err != nil {
			w.log.Warn("bad merge coordinates", "col", run.Col, "row", run.EndRow, "error", err)
			continue
		}
		if err := f.MergeCell(w.title, start, end); err != nil {
			w.log.Warn("merge failed, skipping", "range", start+":"+end, "error", err)
		}
	}
}

func (w *Writer) applyLayout(f *excelize.File, dataRows int) {
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		if err := f.SetColWidth(w.title, col, col, width); err != nil {
			w.log.Warn("set column width failed", "column", col, "error", err)
		}
	}
	for row := 1; row <= dataRows+1; row++ {
		if err := f.SetRowHeight(w.title, row, rowHeight); err != nil {
			w.log.Warn("set row height failed", "row", row, "error", err)
		}
	}
}

// applyStyles borders and aligns every populated cell, row by row so that a
// failure affects only the row it occurred on.
func (w *Writer) applyStyles(f *excelize.File, styles styleSet, dataRows int) {
	if err := f.SetCellStyle(w.title, "A1", "E1", styles.header); err != nil {
		w.log.Warn("header style failed", "error", err)
	}
	for row := 2; row <= dataRows+1; row++ {
		headingRange := [2]string{fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row)}
		if err := f.SetCellStyle(w.title, headingRange[0], headingRange[1], styles.heading); err != nil {
			w.log.Warn("row style failed, skipping", "row", row, "error", err)
		}
		contentRange := [2]string{fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row)}
		if err := f.SetCellStyle(w.title, contentRange[0], contentRange[1], styles.content); err != nil {
			w.log.Warn("row style failed, skipping", "row", row, "error", err)
		}
	}
}

// styleSet holds the registered style IDs for one workbook.
type styleSet struct {
	header  int
	heading int
	content int
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return s, err
	}

	s.heading, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return s, err
	}

	s.content, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
		Border:    thinBorder(),
	})
	return s, err
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
}
