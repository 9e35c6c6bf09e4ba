package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFEngine selects the extraction method for PDF documents.
type PDFEngine string

const (
	// EngineAuto tries the plain-text method first and falls back to the
	// content-stream method once if it fails.
	EngineAuto PDFEngine = "auto"
	// EnginePDFText uses ledongthuc/pdf row-grouped text extraction only.
	EnginePDFText PDFEngine = "pdftext"
	// EnginePDFCPU uses pdfcpu content-stream extraction only.
	EnginePDFCPU PDFEngine = "pdfcpu"
)

// Valid reports whether the engine name is one of the known engines.
func (e PDFEngine) Valid() bool {
	switch e {
	case EngineAuto, EnginePDFText, EnginePDFCPU:
		return true
	}
	return false
}

// ExtractionError aggregates the failures of both extraction methods into a
// single structured error surfaced to the caller.
type ExtractionError struct {
	Primary   error
	Secondary error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction failed: primary: %v; secondary: %v", e.Primary, e.Secondary)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{e.Primary, e.Secondary}
}

// PDFExtractor handles PDF files.
type PDFExtractor struct {
	Engine PDFEngine
}

func (e *PDFExtractor) Extract(r io.Reader, filename string) (string, error) {
	// Both libraries want random access, so buffer the document.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	engine := e.Engine
	if engine == "" {
		engine = EngineAuto
	}

	switch engine {
	case EnginePDFText:
		text, err := extractRowText(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		return finish(text)
	case EnginePDFCPU:
		text, err := extractContentStream(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		return finish(text)
	default:
		// Try the primary method; on failure retry once with the
		// secondary. Both failures travel together.
		text, primaryErr := extractRowText(data)
		if primaryErr == nil {
			return finish(text)
		}
		text, secondaryErr := extractContentStream(data)
		if secondaryErr == nil {
			return finish(text)
		}
		return "", &ExtractionError{Primary: primaryErr, Secondary: secondaryErr}
	}
}

// extractRowText extracts text with ledongthuc/pdf, grouping fragments by
// visual row so the outline classifier sees one source line per text row.
func extractRowText(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// Degrade to the undivided page text.
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				continue
			}
			buf.WriteString(text)
			buf.WriteByte('\n')
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				buf.WriteString(word.S)
			}
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// extractContentStream extracts text by scanning PDF content-stream
// operators via pdfcpu. Cruder than the row-grouped method but survives
// documents the primary reader rejects.
func extractContentStream(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var buf strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := pageStreamText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(pageText)
	}
	if buf.Len() == 0 {
		return "", errors.New("no text content found in pdf")
	}
	return buf.String(), nil
}

func pageStreamText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// streamText parses content-stream operators for text. Text-positioning
// operators become line breaks: the classifier depends on line structure,
// so vertical moves must not collapse into spaces.
func streamText(data []byte) string {
	var sb strings.Builder

	writeStrings := func(line []byte) {
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			if text := decodePDFString(m[1]); text != "" {
				sb.WriteString(text)
			}
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// Tj / TJ operators: show text on the current line.
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeStrings(line)

		// ' operator: move to next line, then show text.
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			writeStrings(line)

		// Td / TD / T*: text positioning, treated as a line break.
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return cleanStreamText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \040 for space).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// cleanStreamText normalizes whitespace within each line while keeping the
// line breaks themselves.
func cleanStreamText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		prevSpace := false
		for _, r := range line {
			if unicode.IsSpace(r) {
				if !prevSpace && sb.Len() > 0 {
					sb.WriteByte(' ')
					prevSpace = true
				}
			} else if unicode.IsPrint(r) {
				sb.WriteRune(r)
				prevSpace = false
			}
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
