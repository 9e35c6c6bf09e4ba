package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Blocks are
// rendered back to plain text lines; list items keep a designator ("N." or
// the bullet glyph) so the outline grammar still sees them as items.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		block := renderBlock(n, src)
		if block == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(block)
	}

	return finish(buf.String())
}

func renderBlock(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.Heading:
		return nodeText(node, src)
	case *ast.List:
		return renderList(node, src)
	default:
		return nodeText(n, src)
	}
}

func renderList(list *ast.List, src []byte) string {
	num := list.Start
	if num == 0 {
		num = 1
	}
	var lines []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		t := nodeText(item, src)
		if t == "" {
			continue
		}
		if list.IsOrdered() {
			lines = append(lines, fmt.Sprintf("%d. %s", num, t))
			num++
		} else {
			lines = append(lines, "• "+t)
		}
	}
	// Blank line between items so each terminates cleanly.
	return strings.Join(lines, "\n\n")
}

// nodeText gets the plain text content of a goldmark AST node. A block that
// carries raw source lines is rendered from those lines alone; its inline
// children reference the same segments and must not be visited again.
func nodeText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
