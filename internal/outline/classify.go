package outline

import (
	"regexp"
	"strings"
)

// LineKind is the category a source line falls into.
type LineKind int

const (
	Blank LineKind = iota
	Heading1
	Heading2
	Heading3
	NumberedItem
	BulletItem
	Continuation
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Heading1:
		return "heading1"
	case Heading2:
		return "heading2"
	case Heading3:
		return "heading3"
	case NumberedItem:
		return "numbered_item"
	case BulletItem:
		return "bullet_item"
	case Continuation:
		return "continuation"
	}
	return "unknown"
}

// BulletGlyph is the designator rendered for every bullet item,
// regardless of which glyph appeared in the source.
const BulletGlyph = "•"

var (
	heading3Re = regexp.MustCompile(`^\d+\.\d+\.\d+(\s+.*)?$`)
	heading2Re = regexp.MustCompile(`^\d+\.\d+(\s+.*)?$`)
	heading1Re = regexp.MustCompile(`^\d+(\s+.*)?$`)
	numberedRe = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

	// Bullet glyphs seen in extracted PDF text: bullet, triangular bullet,
	// black circle, the Wingdings private-use bullet, asterisk, hyphen and
	// middle dot. Matched against the raw line so the glyph must sit at
	// true line start (modulo spaces/tabs), not after arbitrary trimming.
	bulletRe = regexp.MustCompile(`^[ \t]*[\x{2022}\x{2023}\x{25CF}\x{F0B7}*\-\x{00B7}]\s*(.+)$`)
)

// ClassifiedLine is the result of classifying one source line.
type ClassifiedLine struct {
	Kind LineKind
	Text string // trimmed line text (headings, continuations)

	// List items only.
	Designator  string // item number, or BulletGlyph
	Description string
}

// Classify assigns a line to exactly one category. Precedence is fixed and
// order-sensitive: blank, then the heading patterns narrowest first (a dotted
// numeral would otherwise satisfy a shorter heading pattern's shape), then
// numbered items, then bullets, then continuation. Heading patterns are
// always tried before list patterns; swapping that order changes the output
// for heading-shaped list lines, so it is encoded here as a deliberate rule.
func Classify(raw string) ClassifiedLine {
	line := strings.TrimSpace(raw)

	switch {
	case line == "":
		return ClassifiedLine{Kind: Blank}
	case heading3Re.MatchString(line):
		return ClassifiedLine{Kind: Heading3, Text: line}
	case heading2Re.MatchString(line):
		return ClassifiedLine{Kind: Heading2, Text: line}
	case heading1Re.MatchString(line):
		return ClassifiedLine{Kind: Heading1, Text: line}
	}

	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return ClassifiedLine{Kind: NumberedItem, Text: line, Designator: m[1], Description: m[2]}
	}
	// Bullets are matched on the raw line to keep leading-whitespace context.
	if m := bulletRe.FindStringSubmatch(raw); m != nil {
		return ClassifiedLine{Kind: BulletItem, Text: line, Designator: BulletGlyph, Description: m[1]}
	}

	return ClassifiedLine{Kind: Continuation, Text: line}
}
