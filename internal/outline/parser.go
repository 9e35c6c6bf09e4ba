// Package outline turns a stream of plain text lines into a flat sequence of
// typed records: numbered headings at three nesting levels, numbered and
// bulleted list items with their continuation text.
package outline

import "strings"

// Record is one flattened output row. Heading records leave ItemNo/ItemDesc
// empty; list-item records carry the heading context that was active when the
// item started. Records are append-only and never mutated after emission.
type Record struct {
	Level1   string
	Level2   string
	Level3   string
	ItemNo   string
	ItemDesc string
}

// IsItem reports whether the record is a list item rather than a heading.
func (r Record) IsItem() bool {
	return r.ItemNo != ""
}

// pending is an in-progress list item accumulating continuation text.
type pending struct {
	designator string
	desc       strings.Builder
}

// parser holds the heading context for a single parse. One parser per
// document; it is never shared, so concurrent parses need no locking.
type parser struct {
	level1  string
	level2  string
	level3  string
	pending *pending
	records []Record
}

// Parse runs the full text through the classifier and state machine in a
// single pass with no lookahead, returning records in source order.
func Parse(text string) []Record {
	p := &parser{}
	for _, raw := range SplitLines(text) {
		p.feed(raw)
	}
	p.flush()
	return p.records
}

// SplitLines normalizes line endings and splits text into raw lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func (p *parser) feed(raw string) {
	cl := Classify(raw)

	switch cl.Kind {
	case Blank:
		// Blank lines terminate a pending item but never become records.
		p.flush()

	case Heading1:
		p.flush()
		p.level1 = cl.Text
		p.level2 = ""
		p.level3 = ""
		p.records = append(p.records, Record{Level1: p.level1})

	case Heading2:
		p.flush()
		p.level2 = cl.Text
		p.level3 = ""
		p.records = append(p.records, Record{Level1: p.level1, Level2: p.level2})

	case Heading3:
		p.flush()
		p.level3 = cl.Text
		p.records = append(p.records, Record{Level1: p.level1, Level2: p.level2, Level3: p.level3})

	case NumberedItem, BulletItem:
		// A new item always terminates the previous one.
		p.flush()
		p.pending = &pending{designator: cl.Designator}
		p.pending.desc.WriteString(cl.Description)

	case Continuation:
		if p.pending != nil {
			p.pending.desc.WriteString(" ")
			p.pending.desc.WriteString(cl.Text)
		}
		// Free text outside an item contributes to no record.
	}
}

// flush emits the pending item, if any, under the current heading context.
func (p *parser) flush() {
	if p.pending == nil {
		return
	}
	p.records = append(p.records, Record{
		Level1:   p.level1,
		Level2:   p.level2,
		Level3:   p.level3,
		ItemNo:   p.pending.designator,
		ItemDesc: strings.TrimSpace(p.pending.desc.String()),
	})
	p.pending = nil
}
