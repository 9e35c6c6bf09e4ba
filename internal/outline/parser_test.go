package outline

import (
	"reflect"
	"testing"
)

func TestParse_NoDigitsOrBullets(t *testing.T) {
	text := "plain prose here\nand another line\n\nmore prose"
	records := Parse(text)
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d: %+v", len(records), records)
	}
}

func TestParse_HeadingContextCarriesDown(t *testing.T) {
	records := Parse("1 Introduction\n\n1.1 Overview")
	want := []Record{
		{Level1: "1 Introduction"},
		{Level1: "1 Introduction", Level2: "1.1 Overview"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestParse_DeeperLevelsResetOnAncestorChange(t *testing.T) {
	records := Parse("1 One\n1.1 OneOne\n1.1.1 Deep\n2 Two")
	last := records[len(records)-1]
	if last.Level1 != "2 Two" || last.Level2 != "" || last.Level3 != "" {
		t.Errorf("new level1 must clear deeper levels, got %+v", last)
	}
}

func TestParse_ContinuationJoinsWithSingleSpace(t *testing.T) {
	records := Parse("2.\tFirst item\nmore detail\n\n3. Second item")
	want := []Record{
		{ItemNo: "2", ItemDesc: "First item more detail"},
		{ItemNo: "3", ItemDesc: "Second item"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestParse_BulletWithoutHeadings(t *testing.T) {
	records := Parse("• Buy milk")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ItemNo != BulletGlyph || r.ItemDesc != "Buy milk" {
		t.Errorf("got %+v", r)
	}
	if r.Level1 != "" || r.Level2 != "" || r.Level3 != "" {
		t.Errorf("heading fields must be empty, got %+v", r)
	}
}

func TestParse_PendingItemFlushedAtEOF(t *testing.T) {
	records := Parse("1 Section\n1. Trailing item with\nwrapped text")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	item := records[1]
	if item.ItemNo != "1" || item.ItemDesc != "Trailing item with wrapped text" {
		t.Errorf("got %+v", item)
	}
	if item.Level1 != "1 Section" {
		t.Errorf("item must carry heading context, got %+v", item)
	}
}

func TestParse_NewItemFlushesPrevious(t *testing.T) {
	records := Parse("1. alpha\n2. beta\n• gamma")
	want := []Record{
		{ItemNo: "1", ItemDesc: "alpha"},
		{ItemNo: "2", ItemDesc: "beta"},
		{ItemNo: BulletGlyph, ItemDesc: "gamma"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestParse_HeadingFlushesPendingBeforeContextChange(t *testing.T) {
	// The item keeps the context it started under; the heading that follows
	// is emitted after it and does not rewrite it.
	records := Parse("1 Old\n1. item under old\n2 New")
	want := []Record{
		{Level1: "1 Old"},
		{Level1: "1 Old", ItemNo: "1", ItemDesc: "item under old"},
		{Level1: "2 New"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestParse_ContinuationOutsideItemIsDropped(t *testing.T) {
	records := Parse("1 Section\nloose prose line\n1. item")
	want := []Record{
		{Level1: "1 Section"},
		{Level1: "1 Section", ItemNo: "1", ItemDesc: "item"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestParse_CRLFInput(t *testing.T) {
	records := Parse("1 Intro\r\n1. item\r\n")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
}

func TestParse_Deterministic(t *testing.T) {
	text := "1 A\n1.1 B\n1. one\ncont\n\n• two\n2 C\n2.1 D\n3. three"
	first := Parse(text)
	for range 5 {
		if got := Parse(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("parse is not deterministic: %+v vs %+v", got, first)
		}
	}
}
