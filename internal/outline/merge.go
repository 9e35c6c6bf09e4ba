package outline

// Run is a maximal contiguous span of worksheet rows sharing one non-empty
// value in a heading column. Rows are 1-based worksheet coordinates; data
// starts at row 2, below the header. Runs in the same column never overlap.
type Run struct {
	Col      int // 1-based: 1=level1, 2=level2, 3=level3
	StartRow int
	EndRow   int
}

// headingColumns is the number of leading columns eligible for merging.
const headingColumns = 3

// MergeRuns computes, for each heading column independently, the spans of
// identical non-empty values across the record rows. Only spans covering two
// or more rows are returned. An empty value terminates an open run without
// starting a new one, so equal values separated by an empty row stay in
// separate runs. The computation is a pure function of the record sequence;
// applying the resulting merges to a worksheet is the caller's concern.
func MergeRuns(records []Record) []Run {
	var runs []Run
	for col := 1; col <= headingColumns; col++ {
		runs = append(runs, columnRuns(records, col)...)
	}
	return runs
}

func columnRuns(records []Record, col int) []Run {
	var runs []Run
	start := -1 // records index where the open run began, -1 if none
	current := ""

	// emit emits the open run if it spans at least two rows ending at
	// records index end.
	emit := func(end int) {
		if start >= 0 && end > start {
			runs = append(runs, Run{Col: col, StartRow: start + 2, EndRow: end + 2})
		}
	}

	for i, rec := range records {
		v := headingValue(rec, col)
		if v == "" {
			emit(i - 1)
			start = -1
			current = ""
			continue
		}
		if v != current {
			emit(i - 1)
			current = v
			start = i
		}
	}
	emit(len(records) - 1)

	return runs
}

func headingValue(r Record, col int) string {
	switch col {
	case 1:
		return r.Level1
	case 2:
		return r.Level2
	case 3:
		return r.Level3
	}
	return ""
}
