// Streaming partitioner: classifies each record, tallies categories, and
// routes records to the output stream bound to their category.

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// CategoryCounts tallies how many reads fell into each category during one
// run. Absent categories count as zero.
type CategoryCounts map[Category]int

// Outputs holds the optional destination streams, fixed before processing
// begins. A nil destination means reads of that category are counted but
// not written anywhere. The streams are owned by the caller; the
// partitioner never opens, closes, or flushes them.
type Outputs struct {
	PrimarySpecific io.Writer
	PrimaryMulti    io.Writer
	Unassigned      io.Writer
}

func (o Outputs) writer(category Category) io.Writer {
	switch category {
	case PrimarySpecific:
		return o.PrimarySpecific
	case PrimaryMulti:
		return o.PrimaryMulti
	case Unassigned:
		return o.Unassigned
	}
	return nil
}

// processRecords is the main loop for single end read files. Records are
// consumed from src one at a time in strict input order: the AS and XS
// scores are extracted with tagFunc, the read is classified, the count for
// its category is incremented, and the record is written tab-joined and
// newline-terminated to the destination bound to that category, if any.
// Nothing is buffered beyond the record currently in hand.
//
// The final counts are returned once src is exhausted. Any extraction or
// classification error aborts the run immediately; records already written
// stay written.
func processRecords(src RecordSource, outputs Outputs, minScore float64, tagFunc TagFunc) (CategoryCounts, error) {
	counts := CategoryCounts{}

	for {
		fields, err := src.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 || fields[0] == "" {
			// An empty line terminates the stream.
			return counts, nil
		}

		as, err := tagFunc(fields, "AS")
		if err != nil {
			return nil, err
		}
		xs, err := tagFunc(fields, "XS")
		if err != nil {
			return nil, err
		}

		state, err := getMappingState(as, xs, minScore)
		if err != nil {
			return nil, err
		}

		counts[state]++

		switch state {
		case PrimarySpecific, PrimaryMulti, Unassigned:
			if w := outputs.writer(state); w != nil {
				if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
					return nil, err
				}
			}
		default:
			return nil, &UnreachableStateError{AS: as, XS: xs, MinScore: minScore}
		}
	}
}

// writeSummary renders the final category counts as a Markdown-style table,
// one row per observed category, rows ascending by category name.
func writeSummary(counts CategoryCounts, w io.Writer) error {
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprint(w, "Read Count Category Summary\n\n")
	fmt.Fprintf(w, "|       %-45s|     %-10s  |\n", "Category", "Count")
	fmt.Fprintf(w, "|:%s:|:%s:|\n", strings.Repeat("-", 50), strings.Repeat("-", 15))
	for _, category := range categories {
		if _, err := fmt.Fprintf(w, "|  %-50s|%15d  |\n", category, counts[Category(category)]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
