// Mapping-state classification: decides the category of a read from its
// alignment scores.

package main

import (
	"fmt"
	"math"
)

// Category is the classification outcome assigned to a read.
type Category string

const (
	PrimarySpecific Category = "primary_specific"
	PrimaryMulti    Category = "primary_multi"
	Unassigned      Category = "unassigned"

	// Reserved for the two-species comparison mode. The single-stream
	// pipeline never produces these.
	SecondarySpecific Category = "secondary_specific"
	SecondaryMulti    Category = "secondary_multi"
	Unresolved        Category = "unresolved"
)

// UnreachableStateError reports that the classification decision tree was
// exited without reaching one of its defined branches. This is a logic
// defect, not an input problem, and is never mapped to a default category.
type UnreachableStateError struct {
	AS       float64
	XS       float64
	MinScore float64
}

func (e *UnreachableStateError) Error() string {
	return fmt.Sprintf("unreachable mapping state with values AS=%v XS=%v min-score=%v", e.AS, e.XS, e.MinScore)
}

// getMappingState determines the mapping category from the best (AS) and
// second-best (XS) alignment scores of a read. Scores can be negative, but
// better matches must have higher scores. An absent score is represented as
// -Inf so it always compares as worse than any present score.
//
// Reads whose best score does not exceed minScore are unassigned; scores
// equalling minScore are also considered not to match. A best score that is
// not strictly better than the second-best score is ambiguous
// (primary_multi), never specific.
func getMappingState(as, xs, minScore float64) (Category, error) {
	if as <= minScore {
		return Unassigned, nil
	} else if as > minScore {
		if math.IsInf(xs, -1) || as > xs {
			return PrimarySpecific, nil
		}
		return PrimaryMulti, nil
	}
	// Reached only when a score is NaN and every comparison above failed.
	return "", &UnreachableStateError{AS: as, XS: xs, MinScore: minScore}
}
