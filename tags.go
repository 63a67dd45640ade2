// SAM optional-tag extraction and the cigar-based score fallback for
// aligners that do not emit AS/XS tags.

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MalformedRecordError reports a SAM line carrying more than one value for
// the same optional tag. Duplicate tags are ambiguous: silently picking one
// could misclassify a read with no visible signal.
type MalformedRecordError struct {
	Tag    string
	Record []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("SAM line has multiple values of %s: %s", e.Tag, strings.Join(e.Record, "\t"))
}

// TagFunc resolves a named numeric tag (at least "AS" and "XS") on a SAM
// line split into fields. Absent tags are reported as -Inf.
type TagFunc func(fields []string, tag string) (float64, error)

// getTag returns the value of an optional SAM tag as a float, or -Inf if
// the tag is not present. Only the optional-field region (fields 11+) is
// scanned, and only fields whose name part is exactly the requested tag
// match. Suitable for numeric tags such as AS or XS; -Inf is always worse
// than any score bowtie2 can emit.
func getTag(fields []string, tag string) (float64, error) {
	return lookupTag(fields, tag, false)
}

// getTagLoose matches like the original xenomapper: any optional field
// merely containing the tag name is a hit. Kept behind a flag for aligner
// outputs that depend on the historic behaviour; the strict form is the
// default because a tag name can occur inside another tag's name or value.
func getTagLoose(fields []string, tag string) (float64, error) {
	return lookupTag(fields, tag, true)
}

func lookupTag(fields []string, tag string, loose bool) (float64, error) {
	if len(fields) <= samOptionalField {
		return math.Inf(-1), nil
	}
	prefix := tag + ":"
	var match string
	found := false
	for _, f := range fields[samOptionalField:] {
		if loose {
			if !strings.Contains(f, tag) {
				continue
			}
		} else if !strings.HasPrefix(f, prefix) {
			continue
		}
		if found {
			return 0, &MalformedRecordError{Tag: tag, Record: fields}
		}
		match = f
		found = true
	}
	if !found {
		return math.Inf(-1), nil
	}
	value := match[strings.LastIndex(match, ":")+1:]
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s tag %q: %v", tag, match, err)
	}
	return v, nil
}

// Alignment score penalties used by the cigar fallback. These mirror the
// bowtie2 end-to-end defaults: each mismatch costs 6, each gap costs 5 to
// open plus 3 per gapped base.
const (
	mismatchPenalty  = 6
	gapOpenPenalty   = 5
	gapExtendPenalty = 3
)

// cigarScoreTag is a TagFunc substitute for aligners without AS tags. The
// best score is reconstructed from the CIGAR string and the NM edit
// distance; the second-best score still comes from the XS tag when one is
// present. Unmapped reads score -Inf.
func cigarScoreTag(fields []string, tag string) (float64, error) {
	if tag != "AS" {
		return getTag(fields, tag)
	}
	if len(fields) <= samCigarField {
		return 0, fmt.Errorf("SAM line has no CIGAR field: %s", strings.Join(fields, "\t"))
	}
	cigar := fields[samCigarField]
	if cigar == "*" {
		return math.Inf(-1), nil
	}
	nm, err := getTag(fields, "NM")
	if err != nil {
		return 0, err
	}
	if math.IsInf(nm, -1) {
		nm = 0
	}

	gapped := 0 // bases in insertions and deletions
	score := 0.0
	n := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			continue
		}
		switch c {
		case 'I', 'D':
			score -= float64(gapOpenPenalty + gapExtendPenalty*n)
			gapped += n
		case 'M', '=', 'X', 'S', 'H', 'N', 'P':
			// no direct penalty; mismatches are charged via NM below
		default:
			return 0, fmt.Errorf("invalid CIGAR operation %q in %q", string(c), cigar)
		}
		n = 0
	}

	// NM counts mismatched, inserted and deleted bases; the gapped bases
	// were already charged at gap rates.
	mismatches := nm - float64(gapped)
	if mismatches < 0 {
		mismatches = 0
	}
	score -= mismatchPenalty * mismatches
	return score, nil
}

// tagExtractor selects the TagFunc for a run.
func tagExtractor(cigarScore, looseTags bool) TagFunc {
	switch {
	case cigarScore:
		return cigarScoreTag
	case looseTags:
		return getTagLoose
	default:
		return getTag
	}
}
