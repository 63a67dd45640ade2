// SAM header provenance: appends an @PG program record (and optional @CO
// comment) to the header block emitted on every output stream.

package main

import (
	"fmt"
	"io"
	"strings"
)

// MalformedHeaderError reports a header block containing a line that does
// not begin with '@'. Detected before any output is produced, since garbled
// provenance would corrupt every downstream file.
type MalformedHeaderError struct {
	Line string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("incorrect SAM header format: %q", e.Line)
}

// addPGTag returns a copy of the header block with one @PG line appended
// identifying this tool and its version. When the previous last line is
// itself an @PG record, a PP back-reference to its ID is included so the
// program chain stays intact. A non-empty comment adds one @CO line after
// the @PG line. The input slice is never modified.
func addPGTag(header []string, comment string) ([]string, error) {
	for _, line := range header {
		if !strings.HasPrefix(line, "@") {
			return nil, &MalformedHeaderError{Line: line}
		}
	}

	pp := ""
	if len(header) > 0 && strings.HasPrefix(header[len(header)-1], "@PG") {
		for _, f := range strings.Fields(header[len(header)-1]) {
			if strings.HasPrefix(f, "ID:") {
				pp = "PP:" + f[len("ID:"):] + "\t"
				break
			}
		}
	}

	out := make([]string, 0, len(header)+2)
	out = append(out, header...)
	out = append(out, fmt.Sprintf("@PG\tID:Xenomapper\tPN:Xenomapper\t%sVN:%s", pp, VERSION))
	if comment != "" {
		out = append(out, "@CO\t"+comment)
	}
	return out, nil
}

// Destination-specific @CO comments describing which reads each configured
// output stream contains.
var categoryComments = map[Category]string{
	PrimarySpecific: "species specific reads",
	PrimaryMulti:    "species specific multimapping reads",
	Unassigned:      "reads that could not be assigned",
}

// processHeaders writes an annotated copy of the source header block to
// every configured destination. The source header is read once; each
// destination gets its own @PG/@CO annotation.
func processHeaders(header []string, outputs Outputs) error {
	for _, category := range []Category{PrimarySpecific, PrimaryMulti, Unassigned} {
		w := outputs.writer(category)
		if w == nil {
			continue
		}
		annotated, err := addPGTag(header, categoryComments[category])
		if err != nil {
			return err
		}
		if err := writeHeader(w, annotated); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, header []string) error {
	for _, line := range header {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
