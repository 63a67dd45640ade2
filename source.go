// Record sources: decode SAM text (plain or compressed) and binary BAM
// into whitespace-split field lists, one per alignment line.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/shenwei356/xopen"
)

// Positional SAM field indices used by the core. Fields 0-10 are mandatory;
// optional NAME:TYPE:VALUE tags start at index 11.
const (
	samCigarField    = 5
	samOptionalField = 11
)

// Long-read SAM lines can run to megabytes; the scanner buffer grows up to
// this limit.
const maxLineBytes = 16 * 1024 * 1024

// RecordSource yields one alignment record at a time as a list of
// whitespace-delimited fields, after exposing the leading header block.
// Next returns io.EOF once the stream is exhausted.
type RecordSource interface {
	Header() []string
	Next() ([]string, error)
	Close() error
}

// openSource opens path as a RecordSource. BAM input is selected by the
// .bam extension or forced with forceBAM; everything else is read as SAM
// text ("-" for stdin, compressed files handled transparently).
func openSource(path string, forceBAM bool) (RecordSource, error) {
	if forceBAM || strings.HasSuffix(path, ".bam") {
		return newBAMSource(path)
	}
	return newSAMSource(path)
}

// samSource streams a SAM text file. The header block is consumed during
// construction; the first data line is held pending until the first Next.
type samSource struct {
	fh         *xopen.Reader
	scanner    *bufio.Scanner
	header     []string
	pending    []string
	hasPending bool
}

func newSAMSource(path string) (*samSource, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("error opening SAM input: %v", err)
	}

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	s := &samSource{fh: fh, scanner: scanner}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "@") {
			s.header = append(s.header, line)
			continue
		}
		s.pending = strings.Fields(line)
		s.hasPending = true
		break
	}
	if err := scanner.Err(); err != nil {
		fh.Close()
		return nil, err
	}
	return s, nil
}

func (s *samSource) Header() []string { return s.header }

func (s *samSource) Next() ([]string, error) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, nil
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return strings.Fields(s.scanner.Text()), nil
}

func (s *samSource) Close() error { return s.fh.Close() }

// bamSource decodes a BAM file and presents each record in its SAM text
// form, matching what a samtools view pipe would produce.
type bamSource struct {
	f      *os.File
	br     *bam.Reader
	header []string
}

func newBAMSource(path string) (*bamSource, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening BAM input: %v", err)
		}
	}

	br, err := bam.NewReader(f, 1)
	if err != nil {
		if f != os.Stdin {
			f.Close()
		}
		return nil, fmt.Errorf("error reading BAM input: %v", err)
	}

	text, err := br.Header().MarshalText()
	if err != nil {
		br.Close()
		return nil, err
	}
	var header []string
	if trimmed := strings.TrimRight(string(text), "\n"); trimmed != "" {
		header = strings.Split(trimmed, "\n")
	}

	return &bamSource{f: f, br: br, header: header}, nil
}

func (s *bamSource) Header() []string { return s.header }

func (s *bamSource) Next() ([]string, error) {
	r, err := s.br.Read()
	if err != nil {
		return nil, err
	}
	return samFields(r), nil
}

func (s *bamSource) Close() error {
	err := s.br.Close()
	if s.f != os.Stdin {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// samFields renders one decoded BAM record as its SAM text fields: the 11
// mandatory columns followed by the optional tags.
func samFields(r *sam.Record) []string {
	fields := make([]string, 0, samOptionalField+len(r.AuxFields))
	fields = append(fields,
		r.Name,
		strconv.Itoa(int(r.Flags)),
		refName(r.Ref),
		strconv.Itoa(r.Pos+1),
		strconv.Itoa(int(r.MapQ)),
		cigarString(r.Cigar),
		mateRefName(r),
		strconv.Itoa(r.MatePos+1),
		strconv.Itoa(r.TempLen),
		seqString(r.Seq),
		qualString(r.Qual),
	)
	for _, aux := range r.AuxFields {
		fields = append(fields, aux.String())
	}
	return fields
}

func refName(ref *sam.Reference) string {
	if ref == nil {
		return "*"
	}
	return ref.Name()
}

func mateRefName(r *sam.Record) string {
	if r.MateRef == nil {
		return "*"
	}
	if r.Ref != nil && r.MateRef.Name() == r.Ref.Name() {
		return "="
	}
	return r.MateRef.Name()
}

func cigarString(c sam.Cigar) string {
	if len(c) == 0 {
		return "*"
	}
	return c.String()
}

func seqString(s sam.Seq) string {
	if s.Length == 0 {
		return "*"
	}
	return string(s.Expand())
}

func qualString(qual []byte) string {
	if len(qual) == 0 {
		return "*"
	}
	text := make([]byte, len(qual))
	missing := true
	for i, q := range qual {
		if q != 0xff {
			missing = false
		}
		text[i] = q + 33
	}
	if missing {
		return "*"
	}
	return string(text)
}
