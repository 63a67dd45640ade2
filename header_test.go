package main

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAddPGTag(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		comment string
		want    []string
		wantErr bool
	}{
		{
			name:   "Plain header",
			header: []string{"@HD\tVN:1.6\tSO:unsorted", "@SQ\tSN:chr1\tLN:248956422"},
			want: []string{
				"@HD\tVN:1.6\tSO:unsorted",
				"@SQ\tSN:chr1\tLN:248956422",
				"@PG\tID:Xenomapper\tPN:Xenomapper\tVN:" + VERSION,
			},
		},
		{
			name:    "Header with comment",
			header:  []string{"@HD\tVN:1.6"},
			comment: "species specific reads",
			want: []string{
				"@HD\tVN:1.6",
				"@PG\tID:Xenomapper\tPN:Xenomapper\tVN:" + VERSION,
				"@CO\tspecies specific reads",
			},
		},
		{
			name:   "Previous program back-reference",
			header: []string{"@HD\tVN:1.6", "@PG\tID:bowtie2\tPN:bowtie2\tVN:2.4.4"},
			want: []string{
				"@HD\tVN:1.6",
				"@PG\tID:bowtie2\tPN:bowtie2\tVN:2.4.4",
				"@PG\tID:Xenomapper\tPN:Xenomapper\tPP:bowtie2\tVN:" + VERSION,
			},
		},
		{
			name:   "Empty header still gets a program record",
			header: nil,
			want:   []string{"@PG\tID:Xenomapper\tPN:Xenomapper\tVN:" + VERSION},
		},
		{
			name:    "Line without header marker",
			header:  []string{"@HD\tVN:1.6", "read1\t0\tchr1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := addPGTag(tt.header, tt.comment)
			if (err != nil) != tt.wantErr {
				t.Fatalf("addPGTag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var malformed *MalformedHeaderError
				if !errors.As(err, &malformed) {
					t.Fatalf("addPGTag() error = %v, want MalformedHeaderError", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("addPGTag() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Annotating and re-parsing must yield the original lines as a prefix plus
// exactly one @PG line (two lines with a comment)
func TestAddPGTagRoundTrip(t *testing.T) {
	header := []string{"@HD\tVN:1.6", "@SQ\tSN:chr1\tLN:1000"}

	got, err := addPGTag(header, "reads that could not be assigned")
	if err != nil {
		t.Fatalf("addPGTag() error = %v", err)
	}
	if !reflect.DeepEqual(got[:len(header)], header) {
		t.Errorf("original header lines not preserved as prefix: %v", got)
	}
	if len(got) != len(header)+2 {
		t.Fatalf("addPGTag() appended %d lines, want 2", len(got)-len(header))
	}
	if !strings.HasPrefix(got[len(header)], "@PG\t") {
		t.Errorf("appended line %q is not a program record", got[len(header)])
	}
	if !strings.HasPrefix(got[len(header)+1], "@CO\t") {
		t.Errorf("appended line %q is not a comment", got[len(header)+1])
	}

	// The input slice must not be modified
	if !reflect.DeepEqual(header, []string{"@HD\tVN:1.6", "@SQ\tSN:chr1\tLN:1000"}) {
		t.Errorf("addPGTag() modified its input: %v", header)
	}
}

func TestProcessHeaders(t *testing.T) {
	header := []string{"@HD\tVN:1.6", "@SQ\tSN:chr1\tLN:1000"}

	var specific, unassigned bytes.Buffer
	outputs := Outputs{
		PrimarySpecific: &specific,
		Unassigned:      &unassigned,
	}

	if err := processHeaders(header, outputs); err != nil {
		t.Fatalf("processHeaders() error = %v", err)
	}

	for _, tt := range []struct {
		name    string
		buf     *bytes.Buffer
		comment string
	}{
		{"primary_specific", &specific, "@CO\tspecies specific reads"},
		{"unassigned", &unassigned, "@CO\treads that could not be assigned"},
	} {
		lines := strings.Split(strings.TrimRight(tt.buf.String(), "\n"), "\n")
		if !reflect.DeepEqual(lines[:2], header) {
			t.Errorf("%s: header lines not preserved: %v", tt.name, lines)
		}
		if lines[len(lines)-1] != tt.comment {
			t.Errorf("%s: last line = %q, want %q", tt.name, lines[len(lines)-1], tt.comment)
		}
	}
}

func TestProcessHeadersMalformed(t *testing.T) {
	var buf bytes.Buffer
	err := processHeaders([]string{"no marker"}, Outputs{PrimarySpecific: &buf})
	var malformed *MalformedHeaderError
	if !errors.As(err, &malformed) {
		t.Fatalf("processHeaders() error = %v, want MalformedHeaderError", err)
	}
	if buf.Len() != 0 {
		t.Errorf("processHeaders() wrote output before failing: %q", buf.String())
	}
}
