// xenomapper: classifies reads from a SAM/BAM alignment by mapping
// specificity and partitions them into per-category output files.
// Best used with bowtie2 output carrying AS and XS score tags.

package main

import (
	"fmt"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

const VERSION = "1.0.1"

// Replaceable for testing
var exitFunc = os.Exit

// Color functions for terminal output
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Command-line flags
var (
	primaryFile         string
	forceBAM            bool
	primarySpecificFile string
	primaryMultiFile    string
	unassignedFile      string
	summaryFile         string
	minScore            float64
	cigarScore          bool
	looseTags           bool
	version             bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xenomapper",
		Short: bold("Partition SAM/BAM reads by mapping specificity"),
		Long: `Parses a SAM or BAM alignment and returns SAM files containing only reads
mapping specifically, reads multimapping, or reads that could not be assigned.
Used for filtering reads where multiple species may contribute (eg human
tissue xenografted into mouse).

Input should contain AS and XS score tags; better matches must have a higher
alignment score (but scores can be negative). In practice this is best
achieved with bowtie2 in --local mode. Limited support for aligners without
AS/XS tags is provided via --cigar-score.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version {
				fmt.Printf("xenomapper %s\n", VERSION)
				exitFunc(0)
			}
			return runXenomapper()
		},
	}

	rootCmd.SetHelpFunc(helpFunc)

	flags := rootCmd.Flags()
	flags.StringVarP(&primaryFile, "primary", "p", "-", "SAM/BAM alignment of the species of interest (use - for stdin)")
	flags.BoolVar(&forceBAM, "bam", false, "Treat the input as BAM regardless of file extension")
	flags.StringVar(&primarySpecificFile, "primary-specific", "-", "SAM output for reads mapping to a specific location (use - for stdout)")
	flags.StringVar(&primaryMultiFile, "primary-multi", "", "SAM output for multimapping reads (unset: counted only)")
	flags.StringVar(&unassignedFile, "unassigned", "", "SAM output for unassigned reads (unset: counted only)")
	flags.StringVar(&summaryFile, "summary", "", "Destination for the category count summary (default stderr)")
	flags.Float64Var(&minScore, "min-score", math.Inf(-1), "Minimum score a match must exceed to be considered valid")
	flags.BoolVar(&cigarScore, "cigar-score", false, "Derive the best score from CIGAR and NM instead of the AS tag")
	flags.BoolVar(&looseTags, "loose-tags", false, "Match tag names by substring instead of exact prefix (legacy behaviour)")
	flags.BoolVarP(&version, "version", "v", false, "Show version information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		fmt.Fprintln(os.Stderr, red("Try 'xenomapper --help' for more information"))
		exitFunc(1)
	}
}

// runXenomapper wires the pipeline: open the input source, open the
// configured outputs, annotate and emit headers, partition the record
// stream, and render the summary. File handles are owned here; the core
// never opens or closes them.
func runXenomapper() error {
	src, err := openSource(primaryFile, forceBAM)
	if err != nil {
		return err
	}
	defer src.Close()

	var outputs Outputs
	closers := make([]func() error, 0, 3)
	defer func() {
		for _, closeOutput := range closers {
			closeOutput()
		}
	}()

	if primarySpecificFile != "" {
		fh, err := openOutput(primarySpecificFile)
		if err != nil {
			return err
		}
		closers = append(closers, fh.Close)
		outputs.PrimarySpecific = fh
	}
	if primaryMultiFile != "" {
		fh, err := openOutput(primaryMultiFile)
		if err != nil {
			return err
		}
		closers = append(closers, fh.Close)
		outputs.PrimaryMulti = fh
	}
	if unassignedFile != "" {
		fh, err := openOutput(unassignedFile)
		if err != nil {
			return err
		}
		closers = append(closers, fh.Close)
		outputs.Unassigned = fh
	}

	if err := processHeaders(src.Header(), outputs); err != nil {
		return err
	}

	counts, err := processRecords(src, outputs, minScore, tagExtractor(cigarScore, looseTags))
	if err != nil {
		return err
	}

	if summaryFile != "" {
		fh, err := openOutput(summaryFile)
		if err != nil {
			return err
		}
		defer fh.Close()
		return writeSummary(counts, fh)
	}
	return writeSummary(counts, os.Stderr)
}

// openOutput creates an output file handle, with "-" meaning stdout and
// compression chosen from the file extension.
func openOutput(path string) (*xopen.Writer, error) {
	fh, err := xopen.Wopen(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %v", err)
	}
	return fh, nil
}
