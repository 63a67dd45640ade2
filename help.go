package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Custom help function with colorized output for the root command
func helpFunc(cmd *cobra.Command, args []string) {
	fmt.Printf(`
%s

%s
  Parses a SAM or BAM alignment and partitions reads into SAM outputs by
  mapping specificity: reads mapping to a single location, multimapping
  reads, and reads that could not be assigned. Input should carry AS and
  XS score tags (bowtie2); better matches must have higher scores, which
  can be negative. A category count summary is printed when done.

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

%s
  %s
  %s
  %s

  # To write BAM outputs, pipe through samtools:
  %s

`,
		bold(cyan("xenomapper")+" v."+VERSION+" - Partitions SAM/BAM reads by mapping specificity"),
		bold(yellow("Description:")),
		bold(yellow("Flags:")),
		cyan("-p, --primary")+" <string>          : SAM/BAM alignment of the species of interest (use '-' for stdin)",
		cyan("    --bam")+" <bool>                : Treat the input as BAM regardless of file extension",
		cyan("    --primary-specific")+" <string> : Output for reads mapping to a specific location (default, '-' = stdout)",
		cyan("    --primary-multi")+" <string>    : Output for multimapping reads (unset: counted only)",
		cyan("    --unassigned")+" <string>       : Output for unassigned reads (unset: counted only)",
		cyan("    --summary")+" <string>          : Destination for the count summary (default, stderr)",
		cyan("    --min-score")+" <float>         : Minimum score a match must exceed to be considered valid",
		cyan("    --cigar-score")+" <bool>        : Derive the best score from CIGAR and NM instead of the AS tag",
		cyan("    --loose-tags")+" <bool>         : Match tag names by substring instead of exact prefix",
		cyan("-h, --help")+"                      : Show help message",
		cyan("-v, --version")+"                   : Show version information",
		bold(yellow("Usage examples:")),
		cyan("xenomapper --primary human.bam --primary-specific specific.sam --primary-multi multi.sam"),
		cyan("bowtie2 --local -x grch38 -U reads.fq | xenomapper -p - --unassigned unassigned.sam.gz"),
		cyan("xenomapper -p aligned.sam --min-score 20 --summary counts.md"),
		cyan("xenomapper -p human.bam --primary-specific >(samtools view -bS - > specific.bam)"),
	)
}
