// Package tsv reads the tab-separated files the GDC serves: the file metadata
// manifest, STAR gene-count tables and miRNA quantification tables.
package tsv

import "strings"

// Format is a recognized expression file layout.
type Format int

const (
	FormatUnknown Format = iota
	FormatGeneCounts
	FormatMiRNA
)

const (
	GeneCountsSuffix = "augmented_star_gene_counts.tsv"
	MiRNASuffix      = "mirnaseq.mirnas.quantification.txt"
)

func (f Format) String() string {
	switch f {
	case FormatGeneCounts:
		return "gene_counts"
	case FormatMiRNA:
		return "mirna"
	default:
		return "unknown"
	}
}

// FormatForFileName dispatches on the file-name suffix.
func FormatForFileName(name string) (Format, bool) {
	switch {
	case strings.HasSuffix(name, GeneCountsSuffix):
		return FormatGeneCounts, true
	case strings.HasSuffix(name, MiRNASuffix):
		return FormatMiRNA, true
	default:
		return FormatUnknown, false
	}
}
