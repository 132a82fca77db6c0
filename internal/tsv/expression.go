package tsv

import (
	"bufio"
	"fmt"
	"io"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// GeneCountRow is one gene of a STAR augmented gene-count table.
type GeneCountRow struct {
	GeneID   string
	GeneName string
	GeneType string
	Raw      int64
	FPKM     float64
}

// MiRNARow is one miRNA of a quantification table.
type MiRNARow struct {
	MiRNAID string
	Raw     int64
	RPM     float64
}

// miRNA quantification columns.
const (
	ColMiRNAID   = "miRNA_ID"
	ColReadCount = "read_count"
	ColRPM       = "reads_per_million_miRNA_mapped"
)

// ReadGeneCounts reads up to limit gene rows (0 means all) after the fixed
// preamble. Columns: 0 id, 1 name, 2 type, 3 raw count, 6 FPKM.
func ReadGeneCounts(path string, limit int) ([]GeneCountRow, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := base(path)
	br := bufio.NewReader(f)
	skipped, err := skipLines(br, geneCountPreamble)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	cr := newReader(br)

	var rows []GeneCountRow
	for limit == 0 || len(rows) < limit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierr.Parse(file, skipped+errLine(err), err.Error())
		}
		line := skipped + lineOf(cr)
		if len(rec) < 7 {
			return nil, apierr.Parse(file, line, fmt.Sprintf("expected at least 7 columns, got %d", len(rec)))
		}
		raw, err := parseCount(rec[3])
		if err != nil {
			return nil, apierr.Parse(file, line, err.Error())
		}
		fpkm, err := parseValue(rec[6])
		if err != nil {
			return nil, apierr.Parse(file, line, err.Error())
		}
		if rec[0] == "" {
			return nil, apierr.Parse(file, line, "empty gene id")
		}
		rows = append(rows, GeneCountRow{
			GeneID:   rec[0],
			GeneName: rec[1],
			GeneType: rec[2],
			Raw:      raw,
			FPKM:     fpkm,
		})
	}
	return rows, nil
}

// ReadMiRNA reads up to limit rows (0 means all) of a miRNA quantification
// table with a single header row.
func ReadMiRNA(path string, limit int) ([]MiRNARow, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := base(path)
	cr := newReader(f)
	h, err := readHeader(file, cr, []string{ColMiRNAID, ColReadCount, ColRPM})
	if err != nil {
		return nil, err
	}

	var rows []MiRNARow
	for limit == 0 || len(rows) < limit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierr.Parse(file, errLine(err), err.Error())
		}
		line := lineOf(cr)
		id, err := h.get(rec, line, ColMiRNAID)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, apierr.Parse(file, line, "empty "+ColMiRNAID)
		}
		rc, err := h.get(rec, line, ColReadCount)
		if err != nil {
			return nil, err
		}
		raw, err := parseCount(rc)
		if err != nil {
			return nil, apierr.Parse(file, line, err.Error())
		}
		rv, err := h.get(rec, line, ColRPM)
		if err != nil {
			return nil, err
		}
		rpm, err := parseValue(rv)
		if err != nil {
			return nil, apierr.Parse(file, line, err.Error())
		}
		rows = append(rows, MiRNARow{MiRNAID: id, Raw: raw, RPM: rpm})
	}
	return rows, nil
}
