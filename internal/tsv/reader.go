package tsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// geneCountPreamble is the number of leading lines in a STAR gene-count
// table (comment, header and N_* summary rows) before gene data starts.
const geneCountPreamble = 6

// open opens path, mapping a missing file to MISSING_FILE.
func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apierr.MissingFile(path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// header maps column names to positions and checks the required ones exist.
type header struct {
	file string
	idx  map[string]int
}

func readHeader(file string, cr *csv.Reader, required []string) (*header, error) {
	rec, err := cr.Read()
	if err == io.EOF {
		return nil, apierr.Parse(file, 1, "missing header row")
	}
	if err != nil {
		return nil, apierr.Parse(file, 1, err.Error())
	}
	h := &header{file: file, idx: make(map[string]int, len(rec))}
	for i, name := range rec {
		h.idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := h.idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Parse(file, 1, "missing column(s) "+strings.Join(missing, ", "))
	}
	return h, nil
}

func (h *header) get(rec []string, line int, col string) (string, error) {
	i := h.idx[col]
	if i >= len(rec) {
		return "", apierr.Parse(h.file, line, fmt.Sprintf("row has %d fields, column %s missing", len(rec), col))
	}
	return strings.TrimSpace(rec[i]), nil
}

// lineOf returns the 1-based line of the record the reader last returned.
func lineOf(cr *csv.Reader) int {
	line, _ := cr.FieldPos(0)
	return line
}

// errLine returns the line a csv read error points at.
func errLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

// parseCount accepts integer counts, including float renderings like "100.0".
func parseCount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}

func parseValue(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return f, nil
}

func base(path string) string { return filepath.Base(path) }

// skipLines discards n lines from br, tolerating a short file.
func skipLines(br *bufio.Reader, n int) (int, error) {
	skipped := 0
	for skipped < n {
		_, err := br.ReadString('\n')
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}
