package tsv

import (
	"io"

	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// Metadata manifest columns.
const (
	ColFileName             = "file_name"
	ColExperimentalStrategy = "experimental_strategy"
	ColCaseID               = "cases.0.case_id"
	ColDiseaseType          = "cases.0.disease_type"
	ColSampleType           = "cases.0.samples.0.sample_type"
	ColProjectID            = "cases.0.project.project_id"
	ColID                   = "id"
)

var metadataColumns = []string{
	ColFileName, ColExperimentalStrategy, ColCaseID, ColDiseaseType,
	ColSampleType, ColProjectID, ColID,
}

// MetadataRow is one data file described by the GDC file manifest.
type MetadataRow struct {
	Line                 int
	FileName             string
	ExperimentalStrategy string
	CaseID               string
	DiseaseType          string
	SampleType           string
	ProjectID            string
	ID                   string
}

// Format returns the expression layout implied by the file name.
func (r MetadataRow) Format() Format {
	f, _ := FormatForFileName(r.FileName)
	return f
}

// ReadMetadata reads the manifest at path and keeps only rows naming a
// recognized expression file. Retained rows must carry every merge key.
func ReadMetadata(path string) ([]MetadataRow, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := base(path)
	cr := newReader(f)
	h, err := readHeader(file, cr, metadataColumns)
	if err != nil {
		return nil, err
	}

	var rows []MetadataRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierr.Parse(file, errLine(err), err.Error())
		}
		line := lineOf(cr)
		vals := make(map[string]string, len(metadataColumns))
		for _, col := range metadataColumns {
			v, err := h.get(rec, line, col)
			if err != nil {
				return nil, err
			}
			vals[col] = v
		}
		rows = append(rows, MetadataRow{
			Line:                 line,
			FileName:             vals[ColFileName],
			ExperimentalStrategy: vals[ColExperimentalStrategy],
			CaseID:               vals[ColCaseID],
			DiseaseType:          vals[ColDiseaseType],
			SampleType:           vals[ColSampleType],
			ProjectID:            vals[ColProjectID],
			ID:                   vals[ColID],
		})
	}

	rows = FilterMetadata(rows)
	for _, r := range rows {
		if err := r.validate(file); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// FilterMetadata keeps rows whose file name has a recognized suffix.
// Applying it twice yields the same rows.
func FilterMetadata(rows []MetadataRow) []MetadataRow {
	out := make([]MetadataRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := FormatForFileName(r.FileName); ok {
			out = append(out, r)
		}
	}
	return out
}

func (r MetadataRow) validate(file string) error {
	for _, kv := range [][2]string{
		{ColID, r.ID},
		{ColCaseID, r.CaseID},
		{ColProjectID, r.ProjectID},
		{ColDiseaseType, r.DiseaseType},
	} {
		if kv[1] == "" {
			return apierr.Parse(file, r.Line, "empty "+kv[0])
		}
	}
	return nil
}
