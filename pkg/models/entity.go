package models

// Label is a graph node label.
type Label string

const (
	LabelProject     Label = "Project"
	LabelDisease     Label = "Disease"
	LabelSample      Label = "Sample"
	LabelMeasurement Label = "Measurement"
	LabelExpression  Label = "Expression"
	LabelGene        Label = "Gene"
)

// Merge keys. Each is unique within its label.
const (
	KeyProject     = "id"
	KeyDisease     = "name"
	KeySample      = "id"
	KeyMeasurement = "id"
	KeyExpression  = "uid"
	KeyGene        = "id"
)

// NormType tags how an Expression's norm value was normalised.
type NormType string

const (
	NormFPKM NormType = "fpkm"
	NormRPM  NormType = "rpm"
)

const (
	// GeneTypeMiRNA is the fixed gene type for miRNA quantification rows.
	GeneTypeMiRNA = "miRNA"
	// UnknownGeneName is stored for genes whose source file carries no name.
	UnknownGeneName = "-"
)

// KeyFor returns the merge key property of a label, or "" for a label
// outside the schema.
func KeyFor(l Label) string {
	switch l {
	case LabelProject:
		return KeyProject
	case LabelDisease:
		return KeyDisease
	case LabelSample:
		return KeySample
	case LabelMeasurement:
		return KeyMeasurement
	case LabelExpression:
		return KeyExpression
	case LabelGene:
		return KeyGene
	default:
		return ""
	}
}

type Project struct {
	ID string `json:"id"`
}

func (p Project) Props() map[string]any { return map[string]any{KeyProject: p.ID} }

type Disease struct {
	Name string `json:"name"`
}

func (d Disease) Props() map[string]any { return map[string]any{KeyDisease: d.Name} }

type Sample struct {
	ID         string `json:"id"`
	SampleType string `json:"sample_type"`
}

func (s Sample) Props() map[string]any {
	return map[string]any{KeySample: s.ID, "sample_type": s.SampleType}
}

// Measurement is one source data file. Type is the experimental strategy.
type Measurement struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (m Measurement) Props() map[string]any {
	return map[string]any{KeyMeasurement: m.ID, "type": m.Type}
}

// Expression is one gene's value within one measurement. UID is generated
// per ingested row and never derived from content.
type Expression struct {
	UID      string   `json:"uid"`
	Raw      int64    `json:"raw"`
	Norm     float64  `json:"norm"`
	NormType NormType `json:"norm_type"`
}

func (e Expression) Props() map[string]any {
	return map[string]any{
		KeyExpression: e.UID,
		"raw":         e.Raw,
		"norm":        e.Norm,
		"norm_type":   string(e.NormType),
	}
}

type Gene struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (g Gene) Props() map[string]any {
	return map[string]any{KeyGene: g.ID, "name": g.Name, "type": g.Type}
}
