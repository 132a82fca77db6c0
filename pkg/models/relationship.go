package models

// RelType is a graph relationship type.
type RelType string

const (
	RelFrom       RelType = "FROM"
	RelHas        RelType = "HAS"
	RelMeasuredTo RelType = "MEASURED_TO"
	RelResultedTo RelType = "RESULTED_TO"
	RelBelongsTo  RelType = "BELONGS_TO"
)

// Relationship describes a directed relationship type and the merge keys of
// its endpoints. A relationship instance is keyed by its endpoint key pair.
type Relationship struct {
	Type    RelType
	From    Label
	To      Label
	FromKey string
	ToKey   string
}

var (
	ProjectFromDisease = Relationship{RelFrom, LabelProject, LabelDisease, KeyProject, KeyDisease}
	ProjectHasSample   = Relationship{RelHas, LabelProject, LabelSample, KeyProject, KeySample}
	SampleMeasuredTo   = Relationship{RelMeasuredTo, LabelSample, LabelMeasurement, KeySample, KeyMeasurement}
	MeasurementResult  = Relationship{RelResultedTo, LabelMeasurement, LabelExpression, KeyMeasurement, KeyExpression}
	ExpressionOfGene   = Relationship{RelBelongsTo, LabelExpression, LabelGene, KeyExpression, KeyGene}
)

// Relationships lists every relationship the graph may contain.
var Relationships = []Relationship{
	ProjectFromDisease,
	ProjectHasSample,
	SampleMeasuredTo,
	MeasurementResult,
	ExpressionOfGene,
}

// NodeProperties lists the properties stored on each label, key first.
var NodeProperties = map[Label][]string{
	LabelProject:     {KeyProject},
	LabelDisease:     {KeyDisease},
	LabelSample:      {KeySample, "sample_type"},
	LabelMeasurement: {KeyMeasurement, "type"},
	LabelExpression:  {KeyExpression, "raw", "norm", "norm_type"},
	LabelGene:        {KeyGene, "name", "type"},
}

// Labels lists node labels in load order.
var Labels = []Label{
	LabelProject, LabelDisease, LabelSample, LabelMeasurement, LabelExpression, LabelGene,
}

// LookupRelationship finds a declared relationship by type.
func LookupRelationship(t RelType) (Relationship, bool) {
	for _, r := range Relationships {
		if r.Type == t {
			return r, true
		}
	}
	return Relationship{}, false
}
