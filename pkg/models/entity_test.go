package models

import "testing"

func TestKeyFor(t *testing.T) {
	want := map[Label]string{
		LabelProject:     "id",
		LabelDisease:     "name",
		LabelSample:      "id",
		LabelMeasurement: "id",
		LabelExpression:  "uid",
		LabelGene:        "id",
	}
	for _, l := range Labels {
		if got := KeyFor(l); got != want[l] {
			t.Errorf("KeyFor(%s) = %q, want %q", l, got, want[l])
		}
	}
	if got := KeyFor("Patient"); got != "" {
		t.Errorf("KeyFor(Patient) = %q, want empty", got)
	}
}
