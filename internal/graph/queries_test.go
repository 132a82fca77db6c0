package graph

import (
	"strings"
	"testing"

	"github.com/maraichr/gdcgraph/pkg/models"
)

func TestCreateConstraintQuery(t *testing.T) {
	got := CreateConstraintQuery(models.LabelGene, models.KeyGene)
	want := "CREATE CONSTRAINT `gene_id` IF NOT EXISTS FOR (n:`Gene`) REQUIRE n.`id` IS UNIQUE"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestMergeNodeQuery(t *testing.T) {
	got := MergeNodeQuery(models.LabelExpression, models.KeyExpression)
	if !strings.Contains(got, "MERGE (n:`Expression` {`uid`: $key})") {
		t.Errorf("unexpected query: %s", got)
	}
	if !strings.Contains(got, "SET n += $props") {
		t.Errorf("query should set props: %s", got)
	}
}

func TestMergeRelationshipQuery(t *testing.T) {
	got := MergeRelationshipQuery(models.SampleMeasuredTo)
	for _, frag := range []string{
		"MATCH (a:`Sample` {`id`: $from})",
		"MATCH (b:`Measurement` {`id`: $to})",
		"MERGE (a)-[r:`MEASURED_TO`]->(b)",
		"RETURN count(r) AS linked",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("query missing %q:\n%s", frag, got)
		}
	}
}

func TestQuote_EscapesBackticks(t *testing.T) {
	if got := quote("a`b"); got != "`a``b`" {
		t.Errorf("quote = %s", got)
	}
}
