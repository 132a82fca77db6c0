package graph

import (
	"fmt"
	"strings"

	"github.com/maraichr/gdcgraph/pkg/models"
)

// Cypher builders for Neo4j operations. Labels, relationship types and
// property keys cannot be parameters, so they are quoted as identifiers.

// quote renders s as a backtick-quoted Cypher identifier.
func quote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// constraintName names the uniqueness constraint for label.key, e.g. gene_id.
func constraintName(label models.Label, key string) string {
	return strings.ToLower(string(label)) + "_" + strings.ToLower(key)
}

// CreateConstraintQuery ensures label.key is unique and indexed (required
// for fast MERGE/MATCH). It is a no-op when the constraint exists.
func CreateConstraintQuery(label models.Label, key string) string {
	return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		quote(constraintName(label, key)), quote(string(label)), quote(key))
}

// MergeNodeQuery merges a node by its key and sets every given property.
func MergeNodeQuery(label models.Label, key string) string {
	return fmt.Sprintf(`
MERGE (n:%s {%s: $key})
SET n += $props
`, quote(string(label)), quote(key))
}

// MergeRelationshipQuery merges a relationship between two existing nodes
// matched by key. Missing endpoints produce no relationship; linked reports
// how many were merged.
func MergeRelationshipQuery(rel models.Relationship) string {
	return fmt.Sprintf(`
MATCH (a:%s {%s: $from})
MATCH (b:%s {%s: $to})
MERGE (a)-[r:%s]->(b)
SET r += $props
RETURN count(r) AS linked
`, quote(string(rel.From)), quote(rel.FromKey),
		quote(string(rel.To)), quote(rel.ToKey),
		quote(string(rel.Type)))
}

const (
	// CountNodesByLabel returns node counts per label for readiness and stats.
	CountNodesByLabel = `
MATCH (n)
UNWIND labels(n) AS label
RETURN label, count(*) AS count
`
)
