package text2cypher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maraichr/gdcgraph/pkg/apierr"
	"github.com/maraichr/gdcgraph/pkg/models"
)

// ident is a plain or backtick-quoted Cypher identifier.
const ident = "(?:\\w+|`(?:[^`]|``)*`)"

var (
	stringLiteral = regexp.MustCompile(`'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`)
	writeClause   = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|FOREACH|CALL|LOAD\s+CSV)\b`)
	nodePattern   = regexp.MustCompile(`\(\s*(` + ident + `?)\s*((?::\s*` + ident + `\s*)*)[^()]*\)`)
	relPattern    = regexp.MustCompile(`(<?)-\[([^\]]*)\]-(>?)`)
	relTypes      = regexp.MustCompile(`^\s*` + ident + `?\s*:\s*(` + ident + `(?:\s*\|\s*:?\s*` + ident + `)*)`)
	identToken    = regexp.MustCompile(ident)
)

// unquote strips backticks from a quoted identifier.
func unquote(id string) string {
	if len(id) >= 2 && id[0] == '`' && id[len(id)-1] == '`' {
		return strings.ReplaceAll(id[1:len(id)-1], "``", "`")
	}
	return id
}

type node struct {
	start, end int
	variable   string
	label      models.Label
}

// extractCypher pulls the statement out of a model reply, dropping markdown
// fences and a trailing semicolon.
func extractCypher(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.Index(reply, "```"); i >= 0 {
		rest := reply[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		reply = rest
	}
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "Cypher:")
	return strings.TrimSuffix(strings.TrimSpace(reply), ";")
}

// Validate rejects statements that write to the graph, use undeclared labels
// or relationship types, or traverse a relationship against its declared
// direction. Endpoint labels are resolved from the pattern itself or from an
// earlier binding of the same variable.
func Validate(cypher string) error {
	if strings.TrimSpace(cypher) == "" {
		return apierr.InvalidQuery("empty statement")
	}
	stripped := stringLiteral.ReplaceAllStringFunc(cypher, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	if m := writeClause.FindString(stripped); m != "" {
		return apierr.InvalidQuery(fmt.Sprintf("write clause %s is not allowed", strings.ToUpper(m)))
	}

	known := make(map[models.Label]bool, len(models.Labels))
	for _, l := range models.Labels {
		known[l] = true
	}

	var nodes []node
	bindings := make(map[string]models.Label)
	for _, m := range nodePattern.FindAllStringSubmatchIndex(stripped, -1) {
		n := node{start: m[0], end: m[1]}
		n.variable = unquote(stripped[m[2]:m[3]])
		for _, id := range identToken.FindAllString(stripped[m[4]:m[5]], -1) {
			l := models.Label(unquote(id))
			if !known[l] {
				return apierr.InvalidQuery(fmt.Sprintf("unknown label %s", l))
			}
			if n.label == "" {
				n.label = l
			}
		}
		if n.label != "" && n.variable != "" {
			bindings[n.variable] = n.label
		}
		nodes = append(nodes, n)
	}

	for _, m := range relPattern.FindAllStringSubmatchIndex(stripped, -1) {
		left := labelOf(adjacentNode(nodes, stripped, m[0], true), bindings)
		right := labelOf(adjacentNode(nodes, stripped, m[1], false), bindings)
		incoming := m[3] > m[2]
		outgoing := m[7] > m[6]

		body := stripped[m[4]:m[5]]
		tm := relTypes.FindStringSubmatch(body)
		if tm == nil {
			continue
		}
		for _, id := range identToken.FindAllString(tm[1], -1) {
			t := unquote(id)
			rel, ok := models.LookupRelationship(models.RelType(t))
			if !ok {
				return apierr.InvalidQuery(fmt.Sprintf("unknown relationship type %s", t))
			}
			if !directionOK(rel, left, right, incoming, outgoing) {
				return apierr.InvalidQuery(fmt.Sprintf("relationship %s must go (:%s)-[:%s]->(:%s)", t, rel.From, rel.Type, rel.To))
			}
		}
	}
	return nil
}

// adjacentNode returns the node pattern touching pos, ignoring whitespace.
func adjacentNode(nodes []node, s string, pos int, before bool) *node {
	for i := range nodes {
		n := &nodes[i]
		if before && n.end <= pos && strings.TrimSpace(s[n.end:pos]) == "" {
			return n
		}
		if !before && n.start >= pos && strings.TrimSpace(s[pos:n.start]) == "" {
			return n
		}
	}
	return nil
}

func labelOf(n *node, bindings map[string]models.Label) models.Label {
	if n == nil {
		return ""
	}
	if n.label != "" {
		return n.label
	}
	return bindings[n.variable]
}

func directionOK(rel models.Relationship, left, right models.Label, incoming, outgoing bool) bool {
	forward := matches(rel.From, left) && matches(rel.To, right)
	backward := matches(rel.From, right) && matches(rel.To, left)
	switch {
	case outgoing && !incoming:
		return forward
	case incoming && !outgoing:
		return backward
	default:
		return forward || backward
	}
}

func matches(want, got models.Label) bool {
	return got == "" || got == want
}
