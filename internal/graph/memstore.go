package graph

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/maraichr/gdcgraph/pkg/models"
)

// MemStore is an in-memory Store with MERGE semantics matching the Neo4j
// queries. It backs tests and dry runs.
type MemStore struct {
	mu      sync.Mutex
	indexes map[string]bool
	nodes   map[models.Label]map[string]map[string]any
	rels    map[relIdentity]map[string]any
	writes  int

	// Fail, when set, is consulted before every operation; a non-nil
	// return aborts it.
	Fail func(op string) error
}

type relIdentity struct {
	Type models.RelType
	From string
	To   string
}

// Rel is a stored relationship as seen through MemStore accessors.
type Rel struct {
	Type  models.RelType
	From  string
	To    string
	Props map[string]any
}

func NewMemStore() *MemStore {
	return &MemStore{
		indexes: make(map[string]bool),
		nodes:   make(map[models.Label]map[string]map[string]any),
		rels:    make(map[relIdentity]map[string]any),
	}
}

func keyString(v any) string { return fmt.Sprint(v) }

func (m *MemStore) check(op string) error {
	m.writes++
	if m.Fail != nil {
		return m.Fail(op)
	}
	return nil
}

// EnsureUniqueIndex implements Store.
func (m *MemStore) EnsureUniqueIndex(_ context.Context, label models.Label, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("index:" + string(label)); err != nil {
		return err
	}
	m.indexes[constraintName(label, key)] = true
	return nil
}

// MergeNode implements Store.
func (m *MemStore) MergeNode(_ context.Context, label models.Label, key string, value any, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("node:" + string(label)); err != nil {
		return err
	}
	byKey, ok := m.nodes[label]
	if !ok {
		byKey = make(map[string]map[string]any)
		m.nodes[label] = byKey
	}
	k := keyString(value)
	node, ok := byKey[k]
	if !ok {
		node = map[string]any{key: value}
		byKey[k] = node
	}
	maps.Copy(node, props)
	return nil
}

// MergeRelationship implements Store.
func (m *MemStore) MergeRelationship(_ context.Context, rel models.Relationship, from, to any, props map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("rel:" + string(rel.Type)); err != nil {
		return 0, err
	}
	if _, ok := m.nodes[rel.From][keyString(from)]; !ok {
		return 0, nil
	}
	if _, ok := m.nodes[rel.To][keyString(to)]; !ok {
		return 0, nil
	}
	id := relIdentity{Type: rel.Type, From: keyString(from), To: keyString(to)}
	r, ok := m.rels[id]
	if !ok {
		r = map[string]any{}
		m.rels[id] = r
	}
	maps.Copy(r, props)
	return 1, nil
}

// Node returns a copy of the node with the given key.
func (m *MemStore) Node(label models.Label, key any) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[label][keyString(key)]
	if !ok {
		return nil, false
	}
	return maps.Clone(n), true
}

// Nodes returns copies of every node with label, ordered by key.
func (m *MemStore) Nodes(label models.Label) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.nodes[label]))
	for k := range m.nodes[label] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]map[string]any, len(keys))
	for i, k := range keys {
		out[i] = maps.Clone(m.nodes[label][k])
	}
	return out
}

func (m *MemStore) NodeCount(label models.Label) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes[label])
}

// Rels returns relationships of type t ordered by endpoints.
func (m *MemStore) Rels(t models.RelType) []Rel {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Rel
	for id, props := range m.rels {
		if id.Type == t {
			out = append(out, Rel{Type: id.Type, From: id.From, To: id.To, Props: maps.Clone(props)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// HasRel reports whether the relationship from -[t]-> to exists.
func (m *MemStore) HasRel(t models.RelType, from, to any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rels[relIdentity{Type: t, From: keyString(from), To: keyString(to)}]
	return ok
}

// HasIndex reports whether a uniqueness index on label.key was requested.
func (m *MemStore) HasIndex(label models.Label, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexes[constraintName(label, key)]
}

// Writes counts round trips, including failed ones.
func (m *MemStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
