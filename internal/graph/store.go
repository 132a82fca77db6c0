package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/maraichr/gdcgraph/pkg/apierr"
	"github.com/maraichr/gdcgraph/pkg/models"
)

// ErrEndpointMissing is returned in strict mode when a relationship endpoint
// has not been written yet.
var ErrEndpointMissing = errors.New("relationship endpoint not found")

// Store is an upsert-capable graph backend.
type Store interface {
	// EnsureUniqueIndex creates a uniqueness index on label.key if absent.
	EnsureUniqueIndex(ctx context.Context, label models.Label, key string) error
	// MergeNode creates the node identified by label and key, or updates
	// props on the existing one.
	MergeNode(ctx context.Context, label models.Label, key string, value any, props map[string]any) error
	// MergeRelationship links the nodes identified by from and to and
	// returns the number of relationships merged (0 when an endpoint is missing).
	MergeRelationship(ctx context.Context, rel models.Relationship, from, to any, props map[string]any) (int64, error)
}

// Upserter is the idempotent write primitive used by ingestion. Every call
// is a store round trip; it keeps no record of keys already written.
type Upserter struct {
	store  Store
	strict bool
}

// NewUpserter wraps s. In strict mode relationships whose endpoints are
// missing fail instead of being skipped.
func NewUpserter(s Store, strict bool) *Upserter {
	return &Upserter{store: s, strict: strict}
}

// UpsertNode ensures the key index exists and merges record by record[keyField].
func (u *Upserter) UpsertNode(ctx context.Context, label models.Label, keyField string, record map[string]any) error {
	value, ok := record[keyField]
	if !ok || value == nil || value == "" {
		return apierr.StoreWrite(string(label), fmt.Errorf("record has no %s", keyField))
	}
	if err := u.store.EnsureUniqueIndex(ctx, label, keyField); err != nil {
		return apierr.StoreWrite(fmt.Sprintf("index %s.%s", label, keyField), err)
	}
	if err := u.store.MergeNode(ctx, label, keyField, value, record); err != nil {
		return apierr.StoreWrite(fmt.Sprintf("%s{%s: %v}", label, keyField, value), err)
	}
	return nil
}

// UpsertRelationship ensures both endpoint key indexes exist and merges the
// relationship identified by the endpoint key pair.
func (u *Upserter) UpsertRelationship(ctx context.Context, rel models.Relationship, fromValue, toValue any, props map[string]any) error {
	if err := u.store.EnsureUniqueIndex(ctx, rel.From, rel.FromKey); err != nil {
		return apierr.StoreWrite(fmt.Sprintf("index %s.%s", rel.From, rel.FromKey), err)
	}
	if err := u.store.EnsureUniqueIndex(ctx, rel.To, rel.ToKey); err != nil {
		return apierr.StoreWrite(fmt.Sprintf("index %s.%s", rel.To, rel.ToKey), err)
	}
	if props == nil {
		props = map[string]any{}
	}
	target := fmt.Sprintf("(%s %v)-[:%s]->(%s %v)", rel.From, fromValue, rel.Type, rel.To, toValue)
	linked, err := u.store.MergeRelationship(ctx, rel, fromValue, toValue, props)
	if err != nil {
		return apierr.StoreWrite(target, err)
	}
	if linked == 0 && u.strict {
		return apierr.StoreWrite(target, ErrEndpointMissing)
	}
	return nil
}
