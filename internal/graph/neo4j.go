package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/pkg/models"
)

// Client wraps the Neo4j driver and implements Store. One Client (and its
// driver) is shared by every upsert in a process.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient creates a new Neo4j client from configuration.
func NewClient(cfg config.Neo4jConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.ConnURI(), neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Client{driver: driver, database: cfg.Database}, nil
}

// Close releases the Neo4j driver resources.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Verify checks connectivity to Neo4j.
func (c *Client) Verify(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// writeSession opens a write session on the configured database.
func (c *Client) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: c.database})
}

// EnsureUniqueIndex implements Store.
func (c *Client) EnsureUniqueIndex(ctx context.Context, label models.Label, key string) error {
	session := c.writeSession(ctx)
	defer session.Close(ctx)
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, CreateConstraintQuery(label, key), nil)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("create %s constraint: %w", constraintName(label, key), err)
	}
	return nil
}

// MergeNode implements Store.
func (c *Client) MergeNode(ctx context.Context, label models.Label, key string, value any, props map[string]any) error {
	session := c.writeSession(ctx)
	defer session.Close(ctx)
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, MergeNodeQuery(label, key), map[string]any{"key": value, "props": props})
		return struct{}{}, err
	})
	return err
}

// MergeRelationship implements Store.
func (c *Client) MergeRelationship(ctx context.Context, rel models.Relationship, from, to any, props map[string]any) (int64, error) {
	session := c.writeSession(ctx)
	defer session.Close(ctx)
	linked, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (int64, error) {
		res, err := tx.Run(ctx, MergeRelationshipQuery(rel), map[string]any{
			"from":  from,
			"to":    to,
			"props": props,
		})
		if err != nil {
			return 0, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return 0, err
		}
		n, _, err := neo4j.GetRecordValue[int64](record, "linked")
		return n, err
	})
	if err != nil {
		return 0, err
	}
	return linked, nil
}

// ReadQuery runs cypher in a read-only session and returns each record as a map.
func (c *Client) ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: c.database})
	defer session.Close(ctx)
	return neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]map[string]any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, len(records))
		for i, r := range records {
			rows[i] = r.AsMap()
		}
		return rows, nil
	})
}

// CountNodes returns node counts per label.
func (c *Client) CountNodes(ctx context.Context) (map[string]int64, error) {
	rows, err := c.ReadQuery(ctx, CountNodesByLabel, nil)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		label, _ := r["label"].(string)
		n, _ := r["count"].(int64)
		counts[label] = n
	}
	return counts, nil
}
