// Package gdc is a client for the GDC (Genomic Data Commons) REST API:
// filtered file search, case and file lookup, and data file download.
package gdc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Cache stores raw lookup responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Archiver keeps a copy of each downloaded data file.
type Archiver interface {
	ArchiveFile(ctx context.Context, objectName, path string) error
}

// Client talks to the GDC API. Requests are not retried.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	archive  Archiver
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithCache caches case lookups for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithArchiver copies every downloaded data file to a.
func WithArchiver(a Archiver) Option {
	return func(cl *Client) { cl.archive = a }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

func NewClient(cfg config.GDCConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do executes req and returns the response when it is 2xx. Any other
// status becomes a REMOTE_API error carrying a body excerpt.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierr.RemoteAPIWrap(url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierr.RemoteAPI(url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.RemoteAPIWrap(url, fmt.Errorf("read response: %w", err))
	}
	if !json.Valid(body) {
		return nil, apierr.RemoteAPI(url, resp.StatusCode, "malformed JSON response")
	}
	return json.RawMessage(body), nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// GetCase returns the case document for id. Responses are cached when a
// cache is configured; cache failures fall through to the API.
func (c *Client) GetCase(ctx context.Context, id string) (json.RawMessage, error) {
	c.logger.Info("fetching case", slog.String("case_id", id))
	key := "gdc:case:" + id
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("case cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return json.RawMessage(data), nil
		}
	}

	doc, err := c.getJSON(ctx, "/cases/"+id)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, doc, c.cacheTTL); err != nil {
			c.logger.Warn("case cache write failed", slog.String("error", err.Error()))
		}
	}
	return doc, nil
}

// GetFile returns the metadata document for file id.
func (c *Client) GetFile(ctx context.Context, id string) (json.RawMessage, error) {
	c.logger.Info("fetching file metadata", slog.String("file_id", id))
	return c.getJSON(ctx, "/files/"+id)
}
