// Package bluesky publishes sighting batches to Bluesky over the AT
// Protocol XRPC API.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/config"
)

// Client is a minimal XRPC client for the three calls posting needs:
// createSession, uploadBlob, and createRecord.
type Client struct {
	host        string
	handle      string
	appPassword string
	httpClient  *http.Client

	accessJWT string
	did       string
}

// New creates a Client from config. Call Login before posting.
func New(cfg config.BlueskyConfig) *Client {
	return &Client{
		host:        strings.TrimSuffix(cfg.Host, "/"),
		handle:      cfg.Handle,
		appPassword: cfg.AppPassword,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Login authenticates with the PDS and stores the session token.
func (c *Client) Login(ctx context.Context) error {
	if c.handle == "" || c.appPassword == "" {
		return fmt.Errorf("bluesky: handle and app password are required")
	}

	body, err := json.Marshal(map[string]string{
		"identifier": c.handle,
		"password":   c.appPassword,
	})
	if err != nil {
		return fmt.Errorf("bluesky: marshal login: %w", err)
	}

	var resp struct {
		AccessJWT string `json:"accessJwt"`
		DID       string `json:"did"`
	}
	if err := c.post(ctx, "com.atproto.server.createSession", "application/json", bytes.NewReader(body), &resp); err != nil {
		return err
	}

	c.accessJWT = resp.AccessJWT
	c.did = resp.DID
	return nil
}

// UploadBlob uploads image bytes and returns the blob reference to embed
// in a post record.
func (c *Client) UploadBlob(ctx context.Context, data []byte, contentType string) (json.RawMessage, error) {
	var resp struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := c.post(ctx, "com.atproto.repo.uploadBlob", contentType, bytes.NewReader(data), &resp); err != nil {
		return nil, err
	}
	return resp.Blob, nil
}

// CreatePost writes an app.bsky.feed.post record and returns its AT-URI.
func (c *Client) CreatePost(ctx context.Context, record map[string]interface{}) (string, error) {
	record["$type"] = "app.bsky.feed.post"
	if _, ok := record["createdAt"]; !ok {
		record["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(map[string]interface{}{
		"repo":       c.did,
		"collection": "app.bsky.feed.post",
		"record":     record,
	})
	if err != nil {
		return "", fmt.Errorf("bluesky: marshal record: %w", err)
	}

	var resp struct {
		URI string `json:"uri"`
		CID string `json:"cid"`
	}
	if err := c.post(ctx, "com.atproto.repo.createRecord", "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	return resp.URI, nil
}

func (c *Client) post(ctx context.Context, method, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/xrpc/"+method, body)
	if err != nil {
		return fmt.Errorf("bluesky: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.accessJWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJWT)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bluesky: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bluesky: %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("bluesky: decode %s response: %w", method, err)
		}
	}
	return nil
}
