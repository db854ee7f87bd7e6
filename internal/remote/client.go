// Package remote syncs obligations with a JSON document kept in a GitHub
// repository through the contents API.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"
	// DefaultPath is the document path inside the repository.
	DefaultPath = "data.json"

	requestTimeout = 15 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	commitMessage  = "Update payment data"
)

var (
	// ErrUnauthorized indicates the token is missing, expired or lacks access.
	ErrUnauthorized = errors.New("remote: unauthorized (token expired or invalid)")
	// ErrNotFound indicates the document or repository does not exist.
	ErrNotFound = errors.New("remote: document not found")
	// ErrConflict indicates the version token is stale.
	ErrConflict = errors.New("remote: version conflict")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("remote: rate limited")
)

// Options locate the document.
type Options struct {
	Owner   string
	Repo    string
	Path    string
	Branch  string
	Token   string
	BaseURL string
}

// Client reads and writes the shared document.
type Client struct {
	opts Options
	http *http.Client
}

// NewClient creates a client. Returns nil if owner, repo or token is empty.
func NewClient(opts Options) *Client {
	opts.Owner = strings.TrimSpace(opts.Owner)
	opts.Repo = strings.TrimSpace(opts.Repo)
	opts.Token = strings.TrimSpace(opts.Token)
	if opts.Owner == "" || opts.Repo == "" || opts.Token == "" {
		return nil
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{opts: opts, http: &http.Client{}}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Location describes where the document lives, e.g. "owner/repo:data.json".
func (c *Client) Location() string {
	return c.opts.Owner + "/" + c.opts.Repo + ":" + c.opts.Path
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.opts.BaseURL,
		url.PathEscape(c.opts.Owner), url.PathEscape(c.opts.Repo), strings.TrimLeft(c.opts.Path, "/"))
}

// Fetch returns the document and its version token.
func (c *Client) Fetch(ctx context.Context) (Document, string, error) {
	u := c.contentsURL()
	if c.opts.Branch != "" {
		u += "?ref=" + url.QueryEscape(c.opts.Branch)
	}

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Document{}, "", err
	}

	var raw contentsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Document{}, "", fmt.Errorf("remote: parsing contents: %w", err)
	}
	if raw.Encoding != "" && raw.Encoding != "base64" {
		return Document{}, "", fmt.Errorf("remote: unsupported content encoding %q", raw.Encoding)
	}

	// GitHub wraps base64 content at 60 columns.
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
	if err != nil {
		return Document{}, "", fmt.Errorf("remote: decoding content: %w", err)
	}
	doc, err := decodeDocument(content)
	if err != nil {
		return Document{}, "", err
	}
	return doc, raw.SHA, nil
}

// Version returns only the current version token.
func (c *Client) Version(ctx context.Context) (string, error) {
	_, sha, err := c.Fetch(ctx)
	return sha, err
}

// Put writes doc over the given version and returns the new version. An
// empty version creates the document.
func (c *Client) Put(ctx context.Context, doc Document, version string) (string, error) {
	content, err := doc.encode()
	if err != nil {
		return "", fmt.Errorf("remote: encoding document: %w", err)
	}
	payload, err := json.Marshal(putRequest{
		Message: commitMessage,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     version,
		Branch:  c.opts.Branch,
	})
	if err != nil {
		return "", fmt.Errorf("remote: encoding request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPut, c.contentsURL(), payload)
	if err != nil {
		return "", err
	}

	var raw putResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("remote: parsing put response: %w", err)
	}
	return raw.Content.SHA, nil
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.opts.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/paytrack/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	//nolint:gosec // URL is built from configured base URL
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, ErrConflict
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}
	return body, nil
}
