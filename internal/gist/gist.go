// Package gist shares templates as GitHub Gists.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
	"github.com/sourcebox-llc/template-lab/internal/template"
)

// pathSeparator replaces "/" in file names; Gists are flat.
const pathSeparator = "__"

var (
	ErrMissingToken = errors.New("a GitHub token with the gist scope is required (set GITHUB_TOKEN)")
	ErrShareFailed  = errors.New("failed to create Gist")
)

type File struct {
	Content string `json:"content"`
}

type Request struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
}

type Response struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
	Files   map[string]struct {
		RawURL   string `json:"raw_url"`
		FileName string `json:"filename"`
	} `json:"files"`
}

type Client struct {
	log        *zerolog.Logger
	httpClient *http.Client
	apiURL     string
	token      Token
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

func New(log *zerolog.Logger, token Token, opts ...Option) *Client {
	c := &Client{
		log:        log,
		httpClient: &http.Client{Timeout: constants.DefaultAPITimeout},
		apiURL:     constants.GitHubAPIURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileName maps a template path to its Gist file name.
func FileName(path string) string {
	return strings.ReplaceAll(path, "/", pathSeparator)
}

// Files converts t into Gist files. Empty files are left out because the
// Gist API rejects them.
func Files(t template.Template) (map[string]File, error) {
	files := make(map[string]File, len(t.OtherFiles)+1)
	for _, path := range t.Files() {
		content, _ := t.Content(path)
		if strings.TrimSpace(content) == "" {
			continue
		}
		name := FileName(path)
		if _, dup := files[name]; dup {
			return nil, fmt.Errorf("files %q and another path both map to Gist file %q", path, name)
		}
		files[name] = File{Content: content}
	}
	if len(files) == 0 {
		return nil, errors.New("template has no non-empty files to share")
	}
	return files, nil
}

// Share creates a Gist holding every file of t and returns its page URL.
func (c *Client) Share(ctx context.Context, t template.Template, description string, public bool) (string, error) {
	if c.token == "" {
		return "", ErrMissingToken
	}

	files, err := Files(t)
	if err != nil {
		return "", err
	}
	if description == "" {
		description = t.Name
	}

	body, err := json.Marshal(Request{Description: description, Public: public, Files: files})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	c.log.Debug().Int("files", len(files)).Msg("Sending request to create a new Gist...")
	respBody, err := c.do(ctx, http.MethodPost, c.apiURL+"/gists", body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrShareFailed, err)
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response from Gist: %w", err)
	}
	if result.HTMLURL == "" {
		return "", errors.New("gist response did not include html_url")
	}

	c.log.Info().Str("url", result.HTMLURL).Msg("Gist created")
	return result.HTMLURL, nil
}

// HasGistPermissions reports whether the token can list the user's Gists.
func (c *Client) HasGistPermissions(ctx context.Context) bool {
	if c.token == "" {
		return false
	}
	_, err := c.do(ctx, http.MethodGet, c.apiURL+"/gists?per_page=1", nil)
	if err != nil {
		c.log.Debug().Err(err).Msg("Token cannot list Gists")
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token.RawValue())
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", constants.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}
