package templaterepo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

// Client handles the GitHub REST and raw content calls made during resolution.
type Client struct {
	logger     *zerolog.Logger
	httpClient *http.Client
	apiURL     string
	rawURL     string
	token      string
	maxFile    int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURLs points the client at a GitHub Enterprise or test server.
func WithBaseURLs(apiURL, rawURL string) ClientOption {
	return func(c *Client) {
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
		if rawURL != "" {
			c.rawURL = strings.TrimRight(rawURL, "/")
		}
	}
}

// WithToken sends token as a Bearer credential on API requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithMaxFileSize caps the size of any single raw file.
func WithMaxFileSize(n int64) ClientOption {
	return func(c *Client) {
		c.maxFile = n
	}
}

// NewClient creates a new GitHub client.
func NewClient(logger *zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: constants.DefaultAPITimeout,
		},
		apiURL:  constants.GitHubAPIURL,
		rawURL:  constants.GitHubRawURL,
		maxFile: constants.MaxRawFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBranch returns the repository's default branch, or "main" when
// the API response does not name one.
func (c *Client) DefaultBranch(ctx context.Context, source RepoSource) (string, error) {
	repoURL := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, url.PathEscape(source.Owner), url.PathEscape(source.Repo))
	c.logger.Debug().Msgf("Fetching repository info from %s", repoURL)

	var repo repoResponse
	if err := c.getJSON(ctx, repoURL, &repo); err != nil {
		return "", err
	}

	if repo.DefaultBranch == "" {
		c.logger.Debug().Msgf("No default branch reported for %s, using %s", source, constants.DefaultBranch)
		return constants.DefaultBranch, nil
	}
	return repo.DefaultBranch, nil
}

// ListFiles returns the path of every blob in the recursive tree at source.Ref.
func (c *Client) ListFiles(ctx context.Context, source RepoSource) ([]string, error) {
	treeURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.apiURL, url.PathEscape(source.Owner), url.PathEscape(source.Repo), escapePath(source.Ref))
	c.logger.Debug().Msgf("Fetching repository tree from %s", treeURL)

	var tree treeResponse
	if err := c.getJSON(ctx, treeURL, &tree); err != nil {
		return nil, err
	}

	if tree.Truncated {
		c.logger.Warn().Msgf("Tree for %s was truncated by GitHub; some files will be missing", source)
	}

	var files []string
	for _, entry := range tree.Tree {
		if entry.Type == "blob" {
			files = append(files, entry.Path)
		}
	}

	c.logger.Debug().Msgf("Found %d files in %s", len(files), source)
	return files, nil
}

// FileURL returns the raw content URL of path within source.
func (c *Client) FileURL(source RepoSource, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL,
		url.PathEscape(source.Owner), url.PathEscape(source.Repo), escapePath(source.Ref), escapePath(path))
}

// FetchFile returns the text of path at source.Ref.
func (c *Client) FetchFile(ctx context.Context, source RepoSource, path string) (string, error) {
	return c.FetchRaw(ctx, c.FileURL(source, path))
}

// FetchRaw GETs rawURL and returns its body as text.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("raw content fetch returned status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFile+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxFile {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", c.maxFile)
	}

	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return err
	}
	c.setAuthHeaders(req)
	req.Header.Set("User-Agent", constants.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GitHub API returned status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode GitHub API response: %w", err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
