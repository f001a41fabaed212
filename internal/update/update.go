// Package update tells the user when a newer tlab release exists.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

const (
	DevelopmentVersion = "development"
	ForceCheckEnvVar   = "TLAB_FORCE_UPDATE_CHECK"

	requestTimeout = 2 * time.Second
	cacheDuration  = 24 * time.Hour
	cacheFileName  = "update.json"
)

type release struct {
	TagName string `json:"tag_name"`
}

type cacheState struct {
	LatestVersion string    `json:"latest_version"`
	LastCheck     time.Time `json:"last_check"`
}

type Checker struct {
	log        *zerolog.Logger
	httpClient *http.Client
	releaseURL string
	pageURL    string
	cachePath  string
	out        io.Writer
	now        func() time.Time
}

type Option func(*Checker)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = hc
	}
}

func WithCachePath(path string) Option {
	return func(c *Checker) {
		c.cachePath = path
	}
}

func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.out = w
	}
}

func NewChecker(log *zerolog.Logger, opts ...Option) *Checker {
	c := &Checker{
		log:        log,
		httpClient: &http.Client{Timeout: requestTimeout},
		releaseURL: fmt.Sprintf("%s/repos/%s/releases/latest", constants.GitHubAPIURL, constants.ReleaseRepo),
		pageURL:    fmt.Sprintf("https://github.com/%s/releases", constants.ReleaseRepo),
		out:        os.Stderr,
		now:        time.Now,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.cachePath = filepath.Join(home, constants.AppDirName, cacheFileName)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckForUpdates prints a notice when a release newer than current is
// published. Failures are logged at debug level and otherwise ignored.
func (c *Checker) CheckForUpdates(ctx context.Context, current string) {
	force := os.Getenv(ForceCheckEnvVar) == "1"
	if current == DevelopmentVersion && !force {
		c.log.Debug().Msgf("Current version is %q, skipping update check (set %s=1 to override)", current, ForceCheckEnvVar)
		return
	}

	cleaned := strings.TrimSpace(strings.Replace(current, "version", "", 1))
	currentVer, err := semver.NewVersion(cleaned)
	if err != nil {
		c.log.Debug().Msgf("Failed to parse current version %q: %v", current, err)
		return
	}

	latest := c.latestVersion(ctx, force)
	if latest == "" {
		c.log.Debug().Msg("No latest version available to compare")
		return
	}

	latestVer, err := semver.NewVersion(latest)
	if err != nil {
		c.log.Debug().Msgf("Failed to parse latest tag %q: %v", latest, err)
		return
	}

	if !latestVer.GreaterThan(currentVer) {
		c.log.Debug().Msgf("Current version %s is up-to-date", currentVer)
		return
	}

	fmt.Fprintf(c.out,
		"\nUpdate available! You're running %s, but %s is the latest.\nDownload it from %s\n\n",
		currentVer, latestVer, c.pageURL)
}

// latestVersion returns the cached tag while fresh, otherwise fetches it.
// A failed fetch falls back to the stale cache.
func (c *Checker) latestVersion(ctx context.Context, force bool) string {
	state := c.loadCache()
	if !force && c.now().Sub(state.LastCheck) <= cacheDuration && state.LatestVersion != "" {
		c.log.Debug().Msgf("Using cached latest version: %s", state.LatestVersion)
		return state.LatestVersion
	}

	tag, err := retry.DoWithData(
		func() (string, error) {
			return c.fetchLatest(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.log.Debug().Msgf("Failed to fetch latest version: %v", err)
		return state.LatestVersion
	}

	state = cacheState{LatestVersion: tag, LastCheck: c.now()}
	if err := c.saveCache(state); err != nil {
		c.log.Debug().Msgf("Failed to save update cache: %v", err)
	}
	return tag
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	c.log.Debug().Msgf("Fetching latest release from %s", c.releaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", constants.UserAgent+"-update-check")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API returned non-200 status: %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", fmt.Errorf("failed to decode GitHub API response: %w", err)
	}
	if rel.TagName == "" {
		return "", errors.New("github API response contained no tag_name")
	}
	return rel.TagName, nil
}

func (c *Checker) loadCache() cacheState {
	if c.cachePath == "" {
		return cacheState{}
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Debug().Msgf("Failed to read update cache: %v", err)
		}
		return cacheState{}
	}

	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil {
		c.log.Debug().Msgf("Update cache corrupted, ignoring: %v", err)
		return cacheState{}
	}
	return state
}

func (c *Checker) saveCache(state cacheState) error {
	if c.cachePath == "" {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o750); err != nil {
		return err
	}
	return os.WriteFile(c.cachePath, data, 0o640)
}
