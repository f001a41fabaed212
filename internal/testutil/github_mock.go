package testutil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jarcoal/httpmock"
)

const (
	MockGitHubAPIURL = "https://api.github.test"
	MockGitHubRawURL = "https://raw.github.test"
)

// MockRepo describes a repository served by RegisterRepo.
type MockRepo struct {
	Owner         string
	Repo          string
	DefaultBranch string            // empty omits default_branch from the API response
	Files         map[string]string // path -> content
	Dirs          []string          // extra "tree" entries
	FailFiles     map[string]int    // path -> HTTP status returned for the raw fetch
}

// NewMockClient returns an HTTP client whose requests go to a fresh mock transport.
func NewMockClient() (*http.Client, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	return &http.Client{Transport: mt}, mt
}

// RegisterRepo registers the repository info, recursive tree and raw file
// responders for repo at ref on mt. An empty ref uses repo.DefaultBranch,
// falling back to "main".
func RegisterRepo(mt *httpmock.MockTransport, repo MockRepo, ref string) {
	repoInfo := map[string]any{
		"full_name": repo.Owner + "/" + repo.Repo,
	}
	if repo.DefaultBranch != "" {
		repoInfo["default_branch"] = repo.DefaultBranch
	}
	mt.RegisterResponder(http.MethodGet, RepoURL(repo.Owner, repo.Repo),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, repoInfo))

	if ref == "" {
		ref = repo.DefaultBranch
	}
	if ref == "" {
		ref = "main"
	}

	var tree []map[string]string
	for _, d := range repo.Dirs {
		tree = append(tree, map[string]string{"path": d, "type": "tree"})
	}
	for p := range repo.Files {
		tree = append(tree, map[string]string{"path": p, "type": "blob"})
	}
	for p := range repo.FailFiles {
		if _, ok := repo.Files[p]; !ok {
			tree = append(tree, map[string]string{"path": p, "type": "blob"})
		}
	}
	mt.RegisterResponder(http.MethodGet, TreeURL(repo.Owner, repo.Repo, ref),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"sha":       "abc123",
			"tree":      tree,
			"truncated": false,
		}))

	for p, content := range repo.Files {
		if _, failing := repo.FailFiles[p]; failing {
			continue
		}
		mt.RegisterResponder(http.MethodGet, RawURL(repo.Owner, repo.Repo, ref, p),
			httpmock.NewStringResponder(http.StatusOK, content))
	}
	for p, status := range repo.FailFiles {
		mt.RegisterResponder(http.MethodGet, RawURL(repo.Owner, repo.Repo, ref, p),
			httpmock.NewStringResponder(status, http.StatusText(status)))
	}
}

func RepoURL(owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s", MockGitHubAPIURL, owner, repo)
}

// TreeURL omits the recursive query; httpmock falls back to matching without it.
func TreeURL(owner, repo, ref string) string {
	return fmt.Sprintf("%s/repos/%s/%s/git/trees/%s", MockGitHubAPIURL, owner, repo, ref)
}

func RawURL(owner, repo, ref, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", MockGitHubRawURL, owner, repo, ref, strings.TrimLeft(path, "/"))
}
