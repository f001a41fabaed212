package templaterepo

import "strings"

// RepoSource identifies a GitHub repository and ref.
type RepoSource struct {
	Owner string
	Repo  string
	Ref   string // Branch, tag, or SHA; empty means the default branch
}

// String returns "owner/repo@ref", or "owner/repo" when no ref is set.
func (r RepoSource) String() string {
	if r.Ref == "" {
		return r.Owner + "/" + r.Repo
	}
	return r.Owner + "/" + r.Repo + "@" + r.Ref
}

// Key identifies a resolution by (owner, repo, branch). GitHub owner and
// repository names are case-insensitive, refs are not.
func (r RepoSource) Key() string {
	return strings.ToLower(r.Owner) + "/" + strings.ToLower(r.Repo) + "@" + r.Ref
}

// WithRef returns a copy of r pinned to ref.
func (r RepoSource) WithRef(ref string) RepoSource {
	r.Ref = ref
	return r
}

// treeResponse represents the GitHub Git Trees API response.
type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// treeEntry represents a single entry in the Git tree.
type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob", "tree" or "commit"
}

// repoResponse is the subset of GET /repos/{owner}/{repo} the resolver reads.
type repoResponse struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}
