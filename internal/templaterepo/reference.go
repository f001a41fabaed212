package templaterepo

import (
	"net/url"
	"strings"
)

// ParseReference extracts owner, repo and an optional ref from a repository URL.
//
// Accepted forms:
//
//	https://github.com/owner/repo[.git]
//	https://github.com/owner/repo/tree/<ref>
//	github.com/owner/repo
//	git@github.com:owner/repo.git
//	owner/repo
func ParseReference(raw string) (RepoSource, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return RepoSource{}, newResolutionError(InvalidReference, raw, "repository URL is empty", nil)
	}

	var path string
	switch {
	case strings.Contains(ref, "://"):
		u, err := url.Parse(ref)
		if err != nil {
			return RepoSource{}, newResolutionError(InvalidReference, raw, "malformed repository URL", err)
		}
		if u.Host == "" {
			return RepoSource{}, newResolutionError(InvalidReference, raw, "repository URL has no host", nil)
		}
		path = u.Path
	case strings.HasPrefix(ref, "git@"):
		_, after, ok := strings.Cut(ref, ":")
		if !ok {
			return RepoSource{}, newResolutionError(InvalidReference, raw, "malformed SSH repository URL", nil)
		}
		path = after
	default:
		path = ref
		// Drop a leading host such as "github.com/".
		if first, rest, ok := strings.Cut(path, "/"); ok && strings.Contains(first, ".") {
			path = rest
		}
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return RepoSource{}, newResolutionError(InvalidReference, raw, "expected owner and repository in URL", nil)
	}
	for _, s := range segments[:2] {
		if strings.ContainsAny(s, " \t\n?#") {
			return RepoSource{}, newResolutionError(InvalidReference, raw, "invalid owner or repository name", nil)
		}
	}

	source := RepoSource{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
	}
	if len(segments) >= 4 && segments[2] == "tree" {
		source.Ref = strings.Join(segments[3:], "/")
	}
	return source, nil
}
