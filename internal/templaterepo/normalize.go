package templaterepo

import (
	"net/url"
	"strings"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

// NormalizeRawURL rewrites a GitHub file view URL
// (https://github.com/owner/repo/blob/ref/path) into its
// raw.githubusercontent.com form. Any other input is returned unchanged.
func NormalizeRawURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := strings.ToLower(u.Host)
	if host != "github.com" && host != "www.github.com" {
		return raw
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	// owner / repo / "blob" / ref / path...
	if len(segments) < 5 || segments[2] != "blob" {
		return raw
	}
	for _, s := range segments {
		if s == "" {
			return raw
		}
	}

	parts := append([]string{constants.GitHubRawURL, segments[0], segments[1]}, segments[3:]...)
	return strings.Join(parts, "/")
}
