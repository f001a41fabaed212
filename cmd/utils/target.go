package utils

import (
	"errors"
	"net/url"
	"strings"

	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

// SelectCommand turns a command line target into the session command that
// loads it. A catalog name wins; otherwise raw file URLs (including GitHub
// blob views) are fetched as one file and anything else is resolved as a
// repository.
func SelectCommand(catalog session.Catalog, target, ref string, meta template.Metadata) (session.Command, error) {
	target = strings.TrimSpace(target)

	if catalog != nil && ref == "" {
		_, err := catalog.Lookup(target)
		if err == nil {
			return session.SelectCatalogEntry{Name: target}, nil
		}
		if !errors.Is(err, templaterepo.ErrEntryNotFound) {
			return nil, err
		}
		if !LooksLikeURL(target) {
			return nil, err
		}
	}

	if IsRawFileURL(target) {
		return session.SelectRaw{URL: target, Meta: meta}, nil
	}
	return session.ResolveRepository{URL: target, Ref: ref, Meta: meta}, nil
}

// LooksLikeURL reports whether target is plausibly a repository or file
// reference rather than a catalog name.
func LooksLikeURL(target string) bool {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "git@") {
		return true
	}
	return strings.Contains(target, "/") && !strings.ContainsAny(target, " ()")
}

func IsRawFileURL(target string) bool {
	if templaterepo.NormalizeRawURL(target) != target {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, "raw.githubusercontent.com")
}
