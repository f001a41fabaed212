package templaterepo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RepoSource
	}{
		{"https", "https://github.com/acme/starter", RepoSource{Owner: "acme", Repo: "starter"}},
		{"https with .git", "https://github.com/acme/starter.git", RepoSource{Owner: "acme", Repo: "starter"}},
		{"trailing slash", "https://github.com/acme/starter/", RepoSource{Owner: "acme", Repo: "starter"}},
		{"tree ref", "https://github.com/acme/starter/tree/dev", RepoSource{Owner: "acme", Repo: "starter", Ref: "dev"}},
		{"nested tree ref", "https://github.com/acme/starter/tree/feature/login", RepoSource{Owner: "acme", Repo: "starter", Ref: "feature/login"}},
		{"host shorthand", "github.com/acme/starter", RepoSource{Owner: "acme", Repo: "starter"}},
		{"ssh", "git@github.com:acme/starter.git", RepoSource{Owner: "acme", Repo: "starter"}},
		{"owner/repo", "acme/starter", RepoSource{Owner: "acme", Repo: "starter"}},
		{"surrounding whitespace", "  acme/starter  ", RepoSource{Owner: "acme", Repo: "starter"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReference_WithAndWithoutGitSuffixMatch(t *testing.T) {
	a, err := ParseReference("https://github.com/SourceBox-LLC/streamlit-login-template.git")
	require.NoError(t, err)
	b, err := ParseReference("https://github.com/SourceBox-LLC/streamlit-login-template")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseReference_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"acme",
		"https://github.com/acme",
		"https:///acme/starter",
		"git@github.com",
		"acme/star ter",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseReference(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReference))

			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, InvalidReference, resErr.Kind)
			assert.False(t, resErr.Kind.Retryable())
		})
	}
}

func TestRepoSourceString(t *testing.T) {
	assert.Equal(t, "acme/starter", RepoSource{Owner: "acme", Repo: "starter"}.String())
	assert.Equal(t, "acme/starter@dev", RepoSource{Owner: "acme", Repo: "starter"}.WithRef("dev").String())
}
