package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sourcebox-llc/template-lab/internal/constants"
)

var (
	// https://host/owner/repo[.git], with an optional /tree/<ref> suffix
	httpRepoRegex = regexp.MustCompile(`^https?://[A-Za-z0-9.-]+(:[0-9]+)?/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?(\.git)?(/tree/[^\s?#]+)?/?$`)
	// ssh://git@host/owner/repo.git
	sshRepoRegex = regexp.MustCompile(`^ssh://[A-Za-z0-9_.-]+@[A-Za-z0-9.-]+(:[0-9]+)?/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?(\.git)?/?$`)
	// git@host:owner/repo.git
	scpRepoRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+@[A-Za-z0-9.-]+:[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?(\.git)?$`)
)

func stringField(fl validator.FieldLevel) string {
	field := fl.Field()
	if field.Kind() != reflect.String {
		panic(fmt.Sprintf("input field name is not a string: %s", fl.FieldName()))
	}
	return field.String()
}

func isRepoURL(fl validator.FieldLevel) bool {
	return IsValidRepoURL(stringField(fl)) == nil
}

func isLLMProvider(fl validator.FieldLevel) bool {
	return slices.Contains(constants.LLMProviders, stringField(fl))
}

func isEditorTheme(fl validator.FieldLevel) bool {
	return slices.Contains(constants.EditorThemes, stringField(fl))
}

func isEditorLanguage(fl validator.FieldLevel) bool {
	return slices.Contains(constants.EditorLanguages, stringField(fl))
}

func isEditorKeybinding(fl validator.FieldLevel) bool {
	return slices.Contains(constants.EditorKeybindings, stringField(fl))
}

// IsValidRepoURL accepts https, http, ssh and scp-style git remotes that
// name both an owner and a repository.
func IsValidRepoURL(raw string) error {
	url := strings.TrimSpace(raw)
	if url == "" {
		return fmt.Errorf("repository URL can't be empty")
	}
	if httpRepoRegex.MatchString(url) || sshRepoRegex.MatchString(url) || scpRepoRegex.MatchString(url) {
		return nil
	}
	return fmt.Errorf("%q is not a git repository URL with an owner and repository", raw)
}
