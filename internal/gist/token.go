package gist

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Token is a GitHub token that never prints its value.
type Token string

func (t Token) String() string {
	return "*****"
}

func (t Token) MarshalZerologObject(e *zerolog.Event) {
	e.Str("GitHubToken", "*****")
}

func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal("*****")
}

func (t Token) RawValue() string {
	return string(t)
}
