package templaterepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRawURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blob url",
			in:   "https://github.com/acme/starter/blob/main/app.py",
			want: "https://raw.githubusercontent.com/acme/starter/main/app.py",
		},
		{
			name: "nested path",
			in:   "https://github.com/acme/starter/blob/dev/src/pages/home.py",
			want: "https://raw.githubusercontent.com/acme/starter/dev/src/pages/home.py",
		},
		{
			name: "www host",
			in:   "https://www.github.com/acme/starter/blob/main/app.py",
			want: "https://raw.githubusercontent.com/acme/starter/main/app.py",
		},
		{
			name: "already raw",
			in:   "https://raw.githubusercontent.com/acme/starter/main/app.py",
			want: "https://raw.githubusercontent.com/acme/starter/main/app.py",
		},
		{
			name: "repository url",
			in:   "https://github.com/acme/starter",
			want: "https://github.com/acme/starter",
		},
		{
			name: "tree url",
			in:   "https://github.com/acme/starter/tree/main/src",
			want: "https://github.com/acme/starter/tree/main/src",
		},
		{
			name: "other host",
			in:   "https://example.com/acme/starter/blob/main/app.py",
			want: "https://example.com/acme/starter/blob/main/app.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRawURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeRawURL(got), "normalizing twice should not change the result")
		})
	}
}
