package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "example.com", "example.com", false},
		{"uppercase", "EXAMPLE.COM", "example.com", false},
		{"scheme", "https://example.com", "example.com", false},
		{"scheme_path", "https://example.com/wp-admin/index.php", "example.com", false},
		{"www_prefix", "www.example.com", "example.com", false},
		{"scheme_www_query", "http://www.example.com/?page=1", "example.com", false},
		{"port", "example.com:8080", "example.com", false},
		{"trailing_dot", "example.com.", "example.com", false},
		{"subdomain", "shop.example.co.uk", "shop.example.co.uk", false},
		{"whitespace", "  example.com  ", "example.com", false},
		{"localhost", "localhost", "localhost", false},
		{"empty", "", "", true},
		{"only_scheme", "https://", "", true},
		{"underscore", "my_site.com", "", true},
		{"leading_dash", "-bad.com", "", true},
		{"spaces_inside", "exa mple.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				typed, ok := AsError(err)
				assert.True(t, ok)
				assert.Equal(t, CodeInvalidInput, typed.Code)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
