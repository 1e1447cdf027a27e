package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLicenseKey(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}(-[A-Z0-9]{4}){4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := GenerateLicenseKey()
		assert.Regexp(t, pattern, key)
		assert.False(t, seen[key], "生成了重复密钥: %s", key)
		seen[key] = true
	}
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(42)
	assert.NoError(t, err)

	userID, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.EqualValues(t, 42, userID)

	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)
}
