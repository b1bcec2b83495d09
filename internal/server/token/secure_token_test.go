package token_test

import (
	"regexp"
	"testing"

	"github.com/mdouchement/clipvault/internal/server/token"
	"github.com/stretchr/testify/assert"
)

func TestSecureToken(t *testing.T) {
	assert.Panics(t, func() { token.SecureToken(-1) })
	assert.Len(t, token.SecureToken(token.ShareTokenLength), token.ShareTokenLength)
	assert.Len(t, token.SecureToken(token.QRTokenLength), token.QRTokenLength)
	assert.Regexp(t, regexp.MustCompile(`^[123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz]+$`), token.SecureToken(24))

	n := 8192
	h := make(map[string]bool, 0)
	for i := 0; i < n; i++ {
		h[token.SecureToken(24)] = true
	}
	assert.Len(t, h, n, "tokens must be unique")
}
