package cryptoutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	stored := HashPassword("correct horse battery staple")
	assert.True(t, strings.HasPrefix(stored, "pbkdf2$"))
	assert.Equal(t, SaltedHash, DetectFormat(stored))

	ok, upgrade := VerifyPassword("correct horse battery staple", stored)
	assert.True(t, ok)
	assert.False(t, upgrade, "current-format hashes never request an upgrade")

	ok, _ = VerifyPassword("wrong password", stored)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a := HashPassword("same input")
	b := HashPassword("same input")
	assert.NotEqual(t, a, b)
}

func TestLegacyDigestVerifiesAndRequestsUpgrade(t *testing.T) {
	sum := sha256.Sum256([]byte("oldpassword1"))
	legacy := hex.EncodeToString(sum[:])
	require.Equal(t, LegacyDigest, DetectFormat(legacy))

	ok, upgrade := VerifyPassword("oldpassword1", legacy)
	assert.True(t, ok)
	assert.True(t, upgrade)

	ok, upgrade = VerifyPassword("not the password", legacy)
	assert.False(t, ok)
	assert.False(t, upgrade, "no upgrade signal on failed verification")
}

func TestMalformedStoredHashRejected(t *testing.T) {
	for _, stored := range []string{
		"pbkdf2$bad$zz$zz",
		"pbkdf2$210000$nothex$deadbeef",
		"otherscheme$1$aa$bb",
		"pbkdf2$210000$deadbeef",
	} {
		ok, upgrade := VerifyPassword("whatever", stored)
		assert.False(t, ok, "stored %q", stored)
		assert.False(t, upgrade, "stored %q", stored)
	}
}
