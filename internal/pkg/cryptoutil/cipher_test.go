package cryptoutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	for _, plain := range []string{
		"hello",
		"",
		"exactly sixteen!",
		strings.Repeat("long message ", 100),
		"unicode: 你好 🎵",
	} {
		payload, err := Encrypt(plain, testKey)
		require.NoError(t, err, "plain %q", plain)

		got, err := Decrypt(payload, testKey)
		require.NoError(t, err, "plain %q", plain)
		assert.Equal(t, plain, got)
	}
}

func TestPayloadShape(t *testing.T) {
	payload, err := Encrypt("shape check", testKey)
	require.NoError(t, err)
	parts := strings.Split(payload, ":")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 32, "16-byte IV hex-encoded")
}

func TestFreshIVPerCall(t *testing.T) {
	a, err := Encrypt("identical plaintext", testKey)
	require.NoError(t, err)
	b, err := Encrypt("identical plaintext", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, strings.Split(a, ":")[0], strings.Split(b, ":")[0])
}

func TestWrongKeyLength(t *testing.T) {
	short := bytes.Repeat([]byte{1}, 16)
	_, err := Encrypt("x", short)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt("00:00", short)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMalformedPayloads(t *testing.T) {
	valid, err := Encrypt("x", testKey)
	require.NoError(t, err)
	cipherHex := strings.Split(valid, ":")[1]

	for _, payload := range []string{
		"",
		"nodivider",
		"a:b:c",
		"nothex:" + cipherHex,
		strings.Repeat("0", 32) + ":nothex",
		"0011:" + cipherHex,
		strings.Repeat("0", 32) + ":abcd",
	} {
		_, err := Decrypt(payload, testKey)
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", payload)
	}
}

func TestDecryptWithDifferentKeyFails(t *testing.T) {
	payload, err := Encrypt("secret", testKey)
	require.NoError(t, err)

	other := bytes.Repeat([]byte{0x24}, 32)
	got, err := Decrypt(payload, other)
	if err == nil {
		assert.NotEqual(t, "secret", got)
	}
}
