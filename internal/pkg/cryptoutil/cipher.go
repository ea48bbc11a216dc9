package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidKey means the key is not 32 bytes. Configuration fault.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
	// ErrMalformedPayload means the payload is not iv-hex:cipher-hex.
	ErrMalformedPayload = errors.New("malformed encrypted payload")
)

const keyLen = 32

// Encrypt seals plain with AES-256-CBC under a fresh random IV and returns
// the ivHex:cipherHex payload.
func Encrypt(plain string, key []byte) (string, error) {
	if len(key) != keyLen {
		return "", ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt opens an ivHex:cipherHex payload produced by Encrypt.
func Decrypt(payload string, key []byte) (string, error) {
	if len(key) != keyLen {
		return "", ErrInvalidKey
	}
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		return "", ErrMalformedPayload
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedPayload
	}
	data, err := hex.DecodeString(parts[1])
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", ErrMalformedPayload
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformedPayload
	}
	padding := int(data[len(data)-1])
	if padding < 1 || padding > blockSize {
		return nil, ErrMalformedPayload
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrMalformedPayload
		}
	}
	return data[:len(data)-padding], nil
}
