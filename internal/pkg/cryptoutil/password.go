package cryptoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashScheme     = "pbkdf2"
	hashIterations = 210000
	saltLen        = 16
	digestLen      = 32
)

// HashFormat tags the two stored-hash variants.
type HashFormat int

const (
	// LegacyDigest is a bare unsalted sha256 hex digest from old accounts.
	LegacyDigest HashFormat = iota
	// SaltedHash is the current pbkdf2$iter$salt$digest format.
	SaltedHash
)

// DetectFormat classifies a stored hash by its delimiter.
func DetectFormat(stored string) HashFormat {
	if strings.Contains(stored, "$") {
		return SaltedHash
	}
	return LegacyDigest
}

// HashPassword derives a salted hash in the current format.
func HashPassword(plain string) string {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	digest := pbkdf2.Key([]byte(plain), salt, hashIterations, digestLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		hashScheme, hashIterations,
		hex.EncodeToString(salt), hex.EncodeToString(digest))
}

// VerifyPassword checks plain against a stored hash of either format.
// needsUpgrade is true when the match succeeded against a legacy digest;
// callers should persist HashPassword(plain) in that case.
func VerifyPassword(plain, stored string) (ok, needsUpgrade bool) {
	switch DetectFormat(stored) {
	case SaltedHash:
		return verifySalted(plain, stored), false
	default:
		sum := sha256.Sum256([]byte(plain))
		match := subtle.ConstantTimeCompare(
			[]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(stored))) == 1
		return match, match
	}
}

func verifySalted(plain, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return false
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[3])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(plain), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
