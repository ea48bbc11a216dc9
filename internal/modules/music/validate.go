package music

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFileSize = 20 << 20 // 20MB

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
}

var (
	errBadExtension = errors.New("unsupported audio format")
	errTooLarge     = errors.New("file too large")
	errBadFileName  = errors.New("invalid file name")

	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// ValidateUpload checks a declared upload descriptor. Storage lives
// elsewhere; only the metadata that reaches the database is vetted here.
// Returns the safe name to persist.
func ValidateUpload(fileName string, fileSize int64) (string, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == ".." {
		return "", errBadFileName
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", errBadExtension
	}
	if fileSize <= 0 || fileSize > maxFileSize {
		return "", errTooLarge
	}

	safe := unsafeChars.ReplaceAllString(name, "_")
	if strings.TrimSuffix(safe, ext) == "" {
		return "", errBadFileName
	}
	return safe, nil
}
