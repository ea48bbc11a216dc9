package music

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUploadAcceptsAudioFormats(t *testing.T) {
	for _, name := range []string{"track.mp3", "mix.OGG", "take1.wav", "master.flac"} {
		safe, err := ValidateUpload(name, 1024)
		require.NoError(t, err, "name %q", name)
		assert.NotEmpty(t, safe)
	}
}

func TestValidateUploadRejectsOtherFormats(t *testing.T) {
	for _, name := range []string{"notes.txt", "movie.mp4", "song.mp3.exe", "archive.zip", "noext"} {
		_, err := ValidateUpload(name, 1024)
		assert.ErrorIs(t, err, errBadExtension, "name %q", name)
	}
}

func TestValidateUploadSizeBounds(t *testing.T) {
	_, err := ValidateUpload("track.mp3", 20<<20)
	assert.NoError(t, err)

	_, err = ValidateUpload("track.mp3", 20<<20+1)
	assert.ErrorIs(t, err, errTooLarge)

	_, err = ValidateUpload("track.mp3", 0)
	assert.ErrorIs(t, err, errTooLarge)
}

func TestValidateUploadStripsPathAndUnsafeChars(t *testing.T) {
	safe, err := ValidateUpload("../../etc/cron d/sneaky song!.mp3", 1024)
	require.NoError(t, err)
	assert.False(t, strings.Contains(safe, "/"))
	assert.Equal(t, "sneaky_song_.mp3", safe)
}

func TestValidateUploadRejectsEmptyNames(t *testing.T) {
	for _, name := range []string{"", "   ", "."} {
		_, err := ValidateUpload(name, 1024)
		assert.Error(t, err, "name %q", name)
	}
}
