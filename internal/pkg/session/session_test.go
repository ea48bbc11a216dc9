package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndValidate(t *testing.T) {
	store := NewStore(24 * time.Hour)

	token := store.Create("user-1")
	require.Len(t, token, 64, "token should be 32 random bytes hex-encoded")

	sess := store.Validate(token)
	require.NotNil(t, sess)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, token, sess.Token)
}

func TestValidateUnknownToken(t *testing.T) {
	store := NewStore(24 * time.Hour)
	assert.Nil(t, store.Validate("never-issued"))
	assert.Nil(t, store.Validate(""))
}

func TestTokensAreUnique(t *testing.T) {
	store := NewStore(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := store.Create("u")
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestExpiryIsLazyDeleted(t *testing.T) {
	store := NewStore(24 * time.Hour)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	token := store.Create("user-1")
	require.NotNil(t, store.Validate(token))

	current = current.Add(24*time.Hour + time.Second)
	assert.Nil(t, store.Validate(token))
	assert.Equal(t, 0, store.Len(), "expired entry should be pruned on lookup")
	assert.Nil(t, store.Validate(token), "second lookup stays nil")
}

func TestValidateSlidesLastActive(t *testing.T) {
	store := NewStore(24 * time.Hour)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	token := store.Create("user-1")
	current = current.Add(30 * time.Minute)

	sess := store.Validate(token)
	require.NotNil(t, sess)
	assert.Equal(t, current, sess.LastActiveAt)
	assert.Equal(t, current.Add(-30*time.Minute), sess.CreatedAt)
}

func TestInvalidate(t *testing.T) {
	store := NewStore(24 * time.Hour)
	token := store.Create("user-1")
	store.Invalidate(token)
	assert.Nil(t, store.Validate(token))

	store.Invalidate("not-a-token")
}

func TestSweep(t *testing.T) {
	store := NewStore(time.Hour)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	old1 := store.Create("a")
	old2 := store.Create("b")

	current = current.Add(2 * time.Hour)
	fresh := store.Create("c")

	assert.Equal(t, 2, store.Sweep())
	assert.Nil(t, store.Validate(old1))
	assert.Nil(t, store.Validate(old2))
	assert.NotNil(t, store.Validate(fresh))
}
