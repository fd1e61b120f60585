package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap/zaptest"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("pothole-report", "email", zaptest.NewLogger(t))

	_, err := store.GetEmail()
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	require.NoError(t, store.SetEmail("  reporter@example.com \n"))
	email, err := store.GetEmail()
	require.NoError(t, err)
	assert.Equal(t, "reporter@example.com", email)

	require.NoError(t, store.DeleteEmail())
	_, err = store.GetEmail()
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestKeyringStoreAccountsAreSeparate(t *testing.T) {
	keyring.MockInit()
	first := NewKeyringStore("pothole-report", "email", nil)
	second := NewKeyringStore("pothole-report", "work", nil)

	require.NoError(t, first.SetEmail("home@example.com"))
	_, err := second.GetEmail()
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestKeyringStoreRejectsEmptyEmail(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("pothole-report", "email", nil)
	assert.Error(t, store.SetEmail("   "))
}

func TestKeyringStoreDeleteMissing(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("pothole-report", "email", nil)
	assert.ErrorIs(t, store.DeleteEmail(), ErrCredentialNotFound)
}
