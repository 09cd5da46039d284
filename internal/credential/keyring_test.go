package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/credential"
)

func TestKeyring(t *testing.T) {
	k := credential.New(keyring.NewArrayKeyring(nil))
	key := credential.TokenKey("http://localhost:8080")

	_, err := k.Get(key)
	assert.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, k.Set(key, "secret-token"))
	got, err := k.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", got)

	require.NoError(t, k.Delete(key))
	require.NoError(t, k.Delete(key))

	_, err = k.Get(key)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}
