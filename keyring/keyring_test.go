package keyring_test

import (
	"os"
	"testing"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

// The mock keychain is a process-wide unsynchronized map, so tests here
// run sequentially.
func TestMain(m *testing.M) {
	gokeyring.MockInit()
	os.Exit(m.Run())
}

func TestStore(t *testing.T) {
	s := &keyring.Store{Service: "agenticflow-test-store"}

	_, err := s.Get("work")
	require.ErrorIs(t, err, agenticflow.ErrNotFound)
	assert.Contains(t, err.Error(), `"work"`)

	require.NoError(t, s.Set("work", "sk-1"))
	got, err := s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "sk-1", got)

	require.NoError(t, s.Set("work", "sk-2"))
	got, err = s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "sk-2", got)

	require.NoError(t, s.Delete("work"))
	_, err = s.Get("work")
	assert.ErrorIs(t, err, agenticflow.ErrNotFound)
	assert.ErrorIs(t, s.Delete("work"), agenticflow.ErrNotFound)
}

func TestStore_DefaultProfile(t *testing.T) {
	s := &keyring.Store{Service: "agenticflow-test-default"}

	require.NoError(t, s.Set("", "sk-default"))
	got, err := s.Get(agenticflow.DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "sk-default", got)
}

func TestStore_Isolation(t *testing.T) {
	a := &keyring.Store{Service: "agenticflow-test-a"}
	b := &keyring.Store{Service: "agenticflow-test-b"}

	require.NoError(t, a.Set("p", "key-a"))
	_, err := b.Get("p")
	assert.ErrorIs(t, err, agenticflow.ErrNotFound)
}

func TestStore_RejectsEmptyKey(t *testing.T) {
	s := keyring.NewStore()
	assert.ErrorIs(t, s.Set("p", ""), agenticflow.ErrValidation)
}
