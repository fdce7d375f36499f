package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifecycle(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.SetToken("tok-1", []byte(`{"username":"cashier1"}`)))

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.JSONEq(t, `{"username":"cashier1"}`, string(s.User()))

	require.NoError(t, s.Clear())

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Nil(t, s.User())
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("persisted", []byte(`{"id":7}`)))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	tok, err := s2.Token()
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)
	assert.JSONEq(t, `{"id":7}`, string(s2.User()))
}

func TestClearSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok", nil))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.Token()
	assert.ErrorIs(t, err, ErrNoSession)
}
