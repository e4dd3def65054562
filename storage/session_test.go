////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/substring/chat-client/api"
)

// Smoke test of SaveCredentials and Credentials round-tripping through the
// store.
func TestSession_SaveLoad(t *testing.T) {
	s := NewSession(ekv.MakeMemstore())

	user := api.User{Username: "alice", Email: "a@x.test",
		FullName: "Alice A"}
	require.NoError(t, s.SaveCredentials("tok123", user))

	token, got, err := s.Credentials()
	require.NoError(t, err)
	require.Equal(t, "tok123", token)
	require.Equal(t, user, got)
}

// A fresh store has no session.
func TestSession_Empty(t *testing.T) {
	s := NewSession(ekv.MakeMemstore())

	require.False(t, s.SignedIn())

	_, _, err := s.Credentials()
	require.ErrorIs(t, err, ErrNoSession)
}

// Clearing removes the session; clearing an already-empty store is not an
// error.
func TestSession_Clear(t *testing.T) {
	s := NewSession(ekv.MakeMemstore())

	require.NoError(t, s.SaveCredentials("tok123",
		api.User{Username: "alice"}))
	require.True(t, s.SignedIn())

	require.NoError(t, s.Clear())
	require.False(t, s.SignedIn())

	// Clearing twice must not error.
	require.NoError(t, s.Clear())
}

// Signing in again overwrites the previous identity.
func TestSession_Overwrite(t *testing.T) {
	s := NewSession(ekv.MakeMemstore())

	require.NoError(t, s.SaveCredentials("tok1",
		api.User{Username: "alice"}))
	require.NoError(t, s.SaveCredentials("tok2",
		api.User{Username: "bob"}))

	token, user, err := s.Credentials()
	require.NoError(t, err)
	require.Equal(t, "tok2", token)
	require.Equal(t, "bob", user.Username)
}

// Ensures the on-disk store persists across a reopen of the same directory.
func TestSession_FilestoreReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadFilestore(dir, "hunter2")
	require.NoError(t, err)
	require.NoError(t, s.SaveCredentials("tok123",
		api.User{Username: "alice"}))

	reopened, err := LoadFilestore(dir, "hunter2")
	require.NoError(t, err)

	token, user, err := reopened.Credentials()
	require.NoError(t, err)
	require.Equal(t, "tok123", token)
	require.Equal(t, "alice", user.Username)
}
