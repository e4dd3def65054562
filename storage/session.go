////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package storage persists the signed-in identity between runs: the bearer
// token and the user object, under fixed keys in an ekv store. It is the
// moral equivalent of the browser client's localStorage entries.
package storage

import (
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/substring/chat-client/api"
)

// Fixed storage keys. Changing these orphans existing sessions.
const (
	tokenStorageKey = "jwt"
	userStorageKey  = "chatUser"
)

// Session is the persisted client-side session state.
type Session struct {
	kv ekv.KeyValue
}

// NewSession wraps an existing key-value store. Tests pass
// ekv.MakeMemstore().
func NewSession(kv ekv.KeyValue) *Session {
	return &Session{kv: kv}
}

// LoadFilestore opens (or creates) the encrypted on-disk session store in the
// given directory.
func LoadFilestore(dir, password string) (*Session, error) {
	fs, err := ekv.NewFilestore(dir, password)
	if err != nil {
		return nil, errors.Wrapf(err,
			"failed to open session store in %s", dir)
	}
	return NewSession(fs), nil
}

// SaveCredentials stores the bearer token and user object returned by sign in
// or sign up.
func (s *Session) SaveCredentials(token string, user api.User) error {
	if err := s.kv.SetInterface(tokenStorageKey, token); err != nil {
		return errors.Wrap(err, "failed to store bearer token")
	}
	if err := s.kv.SetInterface(userStorageKey, &user); err != nil {
		return errors.Wrap(err, "failed to store user")
	}

	jww.INFO.Printf("[STORE] Saved session for %q", user.Username)
	return nil
}

// Credentials loads the stored token and user. ErrNoSession is returned when
// nothing is stored.
func (s *Session) Credentials() (string, api.User, error) {
	var token string
	if err := s.kv.GetInterface(tokenStorageKey, &token); err != nil {
		if !ekv.Exists(err) {
			return "", api.User{}, ErrNoSession
		}
		return "", api.User{}, errors.Wrap(err,
			"failed to load bearer token")
	}

	var user api.User
	if err := s.kv.GetInterface(userStorageKey, &user); err != nil {
		if !ekv.Exists(err) {
			return "", api.User{}, ErrNoSession
		}
		return "", api.User{}, errors.Wrap(err, "failed to load user")
	}

	return token, user, nil
}

// ErrNoSession is returned by Credentials when no session has been saved or
// the session was cleared.
var ErrNoSession = errors.New("no stored session; sign in first")

// SignedIn reports whether a session is stored.
func (s *Session) SignedIn() bool {
	_, _, err := s.Credentials()
	return err == nil
}

// Clear removes the stored session. Used on logout and when the server
// rejects the stored token.
func (s *Session) Clear() error {
	if err := s.kv.Delete(tokenStorageKey); err != nil && ekv.Exists(err) {
		return errors.Wrap(err, "failed to delete bearer token")
	}
	if err := s.kv.Delete(userStorageKey); err != nil && ekv.Exists(err) {
		return errors.Wrap(err, "failed to delete user")
	}

	jww.INFO.Printf("[STORE] Cleared stored session")
	return nil
}
