////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import "sync"

// nameCache maps usernames to resolved display names for one room session.
// Entries are terminal: a failed lookup stores the username itself and is
// never retried. The cache dies with the session; nothing is persisted.
type nameCache struct {
	byUsername map[string]string
	mux        sync.RWMutex
}

func newNameCache() *nameCache {
	return &nameCache{byUsername: make(map[string]string)}
}

func (nc *nameCache) get(username string) (string, bool) {
	nc.mux.RLock()
	defer nc.mux.RUnlock()
	name, exists := nc.byUsername[username]
	return name, exists
}

func (nc *nameCache) has(username string) bool {
	_, exists := nc.get(username)
	return exists
}

func (nc *nameCache) set(username, name string) {
	nc.mux.Lock()
	nc.byUsername[username] = name
	nc.mux.Unlock()
}
