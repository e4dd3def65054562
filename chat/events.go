////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"gitlab.com/substring/chat-client/api"
	"gitlab.com/substring/chat-client/realtime"
)

// EventModel is the interface a consumer of the chat core (a UI, a bot)
// passes in to get events about the room. All callbacks fire from the
// manager's event goroutine or a lookup goroutine; implementations that need
// ordering should queue internally.
type EventModel interface {
	// MessageReceived is called when a new message survives deduplication
	// and is appended to the message list. The sender's display name may
	// not be resolved yet; consult Manager.DisplayName at render time.
	MessageReceived(msg api.Message)

	// HistoryLoaded is called after a successful history load replaced the
	// message list wholesale.
	HistoryLoaded(msgs []api.Message)

	// NameResolved is called when a display-name lookup finishes, whether
	// it succeeded or fell back to the raw username. Fires at most once
	// per username per room session.
	NameResolved(username, fullName string)

	// ConnectionUpdated reports realtime session transitions, e.g. to show
	// a reconnecting indicator and disable the send affordance.
	ConnectionUpdated(state realtime.State)

	// RoomUpdated reports the room's display name once metadata loads.
	RoomUpdated(name string)

	// OnlineCount reports live changes of the room's online-user count.
	OnlineCount(n int)
}

// noopModel backs managers created without an event model; consumers poll
// Messages instead.
type noopModel struct{}

func (noopModel) MessageReceived(api.Message)      {}
func (noopModel) HistoryLoaded([]api.Message)      {}
func (noopModel) NameResolved(string, string)      {}
func (noopModel) ConnectionUpdated(realtime.State) {}
func (noopModel) RoomUpdated(string)               {}
func (noopModel) OnlineCount(int)                  {}
