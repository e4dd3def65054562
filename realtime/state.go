////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package realtime

import "strconv"

// State is the lifecycle state of a Session.
type State uint8

const (
	// Idle is the state of a Session before Start is called.
	Idle State = iota

	// Connecting covers the websocket dial, the STOMP handshake, and the
	// topic subscriptions. The session only reports Connected once all
	// three subscriptions are in place.
	Connecting

	// Connected means the session is live and Publish may be used.
	Connected

	// Disconnected means the transport dropped; the session retries with a
	// fixed delay and sends are refused until it reconnects.
	Disconnected

	// Closed is terminal. Events arriving after this point are dropped.
	Closed
)

// String adheres to the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Closed:
		return "closed"
	default:
		return "invalid State: " + strconv.Itoa(int(s))
	}
}
