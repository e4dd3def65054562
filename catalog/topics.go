////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package catalog

import "fmt"

// WebsocketPath is the path of the websocket endpoint the STOMP session is
// layered over, relative to the server base URL.
const WebsocketPath = "/ws"

// SendDestination is the application destination text messages are published
// to. The broker fans the message out to the room topic.
const SendDestination = "/app/chat.sendMessage"

// RoomTopic returns the topic text messages for the given room are delivered
// on.
func RoomTopic(roomID string) string {
	return fmt.Sprintf("/topic/room/%s", roomID)
}

// FileTopic returns the topic attachment-originated messages for the given
// room are delivered on. The upload endpoint publishes here after persisting
// the file; the same logical message may additionally appear on the room
// topic, so receivers must deduplicate across both.
func FileTopic(roomID string) string {
	return fmt.Sprintf("/topic/messages/%s", roomID)
}

// UsersTopic returns the topic the online-user count for the given room is
// broadcast on. The body is a bare integer.
func UsersTopic(roomID string) string {
	return fmt.Sprintf("/topic/room/%s/users", roomID)
}
