////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package api

import "github.com/pkg/errors"

// Room is the room metadata object. The server is inconsistent about field
// names between endpoints, so both spellings are decoded and the accessors
// below pick whichever is populated.
type Room struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	AltName     string `json:"name"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	ActiveUsers int    `json:"activeUsers"`
	OnlineCount int    `json:"onlineCount"`
}

// Name returns the room's display name regardless of which field the server
// used.
func (r *Room) Name() string {
	if r.RoomName != "" {
		return r.RoomName
	}
	return r.AltName
}

// Online returns the active-user count regardless of which field the server
// used.
func (r *Room) Online() int {
	if r.ActiveUsers != 0 {
		return r.ActiveUsers
	}
	return r.OnlineCount
}

type createRoomRequest struct {
	RoomName  string `json:"roomName"`
	CreatedBy string `json:"createdBy"`
	Password  string `json:"password,omitempty"`
}

type joinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

type roomResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Room    *Room  `json:"room"`
}

type roomListResponse struct {
	Rooms []Room `json:"rooms"`
}

// CreateRoom creates a room and returns its server-issued metadata, including
// the generated room ID. The password is optional; an empty string creates an
// open room.
func (c *Client) CreateRoom(roomName, createdBy, password string) (
	*Room, error) {

	resp := roomResponse{}
	err := c.do("POST", "/api/v1/rooms/create", createRoomRequest{
		RoomName:  roomName,
		CreatedBy: createdBy,
		Password:  password,
	}, &resp, true)
	if err != nil {
		return nil, err
	}

	if !resp.Success || resp.Room == nil {
		return nil, errors.Errorf("room creation rejected: %s", resp.Message)
	}

	return resp.Room, nil
}

// JoinRoom joins a room by ID, supplying the room password when the room has
// one.
func (c *Client) JoinRoom(roomID, username, password string) (*Room, error) {
	resp := roomResponse{}
	err := c.do("POST", "/api/v1/rooms/join", joinRoomRequest{
		RoomID:   roomID,
		Username: username,
		Password: password,
	}, &resp, true)
	if err != nil {
		return nil, err
	}

	if !resp.Success || resp.Room == nil {
		return nil, errors.Errorf("room join rejected: %s", resp.Message)
	}

	return resp.Room, nil
}

// Rooms lists every room on the server.
func (c *Client) Rooms() ([]Room, error) {
	resp := roomListResponse{}
	if err := c.get("/api/v1/rooms/all", &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// RoomInfo fetches metadata for one room: name and active-user count.
func (c *Client) RoomInfo(roomID string) (*Room, error) {
	room := &Room{}
	if err := c.get("/api/v1/rooms/"+roomID, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Messages fetches the ordered message history of a room. Server order is
// canonical chronological order; it is not re-sorted client side.
func (c *Client) Messages(roomID string) ([]Message, error) {
	var msgs []Message
	if err := c.get("/api/v1/rooms/"+roomID+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
