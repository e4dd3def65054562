////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package catalog

import "testing"

func TestTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected MessageType
	}{
		{"", Text},
		{"image/png", Image},
		{"image/webp", Image},
		{"video/mp4", Video},
		{"audio/ogg", Audio},
		{"application/pdf", Document},
		{"application/x-tar", Document},
	}

	for _, tc := range tests {
		if got := TypeFromMIME(tc.mime); got != tc.expected {
			t.Errorf("Wrong type for %q.\nExpected: %s\nReceived: %s",
				tc.mime, tc.expected, got)
		}
	}
}

func TestIsAllowedUploadType(t *testing.T) {
	allowed := []string{"image/jpeg", "image/png", "video/mp4", "audio/wav",
		"application/pdf",
		"application/vnd.openxmlformats-officedocument." +
			"wordprocessingml.document"}
	for _, mime := range allowed {
		if !IsAllowedUploadType(mime) {
			t.Errorf("%q rejected but should be allowed", mime)
		}
	}

	denied := []string{"application/zip", "text/html",
		"application/x-msdownload", "image/svg+xml", ""}
	for _, mime := range denied {
		if IsAllowedUploadType(mime) {
			t.Errorf("%q allowed but should be rejected", mime)
		}
	}
}

// The topic strings are a server contract; a typo here silently kills
// delivery, so they are pinned.
func TestTopics(t *testing.T) {
	tests := []struct{ got, expected string }{
		{RoomTopic("R42"), "/topic/room/R42"},
		{FileTopic("R42"), "/topic/messages/R42"},
		{UsersTopic("R42"), "/topic/room/R42/users"},
		{SendDestination, "/app/chat.sendMessage"},
		{WebsocketPath, "/ws"},
	}

	for _, tc := range tests {
		if tc.got != tc.expected {
			t.Errorf("Wrong destination.\nExpected: %s\nReceived: %s",
				tc.expected, tc.got)
		}
	}
}
