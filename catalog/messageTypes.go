////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package catalog

import "strings"

// MessageType labels the presentation variant of a chat message. The server
// stores it alongside every message; for attachment messages it is derived
// from the MIME type of the uploaded file.
type MessageType string

const (
	// Text is the type of plain chat messages with no attachment.
	Text MessageType = "text"

	// Image marks messages carrying an image attachment.
	Image MessageType = "image"

	// Video marks messages carrying a video attachment.
	Video MessageType = "video"

	// Audio marks messages carrying an audio attachment.
	Audio MessageType = "audio"

	// Document is the catch-all for any other attachment kind (PDF, Word,
	// and anything else the server accepted that is not media).
	Document MessageType = "document"
)

// TypeFromMIME maps a MIME type to the message type the server would assign.
// An empty MIME type means a plain text message.
func TypeFromMIME(mime string) MessageType {
	switch {
	case mime == "":
		return Text
	case strings.HasPrefix(mime, "image/"):
		return Image
	case strings.HasPrefix(mime, "video/"):
		return Video
	case strings.HasPrefix(mime, "audio/"):
		return Audio
	default:
		return Document
	}
}
