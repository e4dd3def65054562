////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package api

import (
	"time"

	"gitlab.com/substring/chat-client/catalog"
)

// Message is the wire shape shared by the history endpoint and both realtime
// topics. Attachment fields are only populated on attachment-originated
// messages, where Content carries the original file name for display.
type Message struct {
	ID               string              `json:"id,omitempty"`
	Sender           string              `json:"sender"`
	Content          string              `json:"content"`
	RoomID           string              `json:"roomId"`
	TimeStamp        string              `json:"timeStamp"`
	SenderFullName   string              `json:"senderFullName,omitempty"`
	FileURL          string              `json:"fileUrl,omitempty"`
	FileType         string              `json:"fileType,omitempty"`
	FileName         string              `json:"fileName,omitempty"`
	OriginalFileName string              `json:"originalFileName,omitempty"`
	FileSize         int64               `json:"fileSize,omitempty"`
	MessageType      catalog.MessageType `json:"messageType,omitempty"`
}

// HasAttachment reports whether the message carries a file.
func (m *Message) HasAttachment() bool {
	return m.FileURL != ""
}

// Type returns the presentation variant of the message. The server-assigned
// type wins; when it is absent the type is derived from the attachment MIME
// type, falling back to plain text.
func (m *Message) Type() catalog.MessageType {
	if m.MessageType != "" {
		return m.MessageType
	}
	if m.HasAttachment() {
		return catalog.TypeFromMIME(m.FileType)
	}
	return catalog.Text
}

// DisplayFileName returns the name an attachment should be shown under.
func (m *Message) DisplayFileName() string {
	if m.OriginalFileName != "" {
		return m.OriginalFileName
	}
	if m.FileName != "" {
		return m.FileName
	}
	return m.Content
}

// Time parses the message timestamp. The zero time is returned when the
// timestamp does not parse; history rendering treats that as "unknown day".
func (m *Message) Time() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, m.TimeStamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Same reports whether two messages describe the same logical event. Identity
// is the (timeStamp, sender, content) triple: the backend fans one send out
// over two topics with no shared server id, so this loose rule is the only
// dedup handle available. Two genuinely distinct messages identical on all
// three fields collide; this is a known limitation of the backend contract.
func (m *Message) Same(other *Message) bool {
	return m.TimeStamp == other.TimeStamp &&
		m.Sender == other.Sender &&
		m.Content == other.Content
}
