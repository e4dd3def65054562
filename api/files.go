////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/pkg/errors"
)

// UploadRequest carries one attachment plus the sender/room metadata the
// upload endpoint needs to build and fan out the resulting message.
type UploadRequest struct {
	RoomID         string
	Sender         string
	SenderFullName string
	FileName       string
	MimeType       string
	Data           io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadMessageFile uploads an attachment to the upload-message endpoint. The
// server persists the file, builds the chat message, and publishes it over
// the realtime topics itself; the caller observes delivery through its
// subscription, not through this call.
func (c *Client) UploadMessageFile(req UploadRequest) error {
	token := c.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	// multipart.CreateFormFile hardcodes application/octet-stream, and the
	// server validates the part's MIME type, so the part is built by hand.
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="file"; filename="%s"`,
		quoteEscaper.Replace(req.FileName)))
	hdr.Set("Content-Type", req.MimeType)

	part, err := w.CreatePart(hdr)
	if err != nil {
		return errors.Wrap(err, "failed to create multipart file part")
	}
	if _, err = io.Copy(part, req.Data); err != nil {
		return errors.Wrap(err, "failed to copy attachment data")
	}

	fields := map[string]string{
		"sender":         req.Sender,
		"senderFullName": req.SenderFullName,
		"roomId":         req.RoomID,
	}
	for name, value := range fields {
		if err = w.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "failed to write field %s", name)
		}
	}

	if err = w.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize multipart body")
	}

	httpReq, err := http.NewRequest(http.MethodPost,
		c.baseURL+"/api/v1/files/upload-message", body)
	if err != nil {
		return errors.Wrap(err, "failed to build upload request")
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	return c.send(httpReq, "/api/v1/files/upload-message", nil)
}
