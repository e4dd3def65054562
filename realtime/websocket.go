////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package realtime

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// wsStream adapts a websocket connection to the io.ReadWriteCloser the STOMP
// library expects. Reads stitch websocket messages into a continuous byte
// stream; each Write goes out as one text message. The server side
// reassembles STOMP frames that span messages, so no framing is done here.
type wsStream struct {
	conn   *websocket.Conn
	reader io.Reader
}

// dialWebsocket opens the websocket endpoint of the server at baseURL,
// carrying the bearer token on the handshake.
func dialWebsocket(baseURL, path, token string) (*wsStream, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "bad server URL %q", baseURL)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, errors.Errorf("unsupported scheme %q in server URL",
			u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path

	hdr := http.Header{}
	if token != "" {
		hdr.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		return nil, errors.Wrapf(err, "websocket dial to %s failed",
			u.String())
	}

	return &wsStream{conn: conn}, nil
}

func (w *wsStream) Read(p []byte) (int, error) {
	for {
		if w.reader == nil {
			_, r, err := w.conn.NextReader()
			if err != nil {
				return 0, err
			}
			w.reader = r
		}

		n, err := w.reader.Read(p)
		if err == io.EOF {
			// Current message exhausted; move on to the next one.
			w.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (w *wsStream) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsStream) Close() error {
	return w.conn.Close()
}
