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
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// echoServer upgrades every request and echoes text messages back, recording
// the Authorization header of the handshake.
func echoServer(t *testing.T, gotAuth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if gotAuth != nil {
				*gotAuth = r.Header.Get("Authorization")
			}
			conn, err := testUpgrader.Upgrade(w, r, nil)
			if err != nil {
				t.Errorf("Upgrade failed: %+v", err)
				return
			}
			defer conn.Close()
			for {
				mt, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if err = conn.WriteMessage(mt, data); err != nil {
					return
				}
			}
		}))
}

// The dialer flips the scheme, appends the endpoint path, and carries the
// bearer token on the handshake.
func TestDialWebsocket(t *testing.T) {
	var gotAuth string
	srv := echoServer(t, &gotAuth)
	defer srv.Close()

	ws, err := dialWebsocket(srv.URL, "/ws", "tok123")
	if err != nil {
		t.Fatalf("dialWebsocket failed: %+v", err)
	}
	defer ws.Close()

	if gotAuth != "Bearer tok123" {
		t.Errorf("Wrong Authorization header."+
			"\nExpected: Bearer tok123\nReceived: %s", gotAuth)
	}
}

func TestDialWebsocket_BadScheme(t *testing.T) {
	if _, err := dialWebsocket("ftp://host", "/ws", "tok"); err == nil {
		t.Error("Unsupported scheme was accepted")
	}
}

// Each Write is one websocket message; Read stitches consecutive messages
// into one continuous byte stream, including reads that straddle a message
// boundary.
func TestWsStream_ReadWrite(t *testing.T) {
	srv := echoServer(t, nil)
	defer srv.Close()

	ws, err := dialWebsocket(srv.URL, "", "")
	if err != nil {
		t.Fatalf("dialWebsocket failed: %+v", err)
	}
	defer ws.Close()

	if _, err = ws.Write([]byte("CONNECT\n")); err != nil {
		t.Fatalf("Write failed: %+v", err)
	}
	if _, err = ws.Write([]byte("host:/\n\n")); err != nil {
		t.Fatalf("Write failed: %+v", err)
	}

	expected := "CONNECT\nhost:/\n\n"
	buf := make([]byte, len(expected))
	if _, err = io.ReadFull(ws, buf); err != nil {
		t.Fatalf("Read failed: %+v", err)
	}
	if string(buf) != expected {
		t.Errorf("Stream not stitched correctly."+
			"\nExpected: %q\nReceived: %q", expected, buf)
	}
}

// Small reads drain one message across several calls without losing bytes.
func TestWsStream_PartialReads(t *testing.T) {
	srv := echoServer(t, nil)
	defer srv.Close()

	ws, err := dialWebsocket(srv.URL, "", "")
	if err != nil {
		t.Fatalf("dialWebsocket failed: %+v", err)
	}
	defer ws.Close()

	payload := "abcdefghij"
	if _, err = ws.Write([]byte(payload)); err != nil {
		t.Fatalf("Write failed: %+v", err)
	}

	var got []byte
	buf := make([]byte, 3)
	for len(got) < len(payload) {
		n, err := ws.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %+v", err)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != payload {
		t.Errorf("Bytes lost across partial reads."+
			"\nExpected: %q\nReceived: %q", payload, got)
	}
}
