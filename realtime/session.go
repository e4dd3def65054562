////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package realtime binds one room to the server's STOMP-over-websocket
// endpoint: it owns the connection, the three topic subscriptions, and the
// outbound publish capability, and reconnects with a fixed delay when the
// transport drops.
package realtime

import (
	"net/url"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/substring/chat-client/catalog"
)

// reconnectDelay is the fixed wait between reconnection attempts after the
// transport drops.
const reconnectDelay = 5 * time.Second

const eventBufferSize = 64

// ErrNoCredential is returned by NewSession when no bearer token is
// available. The caller should send the user to sign in rather than retry.
var ErrNoCredential = errors.New(
	"cannot open realtime session: no bearer token")

// ErrNotConnected is returned by Publish while the session is anything other
// than connected. Send affordances should be disabled in that state instead
// of surfacing this to the user.
var ErrNotConnected = errors.New("realtime session is not connected")

// Event is one decoded-from-the-wire delivery: the topic it arrived on and
// the raw body. The chat core decodes the body; the users topic carries a
// bare integer rather than JSON.
type Event struct {
	Topic string
	Body  []byte
}

// Session is one realtime channel binding to exactly one room. Create it on
// room entry, Close it on leave; it is not reusable after Close.
type Session struct {
	serverURL string
	token     string
	roomID    string

	mux   sync.RWMutex
	state State
	conn  *stomp.Conn

	events chan Event
	states chan State
	quit   chan struct{}
	once   sync.Once
}

// NewSession builds a session for the given room. The token requirement is
// checked up front so a missing credential fails before any dialing starts.
func NewSession(serverURL, token, roomID string) (*Session, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	return &Session{
		serverURL: serverURL,
		token:     token,
		roomID:    roomID,
		state:     Idle,
		events:    make(chan Event, eventBufferSize),
		states:    make(chan State, 8),
		quit:      make(chan struct{}),
	}, nil
}

// RoomID returns the room this session is bound to.
func (s *Session) RoomID() string {
	return s.roomID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state
}

// Events returns the stream of deliveries from all subscribed topics. The
// channel closes once the session shuts down.
func (s *Session) Events() <-chan Event {
	return s.events
}

// StateChanges returns a stream of lifecycle transitions. A lagging consumer
// loses the oldest buffered transitions, never the newest; State is always
// authoritative.
func (s *Session) StateChanges() <-chan State {
	return s.states
}

// Start launches the connection loop. It returns immediately; watch
// StateChanges or State for the handshake outcome.
func (s *Session) Start() {
	go s.run()
}

// Publish sends a payload to the given application destination. It refuses
// with ErrNotConnected unless the session is fully connected.
func (s *Session) Publish(destination string, body []byte) error {
	s.mux.RLock()
	conn, state := s.conn, s.state
	s.mux.RUnlock()

	if state != Connected || conn == nil {
		return ErrNotConnected
	}

	if err := conn.Send(destination, "application/json", body); err != nil {
		return errors.Wrapf(err, "publish to %s failed", destination)
	}
	return nil
}

// Close tears the session down: the connection is deactivated, all
// subscriptions are released, and the state becomes Closed. Safe to call more
// than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mux.Lock()
		s.state = Closed
		conn := s.conn
		s.conn = nil
		s.mux.Unlock()

		close(s.quit)
		if conn != nil {
			if err := conn.Disconnect(); err != nil {
				jww.DEBUG.Printf(
					"[RT] Disconnect on close returned: %+v", err)
			}
		}

		jww.INFO.Printf("[RT] Session for room %s closed", s.roomID)
	})
}

// setState records a transition unless the session has already been closed,
// in which case Closed wins. When the notification buffer is full the oldest
// entry is dropped so the newest transition always gets through; a lagging
// consumer misses intermediate states, never the current one.
func (s *Session) setState(state State) {
	s.mux.Lock()
	if s.state == Closed {
		s.mux.Unlock()
		return
	}
	s.state = state
	s.mux.Unlock()

	jww.INFO.Printf("[RT] Room %s session state: %s", s.roomID, state)

	for {
		select {
		case s.states <- state:
			return
		default:
		}
		select {
		case <-s.states:
		default:
		}
	}
}

// run is the connection loop: dial, subscribe, pump, and on transport loss
// wait the fixed delay and start over. It exits only when Close is called.
func (s *Session) run() {
	defer close(s.events)

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		s.setState(Connecting)

		conn, subs, ws, err := s.connect()
		if err != nil {
			jww.WARN.Printf("[RT] Connect to room %s failed: %+v",
				s.roomID, err)
			s.setState(Disconnected)
			if !s.wait() {
				return
			}
			continue
		}

		s.mux.Lock()
		if s.state == Closed {
			// Closed raced the handshake; drop the fresh connection.
			s.mux.Unlock()
			_ = conn.Disconnect()
			_ = ws.Close()
			return
		}
		s.conn = conn
		s.mux.Unlock()

		s.setState(Connected)

		keepGoing := s.pump(subs)

		s.mux.Lock()
		s.conn = nil
		s.mux.Unlock()
		_ = conn.Disconnect()
		_ = ws.Close()

		if !keepGoing {
			return
		}

		s.setState(Disconnected)
		if !s.wait() {
			return
		}
	}
}

// connect performs one dial + handshake + subscribe sequence. All three
// subscriptions must succeed before the session is considered connected.
func (s *Session) connect() (*stomp.Conn, []*stomp.Subscription, *wsStream,
	error) {

	ws, err := dialWebsocket(s.serverURL, catalog.WebsocketPath, s.token)
	if err != nil {
		return nil, nil, nil, err
	}

	host := "/"
	if u, err := url.Parse(s.serverURL); err == nil && u.Host != "" {
		host = u.Host
	}

	conn, err := stomp.Connect(ws,
		stomp.ConnOpt.Host(host),
		stomp.ConnOpt.Header("Authorization", "Bearer "+s.token),
		stomp.ConnOpt.HeartBeat(0, 0),
	)
	if err != nil {
		_ = ws.Close()
		return nil, nil, nil, errors.Wrap(err, "STOMP handshake failed")
	}

	topics := []string{
		catalog.RoomTopic(s.roomID),
		catalog.FileTopic(s.roomID),
		catalog.UsersTopic(s.roomID),
	}

	subs := make([]*stomp.Subscription, 0, len(topics))
	for _, topic := range topics {
		sub, err := conn.Subscribe(topic, stomp.AckAuto)
		if err != nil {
			_ = conn.Disconnect()
			_ = ws.Close()
			return nil, nil, nil, errors.Wrapf(err,
				"subscribe to %s failed", topic)
		}
		subs = append(subs, sub)
	}

	jww.INFO.Printf("[RT] Subscribed to %d topics for room %s",
		len(subs), s.roomID)

	return conn, subs, ws, nil
}

// pump forwards deliveries from the subscriptions to the event stream until
// the transport drops (returns true, reconnect) or the session closes
// (returns false).
func (s *Session) pump(subs []*stomp.Subscription) bool {
	room, file, users := subs[0], subs[1], subs[2]

	for {
		select {
		case <-s.quit:
			return false
		case msg, ok := <-room.C:
			if !s.deliver(msg, ok, room.Destination()) {
				return true
			}
		case msg, ok := <-file.C:
			if !s.deliver(msg, ok, file.Destination()) {
				return true
			}
		case msg, ok := <-users.C:
			if !s.deliver(msg, ok, users.Destination()) {
				return true
			}
		}
	}
}

// deliver hands one subscription message to the event stream. A false return
// means the subscription is dead and the connection should be rebuilt.
func (s *Session) deliver(msg *stomp.Message, ok bool, fallback string) bool {
	if !ok || msg == nil {
		return false
	}
	if msg.Err != nil {
		jww.WARN.Printf("[RT] Subscription error on %s: %+v",
			fallback, msg.Err)
		return false
	}

	topic := msg.Destination
	if topic == "" {
		topic = fallback
	}

	select {
	case s.events <- Event{Topic: topic, Body: msg.Body}:
	case <-s.quit:
		return false
	}
	return true
}

// wait sleeps the reconnect delay, returning false if the session closed
// while waiting.
func (s *Session) wait() bool {
	select {
	case <-s.quit:
		return false
	case <-time.After(reconnectDelay):
		return true
	}
}
