////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"gitlab.com/substring/chat-client/api"
	"gitlab.com/substring/chat-client/realtime"
)

// mockService is an in-memory stand-in for the REST client.
type mockService struct {
	mux        sync.Mutex
	history    []api.Message
	historyErr error
	fullNames  map[string]string
	failLookup map[string]bool
	lookupGate chan struct{}
	lookups    []string
	uploads    []api.UploadRequest
	room       api.Room
}

func newMockService() *mockService {
	return &mockService{
		fullNames:  make(map[string]string),
		failLookup: make(map[string]bool),
		room:       api.Room{RoomID: "ROOM1", RoomName: "general"},
	}
}

func (s *mockService) setHistory(msgs ...api.Message) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.history = msgs
}

func (s *mockService) Messages(string) ([]api.Message, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	msgs := make([]api.Message, len(s.history))
	copy(msgs, s.history)
	return msgs, nil
}

func (s *mockService) LookupUser(username string) (*api.User, error) {
	s.mux.Lock()
	s.lookups = append(s.lookups, username)
	fail := s.failLookup[username]
	fullName := s.fullNames[username]
	gate := s.lookupGate
	s.mux.Unlock()

	// A set gate holds the lookup in flight until the test releases it.
	if gate != nil {
		<-gate
	}

	if fail {
		return nil, errors.New("lookup refused")
	}
	return &api.User{Username: username, FullName: fullName}, nil
}

func (s *mockService) RoomInfo(string) (*api.Room, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	room := s.room
	return &room, nil
}

func (s *mockService) UploadMessageFile(req api.UploadRequest) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.uploads = append(s.uploads, req)
	return nil
}

func (s *mockService) lookupCount(username string) int {
	s.mux.Lock()
	defer s.mux.Unlock()
	n := 0
	for _, u := range s.lookups {
		if u == username {
			n++
		}
	}
	return n
}

func (s *mockService) uploadCount() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.uploads)
}

// mockChannel is an in-memory stand-in for the realtime session.
type mockChannel struct {
	mux       sync.Mutex
	state     realtime.State
	published [][]byte
	events    chan realtime.Event
	states    chan realtime.State
	closed    bool
}

func newMockChannel(state realtime.State) *mockChannel {
	return &mockChannel{
		state:  state,
		events: make(chan realtime.Event, 16),
		states: make(chan realtime.State, 16),
	}
}

func (c *mockChannel) Events() <-chan realtime.Event       { return c.events }
func (c *mockChannel) StateChanges() <-chan realtime.State { return c.states }

func (c *mockChannel) State() realtime.State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.state
}

func (c *mockChannel) Publish(_ string, body []byte) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.state != realtime.Connected {
		return realtime.ErrNotConnected
	}
	c.published = append(c.published, body)
	return nil
}

func (c *mockChannel) Close() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.closed = true
	c.state = realtime.Closed
}

func (c *mockChannel) publishCount() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return len(c.published)
}

// testModel funnels every callback into buffered channels so tests can wait
// for asynchronous work deterministically.
type testModel struct {
	received chan api.Message
	history  chan []api.Message
	resolved chan [2]string
	states   chan realtime.State
	rooms    chan string
	online   chan int
}

func newTestModel() *testModel {
	return &testModel{
		received: make(chan api.Message, 32),
		history:  make(chan []api.Message, 8),
		resolved: make(chan [2]string, 32),
		states:   make(chan realtime.State, 8),
		rooms:    make(chan string, 8),
		online:   make(chan int, 8),
	}
}

func (t *testModel) MessageReceived(msg api.Message)    { t.received <- msg }
func (t *testModel) HistoryLoaded(msgs []api.Message)   { t.history <- msgs }
func (t *testModel) ConnectionUpdated(s realtime.State) { t.states <- s }
func (t *testModel) RoomUpdated(name string)            { t.rooms <- name }
func (t *testModel) OnlineCount(n int)                  { t.online <- n }

func (t *testModel) NameResolved(username, name string) {
	t.resolved <- [2]string{username, name}
}

func makeMessage(sender, content, stamp string) api.Message {
	return api.Message{
		Sender:    sender,
		Content:   content,
		RoomID:    "ROOM1",
		TimeStamp: stamp,
	}
}

func stampN(i int) string {
	return "2024-05-01T10:00:" + pad(i) + ".000Z"
}

func pad(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}
