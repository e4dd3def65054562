////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package chat implements the message reconciliation core of a room session:
// it owns the in-memory message list, merges deliveries from the REST history
// endpoint and both realtime message topics, deduplicates across them, and
// resolves sender display names through an on-demand cache.
package chat

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/substring/chat-client/api"
	"gitlab.com/substring/chat-client/catalog"
	"gitlab.com/substring/chat-client/realtime"
)

// timeStampLayout matches the wire format the web client sends
// (Date.toISOString). The server echoes the field verbatim, so the exact
// string takes part in triple-based deduplication.
const timeStampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrFileTooLarge is returned by SendAttachment before any network call when
// the file exceeds the upload limit.
var ErrFileTooLarge = errors.Errorf(
	"file exceeds the %d MiB attachment limit",
	catalog.MaxUploadSize/(1024*1024))

// ErrFileType is returned by SendAttachment before any network call when the
// file's MIME type is not on the upload allow-list.
var ErrFileType = errors.New("file type is not supported for upload")

// roomService is the slice of the REST client the core depends on.
type roomService interface {
	Messages(roomID string) ([]api.Message, error)
	LookupUser(username string) (*api.User, error)
	RoomInfo(roomID string) (*api.Room, error)
	UploadMessageFile(req api.UploadRequest) error
}

// channel is the slice of the realtime session the core drives.
type channel interface {
	Events() <-chan realtime.Event
	StateChanges() <-chan realtime.State
	State() realtime.State
	Publish(destination string, body []byte) error
	Close()
}

// Manager is one room session's reconciliation core. Create one per room
// entry with NewManager, Start it, and Close it when leaving the room; it is
// not reusable afterwards.
type Manager struct {
	roomID string
	me     api.User
	svc    roomService
	ch     channel
	model  EventModel
	names  *nameCache

	mux      sync.RWMutex
	messages []api.Message
	roomName string
	online   int
	closed   bool

	quit chan struct{}
	once sync.Once
}

// NewManager wires a reconciliation core to a REST client and a realtime
// session for one room. A nil model is allowed; consumers then poll Messages.
func NewManager(client *api.Client, session *realtime.Session, me api.User,
	roomID string, model EventModel) *Manager {
	return newManager(client, session, me, roomID, model)
}

func newManager(svc roomService, ch channel, me api.User, roomID string,
	model EventModel) *Manager {
	if model == nil {
		model = noopModel{}
	}
	return &Manager{
		roomID: roomID,
		me:     me,
		svc:    svc,
		ch:     ch,
		model:  model,
		names:  newNameCache(),
		quit:   make(chan struct{}),
	}
}

// Start launches the event loop that consumes realtime deliveries and state
// transitions. History and room metadata load once the channel first reports
// connected.
func (m *Manager) Start() {
	go m.listen()
}

// Close tears the session down: the event loop stops, the realtime channel
// is closed, and any event still in flight is ignored from here on.
func (m *Manager) Close() {
	m.once.Do(func() {
		m.mux.Lock()
		m.closed = true
		m.mux.Unlock()

		close(m.quit)
		m.ch.Close()

		jww.INFO.Printf("[CHAT] Left room %s", m.roomID)
	})
}

// RoomID returns the room this manager is bound to.
func (m *Manager) RoomID() string {
	return m.roomID
}

// State returns the realtime channel's current state.
func (m *Manager) State() realtime.State {
	return m.ch.State()
}

// Messages returns a snapshot of the message list in insertion order.
func (m *Manager) Messages() []api.Message {
	m.mux.RLock()
	defer m.mux.RUnlock()
	msgs := make([]api.Message, len(m.messages))
	copy(msgs, m.messages)
	return msgs
}

// RoomName returns the room's display name, or an empty string before
// metadata has loaded.
func (m *Manager) RoomName() string {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.roomName
}

// Online returns the last reported online-user count.
func (m *Manager) Online() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.online
}

// DisplayName returns the name a message's sender should be rendered under
// right now: the name carried on the message, then the cache, then the raw
// sender id. Called at render time because resolution may complete after the
// message was appended.
func (m *Manager) DisplayName(msg *api.Message) string {
	if msg.SenderFullName != "" {
		return msg.SenderFullName
	}
	if name, exists := m.names.get(msg.Sender); exists {
		return name
	}
	return msg.Sender
}

// LoadHistory fetches the room's message history and replaces the message
// list wholesale with the server's ordering. On failure the current list is
// left untouched and the error is returned for the caller to surface; there
// is no internal retry.
func (m *Manager) LoadHistory() error {
	msgs, err := m.svc.Messages(m.roomID)
	if err != nil {
		return errors.WithMessage(err, "history load failed")
	}

	m.mux.Lock()
	if m.closed {
		m.mux.Unlock()
		return nil
	}
	m.messages = make([]api.Message, len(msgs))
	copy(m.messages, msgs)
	m.mux.Unlock()

	jww.INFO.Printf("[CHAT] Loaded %d messages for room %s",
		len(msgs), m.roomID)

	seen := make(map[string]struct{})
	for i := range msgs {
		if _, ok := seen[msgs[i].Sender]; ok {
			continue
		}
		seen[msgs[i].Sender] = struct{}{}
		m.resolveSenderName(msgs[i].Sender)
	}

	m.model.HistoryLoaded(m.Messages())
	return nil
}

// SendText publishes a text message to the room. Empty content (after
// trimming) or a channel that is not connected makes this a no-op rather than
// an error; the send affordance is expected to be disabled in those states.
// The message is NOT appended locally: it counts as delivered only once it
// echoes back on the subscribed room topic.
func (m *Manager) SendText(content string) error {
	content = strings.TrimSpace(content)
	if content == "" || m.ch.State() != realtime.Connected {
		return nil
	}

	payload := api.Message{
		Sender:         m.me.Username,
		Content:        content,
		RoomID:         m.roomID,
		TimeStamp:      netTime.Now().UTC().Format(timeStampLayout),
		SenderFullName: m.senderFullName(),
	}

	body, err := json.Marshal(&payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal outgoing message")
	}

	return m.ch.Publish(catalog.SendDestination, body)
}

// SendAttachment validates an attachment locally and uploads it with the
// sender/room metadata. The upload endpoint persists the file and fans the
// resulting message out over the realtime topics itself, so nothing is
// published or appended here; delivery shows up through the subscription.
func (m *Manager) SendAttachment(filename, mimeType string, size int64,
	data io.Reader) error {

	if size > catalog.MaxUploadSize {
		return ErrFileTooLarge
	}
	if !catalog.IsAllowedUploadType(mimeType) {
		return ErrFileType
	}

	err := m.svc.UploadMessageFile(api.UploadRequest{
		RoomID:         m.roomID,
		Sender:         m.me.Username,
		SenderFullName: m.senderFullName(),
		FileName:       filename,
		MimeType:       mimeType,
		Data:           data,
	})
	if err != nil {
		return errors.WithMessage(err, "attachment upload failed")
	}

	jww.INFO.Printf("[CHAT] Uploaded %q (%s, %d bytes) to room %s",
		filename, mimeType, size, m.roomID)
	return nil
}

func (m *Manager) senderFullName() string {
	if m.me.FullName != "" {
		return m.me.FullName
	}
	return m.me.Username
}

// listen is the reconciliation loop. All message-list mutation driven by the
// realtime channel happens here, one event at a time in delivery order.
func (m *Manager) listen() {
	for {
		select {
		case <-m.quit:
			return
		case state, ok := <-m.ch.StateChanges():
			if !ok {
				return
			}
			m.model.ConnectionUpdated(state)
			if state == realtime.Connected {
				// Loads are triggered only after the subscriptions are
				// live so nothing falls between history and realtime.
				go m.bootstrap()
			}
		case event, ok := <-m.ch.Events():
			if !ok {
				return
			}
			m.handleEvent(event)
		}
	}
}

// bootstrap loads room metadata and history after a (re)connect. Failures
// are logged and left for the user to retry by reloading; the realtime
// stream keeps working either way.
func (m *Manager) bootstrap() {
	info, err := m.svc.RoomInfo(m.roomID)
	if err != nil {
		jww.WARN.Printf("[CHAT] Room info load failed for %s: %+v",
			m.roomID, err)
	} else {
		m.mux.Lock()
		if !m.closed {
			m.roomName = info.Name()
			m.online = info.Online()
		}
		m.mux.Unlock()
		m.model.RoomUpdated(info.Name())
	}

	if err = m.LoadHistory(); err != nil {
		jww.WARN.Printf("[CHAT] %+v", err)
	}
}

// handleEvent dispatches one realtime delivery by source topic.
func (m *Manager) handleEvent(event realtime.Event) {
	switch event.Topic {
	case catalog.RoomTopic(m.roomID), catalog.FileTopic(m.roomID):
		var msg api.Message
		if err := json.Unmarshal(event.Body, &msg); err != nil {
			jww.WARN.Printf("[CHAT] Undecodable message on %s: %+v",
				event.Topic, err)
			return
		}
		m.receive(msg, event.Topic)
	case catalog.UsersTopic(m.roomID):
		n, err := strconv.Atoi(strings.TrimSpace(string(event.Body)))
		if err != nil {
			jww.WARN.Printf("[CHAT] Bad online count %q: %+v",
				event.Body, err)
			return
		}
		m.mux.Lock()
		m.online = n
		m.mux.Unlock()
		m.model.OnlineCount(n)
	default:
		jww.DEBUG.Printf("[CHAT] Ignoring event on unexpected topic %s",
			event.Topic)
	}
}

// receive reconciles one message event into the list. The same logical
// message may arrive on both the room topic and the file topic; the
// (timeStamp, sender, content) triple is the only identity available, so an
// exact triple match is dropped as a redelivery.
func (m *Manager) receive(msg api.Message, topic string) {
	m.mux.Lock()
	if m.closed {
		m.mux.Unlock()
		return
	}
	for i := range m.messages {
		if m.messages[i].Same(&msg) {
			m.mux.Unlock()
			jww.DEBUG.Printf("[CHAT] Dropped duplicate of %s/%s from %s",
				msg.Sender, msg.TimeStamp, topic)
			return
		}
	}
	m.messages = append(m.messages, msg)
	m.mux.Unlock()

	m.resolveSenderName(msg.Sender)
	m.model.MessageReceived(msg)
}

// resolveSenderName kicks off an asynchronous display-name lookup for a
// sender on first sight. A failed lookup caches the username itself so it is
// never retried within the session. Two near-simultaneous first-sights can
// both issue lookups; the result is idempotent, so the race is tolerated
// rather than locked out.
func (m *Manager) resolveSenderName(username string) {
	if username == "" || username == m.me.Username {
		return
	}
	if m.names.has(username) {
		return
	}

	go func() {
		name := username
		user, err := m.svc.LookupUser(username)
		if err != nil {
			jww.DEBUG.Printf("[CHAT] Name lookup for %q failed, using "+
				"username: %+v", username, err)
		} else if user.FullName != "" {
			name = user.FullName
		}

		if m.isClosed() {
			// The room was left while the lookup was in flight.
			return
		}

		m.names.set(username, name)
		m.model.NameResolved(username, name)
	}()
}

func (m *Manager) isClosed() bool {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.closed
}

// DayLabel renders the calendar-day separator used when grouping messages
// for display.
func DayLabel(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t, now = t.Local(), now.Local()
	if sameDay(t, now) {
		return "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return t.Format("1/2/2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
