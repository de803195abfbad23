package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	actionQueueSize = 256
	eventQueueSize  = 100
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ErrHostClosed is returned for work posted after the host closed
var ErrHostClosed = errors.New("host closed")

// NewRoomCode generates a random room code
func NewRoomCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultRoomCodeLength
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	for i := range b {
		b[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}
	return string(b), nil
}

// RoomInfo summarizes the lobby for the HTTP surface
type RoomInfo struct {
	RoomCode string       `json:"roomCode"`
	Phase    domain.Phase `json:"phase"`
	Theme    string       `json:"theme"`
	Round    int          `json:"round"`
	Players  int          `json:"players"`
	Pending  int          `json:"pending"`
	Capacity int          `json:"capacity"`
	Password bool         `json:"passwordRequired"`
}

// Host runs a coordinator on a single event loop. Transport callbacks,
// timer callbacks and generation results are all funneled through it, so
// the coordinator never sees two handlers at once.
type Host struct {
	coord  *Coordinator
	logger *slog.Logger

	actions chan func()
	events  chan domain.Event

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	work      sync.WaitGroup
}

// NewHost creates a host session and starts its event loop
func NewHost(opts Options, gen ghost.Generator, logger *slog.Logger) (*Host, error) {
	if opts.RoomCode == "" {
		code, err := NewRoomCode(DefaultRoomCodeLength)
		if err != nil {
			return nil, err
		}
		opts.RoomCode = code
	}
	if opts.HostID == "" {
		opts.HostID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Host{
		logger:  logger.With("roomCode", opts.RoomCode),
		actions: make(chan func(), actionQueueSize),
		events:  make(chan domain.Event, eventQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	h.coord = NewCoordinator(opts, h, h, gen, h.queueEvent, h.logger)

	go h.loop()

	h.logger.Info("host session created", "hostID", opts.HostID)
	return h, nil
}

// RoomCode returns the room code
func (h *Host) RoomCode() string {
	return h.coord.opts.RoomCode
}

// HostID returns the host's own player id
func (h *Host) HostID() string {
	return h.coord.opts.HostID
}

// Events returns the notification channel for the host's presentation layer
func (h *Host) Events() <-chan domain.Event {
	return h.events
}

// Done is closed once the host has shut down
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// AfterFunc schedules f onto the event loop
func (h *Host) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { h.post(f) })
}

// Go runs work in its own goroutine with the host's context and posts its
// completion back onto the loop. Closing the host cancels the context.
func (h *Host) Go(work func(ctx context.Context) func()) {
	h.work.Add(1)
	go func() {
		defer h.work.Done()
		if done := work(h.ctx); done != nil {
			h.post(done)
		}
	}()
}

// Do posts an action to run on the loop without waiting for it
func (h *Host) Do(f func(c *Coordinator)) error {
	if !h.post(func() { f(h.coord) }) {
		return ErrHostClosed
	}
	return nil
}

// Call runs f on the loop and waits for it to finish
func (h *Host) Call(f func(c *Coordinator) error) error {
	result := make(chan error, 1)
	if !h.post(func() { result <- f(h.coord) }) {
		return ErrHostClosed
	}
	select {
	case err := <-result:
		return err
	case <-h.done:
		return ErrHostClosed
	}
}

// Connect registers a newly opened transport connection
func (h *Host) Connect(p Peer) {
	if err := h.Do(func(c *Coordinator) { c.PeerOpened(p) }); err != nil {
		_ = p.Close()
	}
}

// Receive decodes a frame from a connection and dispatches it. Frames that
// do not decode are dropped.
func (h *Host) Receive(id string, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		h.logger.Debug("dropping undecodable frame", "transportID", id, "error", err)
		return
	}
	_ = h.Do(func(c *Coordinator) { c.HandleMessage(id, msg) })
}

// Disconnect reports that a transport connection closed
func (h *Host) Disconnect(id string) {
	_ = h.Do(func(c *Coordinator) { c.PeerClosed(id) })
}

// Info returns a summary of the lobby
func (h *Host) Info() (RoomInfo, error) {
	var info RoomInfo
	err := h.Call(func(c *Coordinator) error {
		s := c.Session()
		info = RoomInfo{
			RoomCode: s.RoomCode,
			Phase:    s.Phase,
			Theme:    s.Theme,
			Round:    s.Round,
			Players:  len(s.Players),
			Pending:  len(s.PendingPlayers),
			Capacity: domain.AvatarSlots,
			Password: s.Settings.RequirePassword,
		}
		return nil
	})
	return info, err
}

// Close tears the session down: LOBBY_CLOSED to every connection, all
// timers cancelled, in-flight generations cancelled, loop stopped.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		_ = h.Call(func(c *Coordinator) error {
			c.Shutdown()
			return nil
		})
		h.cancel()
		close(h.done)
		h.work.Wait()
		h.logger.Info("host session closed")
	})
}

// post queues f for the loop. It reports false once the host is closed.
func (h *Host) post(f func()) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.actions <- f:
		return true
	case <-h.done:
		return false
	}
}

// queueEvent adds an event to the notification queue
func (h *Host) queueEvent(event domain.Event) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// loop processes actions one at a time until the host closes
func (h *Host) loop() {
	for {
		select {
		case <-h.done:
			return
		case f := <-h.actions:
			f()
		}
	}
}
