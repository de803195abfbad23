package app

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
)

// Timing and sizing defaults
const (
	DefaultReadDelay      = 5 * time.Second
	DefaultRevealCadence  = 2 * time.Second
	DefaultRevealSteps    = 4
	DefaultReconnectGrace = 60 * time.Second
	DefaultChatHistory    = 50

	countdownTick = time.Second

	// chat ids remembered for de-duplication, beyond the kept history
	chatSeenLimit = 1000
)

// Peer is one open transport connection as seen by the host
type Peer interface {
	ID() string
	Send(msg protocol.Message) error
	Close() error
}

// Runner executes slow work off the event loop. The function returned by
// work, if any, is run back on the loop once the work completes.
type Runner interface {
	Go(work func(ctx context.Context) func())
}

// Options configures a coordinator
type Options struct {
	RoomCode         string
	HostID           string
	HostName         string
	HostPersistentID string
	Settings         domain.Settings
	Theme            string
	Themes           map[string]Theme
	MaxRounds        int
	ReadDelay        time.Duration
	RevealCadence    time.Duration
	RevealSteps      int
	ReconnectGrace   time.Duration
	ChatHistory      int
	Seed             int64
}

// DefaultOptions returns options with the standard game timings
func DefaultOptions() Options {
	return Options{
		HostName:       "Host",
		Settings:       domain.DefaultSettings(),
		Theme:          domain.DefaultTheme,
		Themes:         Themes,
		MaxRounds:      domain.DefaultMaxRounds,
		ReadDelay:      DefaultReadDelay,
		RevealCadence:  DefaultRevealCadence,
		RevealSteps:    DefaultRevealSteps,
		ReconnectGrace: DefaultReconnectGrace,
		ChatHistory:    DefaultChatHistory,
	}
}

// Coordinator owns the authoritative session. It is not safe for concurrent
// use: every method must run on the host's event loop.
type Coordinator struct {
	session *domain.Session
	peers   map[string]Peer
	chat    []domain.ChatMessage
	seen    *seenIDs
	timers  *timerRegistry
	runner  Runner
	ghost   ghost.Generator
	opts    Options
	rng     *rand.Rand
	now     func() time.Time
	emit    func(domain.Event)
	logger  *slog.Logger
	closed  bool
}

// NewCoordinator creates a session in the lobby with the host already seated
func NewCoordinator(opts Options, sched Scheduler, runner Runner, gen ghost.Generator, emit func(domain.Event), logger *slog.Logger) *Coordinator {
	if opts.Themes == nil {
		opts.Themes = Themes
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if emit == nil {
		emit = func(domain.Event) {}
	}

	c := &Coordinator{
		peers:  make(map[string]Peer),
		chat:   []domain.ChatMessage{},
		timers: newTimerRegistry(sched),
		runner: runner,
		ghost:  gen,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
		emit:   emit,
		logger: logger,
	}
	c.resetSession()
	return c
}

// resetSession replaces the session with a fresh lobby holding only the host
func (c *Coordinator) resetSession() {
	s := domain.NewSession(c.opts.RoomCode, c.opts.Settings)
	s.HostID = c.opts.HostID
	if c.opts.Theme != "" {
		s.Theme = c.opts.Theme
	}
	if c.opts.MaxRounds > 0 {
		s.MaxRounds = c.opts.MaxRounds
	}

	host := domain.NewPlayer(c.opts.HostID, c.opts.HostName, c.opts.HostPersistentID, 0, true)
	if avatar, err := s.FreeAvatar(c.rng); err == nil {
		host.AvatarID = avatar
	}
	_ = s.AddPlayer(host)

	c.session = s
	c.chat = []domain.ChatMessage{}
	c.seen = newSeenIDs(max(chatSeenLimit, c.opts.ChatHistory))
}

// Session returns the live session. Callers on the event loop only.
func (c *Coordinator) Session() *domain.Session {
	return c.session
}

// Snapshot returns a copy of the unmasked session
func (c *Coordinator) Snapshot() *domain.Session {
	return c.session.Clone()
}

// HostID returns the host's player id
func (c *Coordinator) HostID() string {
	return c.session.HostID
}

// Chat returns a copy of the chat history
func (c *Coordinator) Chat() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), c.chat...)
}

// PeerCount returns the number of open transport connections
func (c *Coordinator) PeerCount() int {
	return len(c.peers)
}

// PeerOpened registers a new transport connection. It joins nothing until
// the peer sends JOIN.
func (c *Coordinator) PeerOpened(p Peer) {
	if c.closed {
		_ = p.Close()
		return
	}
	c.peers[p.ID()] = p
	c.logger.Debug("peer opened", "transportID", p.ID())
}

// PeerClosed handles a transport going away. Admitted players become
// zombies with a grace timer; waiting-room entries are dropped.
func (c *Coordinator) PeerClosed(id string) {
	if _, ok := c.peers[id]; !ok {
		return
	}
	delete(c.peers, id)

	if _, ok := c.session.RemovePending(id); ok {
		c.logger.Info("pending player left", "transportID", id)
		c.emit(domain.NewPlayerEvent(domain.EventPlayerLeft, c.session.Phase, id, nil))
		c.broadcastState()
		return
	}

	p, ok := c.session.Player(id)
	if !ok || p.IsHost {
		return
	}

	p.Disconnect()
	key := p.ReconnectKey()
	c.timers.schedule(timerGrace+key, c.opts.ReconnectGrace, func() {
		c.expireGrace(key)
	})

	c.logger.Info("player disconnected", "transportID", id, "name", p.Name)
	c.emit(domain.NewPlayerEvent(domain.EventPlayerLeft, c.session.Phase, id, nil))
	c.broadcastState()
}

// HandleMessage dispatches one message from a sender. The host's own
// actions come through here too, with the host's id as sender.
func (c *Coordinator) HandleMessage(from string, msg protocol.Message) {
	if c.closed {
		return
	}

	var err error
	switch m := msg.(type) {
	case protocol.Join:
		c.handleJoin(from, m)
	case protocol.SubmitAnswer:
		err = c.handleSubmitAnswer(from, m)
	case protocol.LockVotes:
		err = c.handleLockVotes(from)
	case protocol.SubmitVote:
		err = c.handleSubmitVote(from, m)
	case protocol.UpdateAvatar:
		err = c.handleUpdateAvatar(from, m)
	case protocol.UpdateName:
		err = c.handleUpdateName(from, m)
	case protocol.RequestGhost:
		err = c.handleRequestGhost(from, m)
	case protocol.ChatMessage:
		err = c.handleChat(from, m)
	case protocol.ReactionEmote:
		err = c.handleReaction(from, m)
	case protocol.Sync, protocol.Pending, protocol.AuthError, protocol.Rejected,
		protocol.GhostOptions, protocol.GhostError, protocol.ChatDeleteUser,
		protocol.LobbyClosed, protocol.Kicked, protocol.Removed:
		c.logger.Debug("ignoring client-bound message", "transportID", from, "type", msg.Type())
	default:
		c.logger.Debug("ignoring unknown message", "transportID", from)
	}

	if err != nil {
		c.logger.Debug("message rejected", "transportID", from, "type", msg.Type(), "error", err)
	}
}

// member returns the admitted player behind a sender id
func (c *Coordinator) member(id string) (*domain.Player, error) {
	p, ok := c.session.Player(id)
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p, nil
}

// send delivers a message to one connection, if it is open
func (c *Coordinator) send(id string, msg protocol.Message) {
	peer, ok := c.peers[id]
	if !ok {
		return
	}
	if err := peer.Send(msg); err != nil {
		c.logger.Debug("failed to send to peer", "transportID", id, "type", msg.Type(), "error", err)
	}
}

// relay sends a message to every admitted player except one
func (c *Coordinator) relay(msg protocol.Message, exceptID string) {
	for _, p := range c.session.Players {
		if p.ID != exceptID {
			c.send(p.ID, msg)
		}
	}
}

// closePeer forgets a connection and closes it. Its later close
// notification is ignored.
func (c *Coordinator) closePeer(id string) {
	peer, ok := c.peers[id]
	if !ok {
		return
	}
	delete(c.peers, id)
	if err := peer.Close(); err != nil {
		c.logger.Debug("failed to close peer", "transportID", id, "error", err)
	}
}

// refuse answers a connection with a rejection and closes it
func (c *Coordinator) refuse(id string, msg protocol.Message) {
	c.send(id, msg)
	c.closePeer(id)
}

// broadcastState sends the masked session to every admitted player.
// Waiting-room connections never receive it.
func (c *Coordinator) broadcastState() {
	view := c.session.ForClients()
	for _, p := range c.session.Players {
		if p.ID == c.session.HostID {
			continue
		}
		c.send(p.ID, protocol.Sync{Session: view, You: p.ID})
	}
	c.emit(domain.NewEvent(domain.EventStateChanged, c.session.Phase, nil))
}

// Shutdown tells every connection the lobby is closing, cancels all timers
// and resets the session. Nothing scheduled before it will fire afterwards.
func (c *Coordinator) Shutdown() {
	if c.closed {
		return
	}
	c.closed = true

	for id := range c.peers {
		c.send(id, protocol.LobbyClosed{Reason: protocol.ReasonClosed})
	}
	c.timers.cancelAll()
	c.resetSession()

	for id := range c.peers {
		c.closePeer(id)
	}

	c.logger.Info("lobby closed", "roomCode", c.session.RoomCode)
	c.emit(domain.NewEvent(domain.EventLobbyClosed, c.session.Phase, nil))
}

// Closed reports whether Shutdown has run
func (c *Coordinator) Closed() bool {
	return c.closed
}
