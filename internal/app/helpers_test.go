package app

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeScheduler is a manual clock. Advance fires due callbacks in order.
type fakeScheduler struct {
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, seq: s.seq, f: f}
	s.seq++
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		due := s.due(target)
		if due == nil {
			break
		}
		s.now = due.at
		due.fired = true
		due.f()
	}
	s.now = target
}

func (s *fakeScheduler) due(target time.Duration) *fakeTimer {
	var live []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= target {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	return live[0]
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeRunner queues work until flush
type fakeRunner struct {
	queue []func(ctx context.Context) func()
}

func (r *fakeRunner) Go(work func(ctx context.Context) func()) {
	r.queue = append(r.queue, work)
}

func (r *fakeRunner) flush() {
	queue := r.queue
	r.queue = nil
	for _, work := range queue {
		if done := work(context.Background()); done != nil {
			done()
		}
	}
}

type fakeGenerator struct {
	options []string
	err     error
	last    ghost.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req ghost.Request) ([]string, error) {
	g.last = req
	return g.options, g.err
}

// fakePeer records everything sent to it
type fakePeer struct {
	mu     sync.Mutex
	id     string
	sent   []protocol.Message
	closed bool
}

func newFakePeer(id string) *fakePeer {
	return &fakePeer{id: id}
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(msg protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) messages() []protocol.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]protocol.Message(nil), p.sent...)
}

func (p *fakePeer) count(t protocol.MessageType) int {
	n := 0
	for _, m := range p.messages() {
		if m.Type() == t {
			n++
		}
	}
	return n
}

func (p *fakePeer) last() protocol.Message {
	msgs := p.messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func (p *fakePeer) lastSync(t *testing.T) protocol.Sync {
	t.Helper()
	msgs := p.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if s, ok := msgs[i].(protocol.Sync); ok {
			return s
		}
	}
	t.Fatalf("peer %s received no SYNC", p.id)
	return protocol.Sync{}
}

type testRig struct {
	c      *Coordinator
	sched  *fakeScheduler
	runner *fakeRunner
	gen    *fakeGenerator
	events []domain.Event
}

func newRig(t *testing.T, mutate func(*Options)) *testRig {
	t.Helper()
	opts := DefaultOptions()
	opts.RoomCode = "ROOM42"
	opts.HostID = "host"
	opts.HostPersistentID = "p-host"
	opts.Seed = 1
	if mutate != nil {
		mutate(&opts)
	}

	rig := &testRig{
		sched:  &fakeScheduler{},
		runner: &fakeRunner{},
		gen:    &fakeGenerator{options: []string{"one", "two", "three"}},
	}
	rig.c = NewCoordinator(opts, rig.sched, rig.runner, rig.gen, func(e domain.Event) {
		rig.events = append(rig.events, e)
	}, testLogger())
	return rig
}

// join opens a peer and sends JOIN for it
func (r *testRig) join(id, name, persistentID string) *fakePeer {
	p := newFakePeer(id)
	r.c.PeerOpened(p)
	r.c.HandleMessage(id, protocol.Join{DisplayName: name, PersistentID: persistentID})
	return p
}

func (r *testRig) submit(id, text string, source domain.Source) {
	r.c.HandleMessage(id, protocol.SubmitAnswer{Text: text, Source: source})
}

func (r *testRig) vote(voter, target string, guess domain.Guess) {
	r.c.HandleMessage(voter, protocol.SubmitVote{TargetAuthorID: target, Guess: guess})
}

// toInput starts the game and waits out the prompt read delay
func (r *testRig) toInput(t *testing.T) {
	t.Helper()
	if err := r.c.StartGame(); err != nil {
		t.Fatalf("start game: %v", err)
	}
	r.sched.Advance(DefaultReadDelay)
	if r.c.Session().Phase != domain.PhaseInput {
		t.Fatalf("expected INPUT after read delay, got %s", r.c.Session().Phase)
	}
}

func (r *testRig) hasEvent(t domain.EventType) bool {
	for _, e := range r.events {
		if e.Type == t {
			return true
		}
	}
	return false
}
