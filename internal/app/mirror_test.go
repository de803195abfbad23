package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []protocol.Message
	closed bool
	onSend func(protocol.Message)
}

func (c *fakeConn) Send(msg protocol.Message) error {
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	hook := c.onSend
	c.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func drain(m *Mirror) []domain.EventType {
	var out []domain.EventType
	for {
		select {
		case e := <-m.Events():
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

func syncedMirror(t *testing.T) (*Mirror, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	m := NewMirror(conn, testLogger())
	s := domain.NewSession("ROOM", domain.DefaultSettings())
	_ = s.AddPlayer(domain.NewPlayer("t-me", "Me", "", 1, false))
	m.Handle(protocol.Sync{Session: s, You: "t-me"})
	return m, conn
}

func TestMirrorReplacesSessionOnSync(t *testing.T) {
	m, _ := syncedMirror(t)
	if m.Self() != "t-me" || m.Session() == nil {
		t.Fatalf("expected synced mirror")
	}

	next := domain.NewSession("ROOM", domain.DefaultSettings())
	next.Phase = domain.PhaseInput
	m.Handle(protocol.Sync{Session: next, You: "t-me"})
	if m.Session().Phase != domain.PhaseInput {
		t.Fatalf("expected mirror replaced wholesale")
	}

	snap := m.Session()
	snap.Phase = domain.PhaseFinish
	if m.Session().Phase != domain.PhaseInput {
		t.Fatalf("callers must not be able to mutate the mirror")
	}
}

func TestMirrorDistinguishesIntentionalClose(t *testing.T) {
	tests := []struct {
		name   string
		notice protocol.Message
		want   domain.EventType
		kicked bool
	}{
		{name: "rejected", notice: protocol.Rejected{Reason: protocol.ReasonNameTaken}, want: domain.EventRejected},
		{name: "auth", notice: protocol.AuthError{Reason: protocol.ReasonBadPassword}, want: domain.EventAuthFailed},
		{name: "kicked", notice: protocol.Kicked{Reason: protocol.ReasonKicked}, want: domain.EventKicked, kicked: true},
		{name: "removed", notice: protocol.Removed{Reason: protocol.ReasonRemoved}, want: domain.EventRemoved},
		{name: "closed", notice: protocol.LobbyClosed{}, want: domain.EventLobbyClosed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := syncedMirror(t)
			drain(m)

			m.Handle(tc.notice)
			m.ConnectionClosed()

			events := drain(m)
			if len(events) != 1 || events[0] != tc.want {
				t.Fatalf("expected only %s, got %v", tc.want, events)
			}
			if m.WasKicked() != tc.kicked {
				t.Fatalf("expected wasKicked=%v", tc.kicked)
			}
			if m.DisconnectReason() == ReasonHostLost {
				t.Fatalf("intentional close reported as lost host")
			}
		})
	}
}

func TestMirrorReportsHostLost(t *testing.T) {
	m, _ := syncedMirror(t)
	drain(m)
	m.ConnectionClosed()

	events := drain(m)
	if len(events) != 1 || events[0] != domain.EventHostLost {
		t.Fatalf("expected HOST_LOST, got %v", events)
	}
	if m.Session() != nil || m.DisconnectReason() != ReasonHostLost {
		t.Fatalf("expected reset mirror with host lost reason")
	}
}

func TestMirrorLobbyClosedResets(t *testing.T) {
	m, _ := syncedMirror(t)
	m.Handle(protocol.ChatMessage{ChatMessage: domain.ChatMessage{ID: "1", SenderID: "x", Text: "hi"}})
	m.Handle(protocol.LobbyClosed{Reason: protocol.ReasonClosed})

	if m.Session() != nil || len(m.Chat()) != 0 || m.Pending() {
		t.Fatalf("expected state reset on LOBBY_CLOSED")
	}
	if m.DisconnectReason() != protocol.ReasonClosed {
		t.Fatalf("unexpected reason %q", m.DisconnectReason())
	}
}

func TestMirrorChat(t *testing.T) {
	m, conn := syncedMirror(t)

	if err := m.SendChat("  hello "); err != nil {
		t.Fatalf("send chat: %v", err)
	}
	sent, ok := conn.sent[len(conn.sent)-1].(protocol.ChatMessage)
	if !ok || sent.Text != "hello" || sent.SenderName != "Me" || sent.ID == "" {
		t.Fatalf("unexpected chat frame %#v", conn.sent[len(conn.sent)-1])
	}

	m.Handle(protocol.ChatMessage{ChatMessage: domain.ChatMessage{ID: "o1", SenderID: "t-other", Text: "yo"}})
	m.Handle(protocol.ChatMessage{ChatMessage: domain.ChatMessage{ID: "o1", SenderID: "t-other", Text: "yo"}})
	if len(m.Chat()) != 2 {
		t.Fatalf("expected own line plus one relayed line, got %d", len(m.Chat()))
	}

	m.Handle(protocol.ChatDeleteUser{UserID: "t-other"})
	chat := m.Chat()
	if len(chat) != 1 || chat[0].SenderID != "t-me" {
		t.Fatalf("expected only own chat after purge, got %+v", chat)
	}

	if err := m.SendChat("   "); !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if err := m.React("human"); !errors.Is(err, domain.ErrUnknownEmote) {
		t.Fatalf("expected locked emote refused, got %v", err)
	}
}

func TestMirrorPendingUntilSync(t *testing.T) {
	conn := &fakeConn{}
	m := NewMirror(conn, testLogger())
	if err := m.Join("Zed", "", "p-zed"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if j, ok := conn.sent[0].(protocol.Join); !ok || j.PersistentID != "p-zed" {
		t.Fatalf("unexpected join frame %#v", conn.sent[0])
	}
	if err := m.SendChat("hi"); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("expected ErrNotJoined before sync, got %v", err)
	}

	m.Handle(protocol.Pending{Message: protocol.ReasonWaiting})
	if !m.Pending() {
		t.Fatalf("expected pending")
	}
	m.Handle(protocol.Sync{Session: domain.NewSession("R", domain.DefaultSettings()), You: "t-zed"})
	if m.Pending() {
		t.Fatalf("sync should end the wait")
	}
}

func TestMirrorRequestGhost(t *testing.T) {
	conn := &fakeConn{}
	m := NewMirror(conn, testLogger())
	conn.onSend = func(msg protocol.Message) {
		if _, ok := msg.(protocol.RequestGhost); ok {
			go m.Handle(protocol.GhostOptions{Options: []string{"x", "y", "z"}})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := m.RequestGhost(ctx, "prompt", "wiki", "")
	if err != nil {
		t.Fatalf("request ghost: %v", err)
	}
	if len(got) != 3 || got[0] != "x" {
		t.Fatalf("unexpected options %v", got)
	}

	conn.onSend = func(msg protocol.Message) {
		if _, ok := msg.(protocol.RequestGhost); ok {
			go m.Handle(protocol.GhostError{Message: "Quota exceeded."})
		}
	}
	if _, err := m.RequestGhost(ctx, "prompt", "wiki", ""); !errors.Is(err, ErrGhostFailed) {
		t.Fatalf("expected ErrGhostFailed, got %v", err)
	}

	conn.onSend = nil
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if _, err := m.RequestGhost(short, "prompt", "wiki", ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestMirrorLeave(t *testing.T) {
	m, conn := syncedMirror(t)
	drain(m)
	if err := m.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	m.ConnectionClosed()
	if !conn.closed || m.Session() != nil {
		t.Fatalf("expected closed connection and reset mirror")
	}
	if events := drain(m); len(events) != 0 {
		t.Fatalf("leaving must not report a lost host, got %v", events)
	}
}
