package ws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ghostwriter/internal/app"
	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHost(t *testing.T) (*app.Host, *httptest.Server) {
	t.Helper()
	return startHostWith(t, app.DefaultOptions())
}

func startHostWith(t *testing.T, opts app.Options) (*app.Host, *httptest.Server) {
	t.Helper()
	logger := testLogger()
	gen := ghost.NewService(map[string]ghost.Completer{ghost.ProviderOffline: ghost.NewOffline(1)}, nil, logger)
	host, err := app.NewHost(opts, gen, logger)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	srv := httptest.NewServer(NewHandler(host, logger))
	t.Cleanup(func() {
		srv.Close()
		host.Close()
	})
	return host, srv
}

func connect(t *testing.T, srv *httptest.Server, roomCode string) (*app.Mirror, chan struct{}) {
	t.Helper()
	addr := strings.TrimPrefix(srv.URL, "http://")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, JoinURL(addr, roomCode), testLogger())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	mirror := app.NewMirror(client, testLogger())
	done := make(chan struct{})
	go func() {
		client.Run(mirror)
		close(done)
	}()
	return mirror, done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestJoinReceivesSync(t *testing.T) {
	host, srv := startHost(t)
	mirror, _ := connect(t, srv, strings.ToLower(host.RoomCode()))

	if err := mirror.Join("Alice", "", "pid-alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitFor(t, "sync", func() bool { return mirror.Self() != "" })

	s := mirror.Session()
	if s.RoomCode != host.RoomCode() {
		t.Fatalf("expected room %s, got %s", host.RoomCode(), s.RoomCode)
	}
	if len(s.Players) != 2 {
		t.Fatalf("expected host and alice, got %d players", len(s.Players))
	}

	info, err := host.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Players != 2 {
		t.Fatalf("host sees %d players", info.Players)
	}
}

func TestLobbyClosedReachesClient(t *testing.T) {
	host, srv := startHost(t)
	mirror, done := connect(t, srv, host.RoomCode())
	if err := mirror.Join("Bob", "", ""); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitFor(t, "sync", func() bool { return mirror.Self() != "" })

	host.Close()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("client connection did not close")
	}
	if got := mirror.DisconnectReason(); got != protocol.ReasonClosed {
		t.Fatalf("expected %q, got %q", protocol.ReasonClosed, got)
	}
	if mirror.Session() != nil {
		t.Fatal("expected the session to be cleared")
	}
}

func TestKickIsDeliveredBeforeClose(t *testing.T) {
	host, srv := startHost(t)
	mirror, done := connect(t, srv, host.RoomCode())
	if err := mirror.Join("Carol", "", ""); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitFor(t, "sync", func() bool { return mirror.Self() != "" })

	id := mirror.Self()
	if err := host.Call(func(c *app.Coordinator) error { return c.Kick(id) }); err != nil {
		t.Fatalf("Kick: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("client connection did not close")
	}
	if !mirror.WasKicked() {
		t.Fatal("expected the client to know it was kicked")
	}
}

func TestDisconnectMakesZombie(t *testing.T) {
	host, srv := startHost(t)
	mirror, done := connect(t, srv, host.RoomCode())
	if err := mirror.Join("Dave", "", "pid-dave"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitFor(t, "sync", func() bool { return mirror.Self() != "" })
	id := mirror.Self()

	if err := mirror.Leave(); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	<-done

	waitFor(t, "zombie", func() bool {
		var zombie bool
		_ = host.Call(func(c *app.Coordinator) error {
			p, ok := c.Session().Player(id)
			zombie = ok && !p.IsConnected()
			return nil
		})
		return zombie
	})
}

func TestUnknownRoomIsRejected(t *testing.T) {
	_, srv := startHost(t)
	addr := strings.TrimPrefix(srv.URL, "http://")
	if _, err := Dial(context.Background(), JoinURL(addr, "NOPE00"), testLogger()); err == nil {
		t.Fatal("expected dial to fail")
	}

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a room code, got %d", resp.StatusCode)
	}
}

func TestFullVotingRoundOverWebsocket(t *testing.T) {
	opts := app.DefaultOptions()
	opts.ReadDelay = 10 * time.Millisecond
	opts.Settings.RoundDuration = 600
	host, srv := startHostWith(t, opts)

	const players = 8
	mirrors := make([]*app.Mirror, players)
	dones := make([]chan struct{}, players)
	for i := range mirrors {
		mirrors[i], dones[i] = connect(t, srv, host.RoomCode())
		if err := mirrors[i].Join(fmt.Sprintf("Player%d", i), "", fmt.Sprintf("pid-%d", i)); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}
	for i, m := range mirrors {
		waitFor(t, fmt.Sprintf("player %d admitted", i), func() bool { return m.Self() != "" })
	}

	if err := host.Call(func(c *app.Coordinator) error { return c.StartGame() }); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	for i, m := range mirrors {
		waitFor(t, fmt.Sprintf("player %d in INPUT", i), func() bool {
			s := m.Session()
			return s != nil && s.Phase == domain.PhaseInput
		})
	}

	// answers near the length cap push every SYNC well past one host frame
	for i, m := range mirrors {
		text := strings.Repeat(fmt.Sprintf("%d words ", i), domain.MaxAnswerLen/8)
		if err := m.SubmitAnswer(text, domain.SourceHuman, ""); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
	}
	err := host.Call(func(c *app.Coordinator) error {
		c.HandleMessage(host.HostID(), protocol.SubmitAnswer{Text: strings.Repeat("beep ", 90), Source: domain.SourceAI, AgentID: "robot"})
		return nil
	})
	if err != nil {
		t.Fatalf("host answer: %v", err)
	}

	for i, m := range mirrors {
		waitFor(t, fmt.Sprintf("player %d in VOTING", i), func() bool {
			s := m.Session()
			return s != nil && s.Phase == domain.PhaseVoting && len(s.Submissions) == players+1
		})
	}

	for _, m := range mirrors {
		self := m.Self()
		for _, sub := range m.Session().Submissions {
			if sub.AuthorID == self {
				continue
			}
			if err := m.Vote(sub.AuthorID, domain.GuessHuman); err != nil {
				t.Fatalf("Vote: %v", err)
			}
		}
	}
	waitFor(t, "every vote recorded", func() bool {
		votes := 0
		_ = host.Call(func(c *app.Coordinator) error {
			for _, sub := range c.Session().Submissions {
				votes += len(sub.Votes)
			}
			return nil
		})
		return votes == players*players
	})

	for i, m := range mirrors {
		select {
		case <-dones[i]:
			t.Fatalf("player %d lost the host: %q", i, m.DisconnectReason())
		default:
		}
		if len(m.Session().Players) != players+1 {
			t.Fatalf("player %d sees %d players", i, len(m.Session().Players))
		}
	}
}
