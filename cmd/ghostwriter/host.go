package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ghostwriter/internal/app"
	"ghostwriter/internal/config"
	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
	httpTransport "ghostwriter/internal/transport/http"
)

func newHostCmd() *cobra.Command {
	cfg := config.DefaultHost()

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Open a lobby and run the game from this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cfg.RegisterServerFlags(cmd.Flags())
	cfg.RegisterIdentityFlags(cmd.Flags())
	cfg.RegisterLoggingFlags(cmd.Flags())

	return cmd
}

// newGhostService registers every provider; keys come from the config
func newGhostService(cfg *config.Config, logger *slog.Logger) *ghost.Service {
	providers := map[string]ghost.Completer{
		ghost.ProviderGemini:    ghost.NewGemini("", cfg.Ghost.GeminiModel),
		ghost.ProviderOpenAI:    ghost.NewOpenAI("", cfg.Ghost.OpenAIModel),
		ghost.ProviderAnthropic: ghost.NewAnthropic("", cfg.Ghost.AnthropicModel),
		ghost.ProviderOffline:   ghost.NewOffline(time.Now().UnixNano()),
	}
	return ghost.NewService(providers, cfg.APIKeys(), logger)
}

// hostOptions translates configuration into coordinator options
func hostOptions(cfg *config.Config, roomCode, persistentID string) app.Options {
	opts := app.DefaultOptions()
	opts.RoomCode = roomCode
	opts.HostName = cfg.Game.HostName
	opts.HostPersistentID = persistentID
	opts.Theme = cfg.Game.Theme
	opts.MaxRounds = cfg.Game.MaxRounds
	opts.ReadDelay = cfg.Game.ReadDelay
	opts.RevealCadence = cfg.Game.RevealCadence
	opts.ReconnectGrace = cfg.Game.ReconnectGrace
	opts.ChatHistory = cfg.Game.ChatHistory
	opts.Settings = domain.Settings{
		Provider:          cfg.Ghost.Provider,
		RoundDuration:     int(cfg.Game.RoundDuration / time.Second),
		RequirePassword:   cfg.Game.Password != "",
		Password:          cfg.Game.Password,
		EnableWaitingRoom: cfg.Game.WaitingRoom,
	}
	return opts
}

func runHost(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := config.NewLogger(cfg.Logging, os.Stderr)

	if _, ok := app.Themes[cfg.Game.Theme]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTheme, cfg.Game.Theme)
	}

	store, release, err := openIdentity(ctx, cfg.Identity, logger)
	if err != nil {
		return err
	}
	defer release()
	persistentID, err := store.GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	roomCode, err := app.NewRoomCode(cfg.Game.RoomCodeLength)
	if err != nil {
		return err
	}
	host, err := app.NewHost(hostOptions(cfg, roomCode, persistentID), newGhostService(cfg, logger), logger)
	if err != nil {
		return err
	}
	defer host.Close()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	server := httpTransport.NewServer(cfg, host, logger)
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	fmt.Fprintf(out, "Lobby %s is open on %s\n", host.RoomCode(), ln.Addr())
	fmt.Fprintf(out, "Players join with: ghostwriter join --addr <this machine>:%d --room %s\n", cfg.Server.Port, host.RoomCode())
	fmt.Fprintln(out, "Type help for commands.")

	hc := &hostConsole{host: host, out: out}
	go hc.printEvents()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case err := <-serveErr:
			logger.Error("server error", "error", err)
			cancel()
		case <-host.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	return hc.console(in).run(ctx)
}

// hostConsole drives the coordinator from the terminal
type hostConsole struct {
	host *app.Host
	out  io.Writer

	ghost suggestions
}

// printEvents writes host notifications until the host closes
func (h *hostConsole) printEvents() {
	for {
		select {
		case <-h.host.Done():
			return
		case e := <-h.host.Events():
			if e.Type == domain.EventGhostOptions {
				if options, ok := e.Payload.([]string); ok {
					h.ghost.offer(options)
				}
			}
			var snapshot *domain.Session
			_ = h.host.Call(func(c *app.Coordinator) error {
				snapshot = c.Snapshot()
				return nil
			})
			if line := describeEvent(e, snapshot); line != "" {
				fmt.Fprintln(h.out, line)
			}
		}
	}
}

// act runs f on the loop with the current session
func (h *hostConsole) act(f func(c *app.Coordinator) error) error {
	return h.host.Call(f)
}

// say sends a message as the host player
func (h *hostConsole) say(msg protocol.Message) error {
	return h.host.Do(func(c *app.Coordinator) { c.HandleMessage(c.HostID(), msg) })
}

func (h *hostConsole) console(in io.Reader) *console {
	con := newConsole(in, h.out)

	con.add("status", "status", "show the lobby", func(string) error {
		return h.act(func(c *app.Coordinator) error {
			printSession(h.out, c.Session(), c.HostID())
			return nil
		})
	})
	con.add("start", "start", "start the game", func(string) error {
		return h.act(func(c *app.Coordinator) error { return c.StartGame() })
	})
	con.add("advance", "advance", "force the current phase forward", func(string) error {
		return h.act(func(c *app.Coordinator) error { return c.ForceAdvance() })
	})
	con.add("reveal", "reveal", "step the reveal by hand", func(string) error {
		return h.act(func(c *app.Coordinator) error { return c.NextRevealStep() })
	})
	con.add("next", "next", "start the next round", func(string) error {
		return h.act(func(c *app.Coordinator) error { return c.NextRound() })
	})
	con.add("lobby", "lobby", "return everyone to the lobby", func(string) error {
		return h.act(func(c *app.Coordinator) error { return c.ReturnToLobby() })
	})
	con.add("theme", "theme <id>", "switch prompt theme (classic, viral, academia, cyberpunk)", func(args string) error {
		return h.act(func(c *app.Coordinator) error { return c.SetTheme(args) })
	})

	con.add("approve", "approve <n>", "admit a player from the waiting room", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			id, err := pendingRef(c.Session(), args)
			if err != nil {
				return err
			}
			return c.ApprovePending(id)
		})
	})
	con.add("reject", "reject <n>", "turn away a player in the waiting room", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			id, err := pendingRef(c.Session(), args)
			if err != nil {
				return err
			}
			return c.RejectPending(id)
		})
	})
	con.add("kick", "kick <n>", "remove and ban a player", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			id, err := playerRef(c.Session(), args)
			if err != nil {
				return err
			}
			return c.Kick(id)
		})
	})
	con.add("remove", "remove <n>", "remove a player without a ban", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			id, err := playerRef(c.Session(), args)
			if err != nil {
				return err
			}
			return c.Remove(id)
		})
	})

	con.add("password", "password <text|off>", "set or clear the lobby password", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			s := c.Session().Settings
			s.RequirePassword = args != "" && args != "off"
			s.Password = ""
			if s.RequirePassword {
				s.Password = args
			}
			return c.UpdateSettings(s)
		})
	})
	con.add("waiting", "waiting <on|off>", "toggle the waiting room", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			s := c.Session().Settings
			s.EnableWaitingRoom = args == "on"
			return c.UpdateSettings(s)
		})
	})
	con.add("duration", "duration <seconds>", "set the writing time", func(args string) error {
		secs, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("expected seconds: %w", err)
		}
		return h.act(func(c *app.Coordinator) error {
			s := c.Session().Settings
			s.RoundDuration = secs
			return c.UpdateSettings(s)
		})
	})
	con.add("provider", "provider <name>", "ghost provider: offline, gemini, openai, anthropic", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			s := c.Session().Settings
			s.Provider = args
			return c.UpdateSettings(s)
		})
	})

	con.add("answer", "answer <text>", "submit your own answer", func(args string) error {
		return h.say(protocol.SubmitAnswer{Text: args, Source: domain.SourceHuman})
	})
	con.add("ghost", "ghost [agent]", "ask the ghostwriter for suggestions", func(args string) error {
		var theme string
		if err := h.act(func(c *app.Coordinator) error {
			theme = c.Session().Theme
			return nil
		}); err != nil {
			return err
		}
		agent := personaFor(theme, args)
		h.ghost.ask(agent)
		return h.say(protocol.RequestGhost{AgentID: agent})
	})
	con.add("use", "use <n>", "submit a ghost suggestion", func(args string) error {
		text, agent, err := h.ghost.pick(args)
		if err != nil {
			return err
		}
		return h.say(protocol.SubmitAnswer{Text: text, Source: domain.SourceAI, AgentID: agent})
	})
	con.add("vote", "vote <n> <human|bot>", "guess who wrote answer n", func(args string) error {
		return h.act(func(c *app.Coordinator) error {
			vote, err := voteRef(c.Session(), args)
			if err != nil {
				return err
			}
			c.HandleMessage(c.HostID(), vote)
			return nil
		})
	})
	con.add("lock", "lock", "lock in your votes", func(string) error {
		return h.say(protocol.LockVotes{})
	})
	con.add("chat", "chat <text>", "talk to the lobby", func(args string) error {
		return h.say(protocol.ChatMessage{ChatMessage: domain.ChatMessage{Text: args}})
	})
	con.add("react", "react <emote>", "send a reaction", func(args string) error {
		return h.say(protocol.ReactionEmote{Reaction: domain.Reaction{EmoteID: args}})
	})

	return con
}

// playerRef resolves a 1-based roster position or a name
func playerRef(s *domain.Session, ref string) (string, error) {
	if i, err := index(ref, len(s.Players)); err == nil {
		return s.Players[i].ID, nil
	}
	for _, p := range s.Players {
		if strings.EqualFold(p.Name, ref) {
			return p.ID, nil
		}
	}
	return "", domain.ErrPlayerNotFound
}

// pendingRef resolves a 1-based waiting-room position or a name
func pendingRef(s *domain.Session, ref string) (string, error) {
	if i, err := index(ref, len(s.PendingPlayers)); err == nil {
		return s.PendingPlayers[i].ID, nil
	}
	for _, p := range s.PendingPlayers {
		if strings.EqualFold(p.Name, ref) {
			return p.ID, nil
		}
	}
	return "", domain.ErrPlayerNotFound
}

// voteRef parses "<n> <human|bot>" against the current answers
func voteRef(s *domain.Session, args string) (protocol.SubmitVote, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return protocol.SubmitVote{}, errors.New("usage: vote <n> <human|bot>")
	}
	i, err := index(fields[0], len(s.Submissions))
	if err != nil {
		return protocol.SubmitVote{}, err
	}
	guess := domain.Guess(strings.ToUpper(fields[1]))
	if !guess.Valid() {
		return protocol.SubmitVote{}, domain.ErrInvalidGuess
	}
	return protocol.SubmitVote{TargetAuthorID: s.Submissions[i].AuthorID, Guess: guess}, nil
}
