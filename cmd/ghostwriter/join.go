package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ghostwriter/internal/app"
	"ghostwriter/internal/config"
	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/transport/ws"
)

const ghostTimeout = 30 * time.Second

type joinFlags struct {
	url      string
	addr     string
	room     string
	name     string
	password string
}

func newJoinCmd() *cobra.Command {
	cfg := config.Default()
	var jf joinFlags

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a lobby as a player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runJoin(cmd.Context(), cfg, jf, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&jf.url, "url", "", "invite link from the host (env: GHOSTWRITER_URL)")
	fs.StringVar(&jf.addr, "addr", "localhost:8080", "host address, used with --room (env: GHOSTWRITER_ADDR)")
	fs.StringVar(&jf.room, "room", "", "room code (env: GHOSTWRITER_ROOM)")
	fs.StringVarP(&jf.name, "name", "n", "", "display name (env: GHOSTWRITER_NAME)")
	fs.StringVar(&jf.password, "password", "", "lobby password (env: GHOSTWRITER_PASSWORD)")
	cfg.RegisterIdentityFlags(fs)
	cfg.RegisterLoggingFlags(fs)

	return cmd
}

func runJoin(ctx context.Context, cfg *config.Config, jf joinFlags, in io.Reader, out io.Writer) error {
	logger := config.NewLogger(cfg.Logging, os.Stderr)

	target := jf.url
	if target == "" {
		if jf.room == "" {
			return errors.New("either --url or --room is required")
		}
		target = ws.JoinURL(jf.addr, strings.ToUpper(jf.room))
	}
	if strings.TrimSpace(jf.name) == "" {
		return errors.New("--name is required")
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

	dialCtx, cancelDial := context.WithTimeout(ctx, 10*time.Second)
	client, err := ws.Dial(dialCtx, target, logger)
	cancelDial()
	if err != nil {
		return err
	}

	mirror := app.NewMirror(client, logger)
	closed := make(chan struct{})
	go func() {
		client.Run(mirror)
		close(closed)
	}()
	defer func() {
		_ = mirror.Leave()
		<-closed
	}()

	if err := mirror.Join(jf.name, jf.password, persistentID); err != nil {
		return err
	}
	fmt.Fprintln(out, "Connecting... type help for commands.")

	pc := &playerConsole{mirror: mirror, out: out}
	go pc.printEvents(closed)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := pc.console(ctx, in).run(ctx); err != nil {
		return err
	}
	if reason := mirror.DisconnectReason(); reason != "" {
		fmt.Fprintln(out, "Disconnected:", reason)
	}
	return nil
}

// playerConsole drives a mirror from the terminal
type playerConsole struct {
	mirror *app.Mirror
	out    io.Writer

	ghost suggestions
}

func (p *playerConsole) printEvents(closed <-chan struct{}) {
	for {
		select {
		case <-closed:
			return
		case e := <-p.mirror.Events():
			if line := describeEvent(e, p.mirror.Session()); line != "" {
				fmt.Fprintln(p.out, line)
			}
		}
	}
}

func (p *playerConsole) requestGhost(ctx context.Context, agent, persona string) error {
	ctx, cancel := context.WithTimeout(ctx, ghostTimeout)
	defer cancel()
	p.ghost.ask(agent)
	options, err := p.mirror.RequestGhost(ctx, "", agent, persona)
	if err != nil {
		return err
	}
	p.ghost.offer(options)
	fmt.Fprintln(p.out, "use <n> to submit one")
	return nil
}

func (p *playerConsole) session() (*domain.Session, error) {
	s := p.mirror.Session()
	if s == nil {
		return nil, app.ErrNotJoined
	}
	return s, nil
}

func (p *playerConsole) console(ctx context.Context, in io.Reader) *console {
	con := newConsole(in, p.out)
	m := p.mirror

	con.add("status", "status", "show the lobby", func(string) error {
		printSession(p.out, m.Session(), m.Self())
		return nil
	})
	con.add("answer", "answer <text>", "submit your answer", func(args string) error {
		return m.SubmitAnswer(args, domain.SourceHuman, "")
	})
	con.add("ghost", "ghost [agent]", "ask the ghostwriter for suggestions", func(args string) error {
		s, err := p.session()
		if err != nil {
			return err
		}
		return p.requestGhost(ctx, personaFor(s.Theme, args), "")
	})
	con.add("persona", "persona <text>", "ask the ghostwriter in a custom voice", func(args string) error {
		return p.requestGhost(ctx, ghost.CustomAgent, args)
	})
	con.add("use", "use <n>", "submit a ghost suggestion", func(args string) error {
		text, agent, err := p.ghost.pick(args)
		if err != nil {
			return err
		}
		return m.SubmitAnswer(text, domain.SourceAI, agent)
	})
	con.add("vote", "vote <n> <human|bot>", "guess who wrote answer n", func(args string) error {
		s, err := p.session()
		if err != nil {
			return err
		}
		vote, err := voteRef(s, args)
		if err != nil {
			return err
		}
		return m.Vote(vote.TargetAuthorID, vote.Guess)
	})
	con.add("lock", "lock", "lock in your votes", func(string) error {
		return m.LockVotes()
	})
	con.add("chat", "chat <text>", "talk to the lobby", func(args string) error {
		return m.SendChat(args)
	})
	con.add("react", "react <emote>", "send a reaction (heart, laugh, fire, ghost, ai, thumbs_up)", func(args string) error {
		return m.React(args)
	})
	con.add("rename", "rename <name>", "change your name in the lobby", func(args string) error {
		return m.Rename(args)
	})
	con.add("avatar", "avatar <n>", "pick a free avatar slot", func(args string) error {
		n, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("expected a slot number: %w", err)
		}
		return m.SetAvatar(n)
	})

	return con
}
