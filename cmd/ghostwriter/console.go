package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ghostwriter/internal/ghost"
)

// errQuit ends the console loop
var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	run   func(args string) error
}

// console reads one command per line and dispatches it by its first word
type console struct {
	in       io.Reader
	out      io.Writer
	commands map[string]command
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: in, out: out, commands: map[string]command{}}
	c.add("help", "help", "list commands", func(string) error {
		c.printHelp()
		return nil
	})
	c.add("quit", "quit", "leave", func(string) error { return errQuit })
	return c
}

func (c *console) add(name, usage, help string, run func(args string) error) {
	c.commands[name] = command{usage: usage, help: help, run: run}
}

func (c *console) printHelp() {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(c.out, "  %-28s %s\n", cmd.usage, cmd.help)
	}
}

// run reads commands until quit, end of input, or ctx ends
func (c *console) run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			if err := c.dispatch(line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintln(c.out, "!", err)
			}
		}
	}
}

func (c *console) dispatch(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, args, _ := strings.Cut(line, " ")
	cmd, ok := c.commands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return cmd.run(strings.TrimSpace(args))
}

// index parses a 1-based list position
func index(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("expected a number between 1 and %d", n)
	}
	return i - 1, nil
}

// suggestions remembers the last ghost options and the persona that wrote
// them, so a picked option is submitted with its agent id.
type suggestions struct {
	mu      sync.Mutex
	agent   string
	options []string
}

// ask records the persona of an outstanding request and drops old options
func (s *suggestions) ask(agent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = agent
	s.options = nil
}

func (s *suggestions) offer(options []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = options
}

// pick returns the 1-based option arg and its persona
func (s *suggestions) pick(arg string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := index(arg, len(s.options))
	if err != nil {
		return "", "", err
	}
	return s.options[i], s.agent, nil
}

// personaFor defaults an empty agent to the theme's first persona
func personaFor(theme, agent string) string {
	if agent = strings.TrimSpace(agent); agent != "" {
		return agent
	}
	if personas := ghost.Personas[theme]; len(personas) > 0 {
		return personas[0].ID
	}
	return agent
}
