// Package console implements the line-oriented command interpreter used to
// create, inspect, change and delete records held by a registry.
//
// Example usage:
//
//	reg := registry.New("file.json")
//	if err := reg.Reload(); err != nil {
//	    log.Fatal(err)
//	}
//	c := console.New(reg, console.WithInteractive(console.IsTerminal(os.Stdin)))
//	defer c.Close()
//	if err := c.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Zytronium/atlas-airbnb-clone/internal/registry"
	"github.com/Zytronium/atlas-airbnb-clone/internal/sqlite"
)

// Console reads commands one line at a time and applies them to a registry.
type Console struct {
	reg         *registry.Registry
	index       *sqlite.Index
	reader      io.Reader
	writer      io.Writer
	logger      *slog.Logger
	interactive bool
}

// Option configures a Console.
type Option func(*Console)

// WithInput sets the command source (default os.Stdin).
func WithInput(r io.Reader) Option {
	return func(c *Console) {
		c.reader = r
	}
}

// WithOutput sets the output writer (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		c.writer = w
	}
}

// WithLogger sets the logger for command failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInteractive enables the intro banner and the styled prompt.
func WithInteractive(on bool) Option {
	return func(c *Console) {
		c.interactive = on
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New creates a console over reg.
func New(reg *registry.Registry, opts ...Option) *Console {
	c := &Console{
		reg:    reg,
		reader: os.Stdin,
		writer: os.Stdout,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the query index, if one was opened.
func (c *Console) Close() error {
	if c.index == nil {
		return nil
	}
	err := c.index.Close()
	c.index = nil
	return err
}

// Run reads and executes commands until quit, exit, end of input or
// cancellation of ctx.
func (c *Console) Run(ctx context.Context) error {
	if c.interactive {
		fmt.Fprintln(c.writer, introStyle.Render(intro))
	}

	// bufio.Reader has no line length limit, so one long update cannot end
	// the session.
	reader := bufio.NewReader(c.reader)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(c.writer, c.prompt())
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading commands: %w", err)
		}
		if line == "" && err != nil {
			// Keep the shell prompt off our last line.
			fmt.Fprintln(c.writer)
			return nil
		}

		if c.Execute(line) {
			return nil
		}
	}
}

func (c *Console) prompt() string {
	if c.interactive {
		return promptStyle.Render("(hbnb)") + " "
	}
	return plainPrompt
}

// Execute runs a single command line and reports whether the session should
// end.
func (c *Console) Execute(line string) bool {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	name, args := fields[0], fields[1:]
	if name == "?" {
		name = "help"
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(c.writer, "*** Unknown syntax: %s\n", line)
		return false
	}
	return cmd.run(c, args)
}

// println writes one line of output.
func (c *Console) println(a ...any) {
	fmt.Fprintln(c.writer, a...)
}
