package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ContentRenderer transforms user-visible text before it is printed,
// e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)

// Invoker runs a nested debot session started with action.
type Invoker func(ctx context.Context, addr domain.Address, action domain.Action) error

// SecretReader reads a secret without echoing it.
type SecretReader func(ctx context.Context) (string, error)

// Terminal implements ports.Browser on a line-oriented reader and writer.
type Terminal struct {
	input   *lineSource
	writer  io.Writer
	out     *termenv.Output
	logger  *slog.Logger
	render  ContentRenderer
	invoker Invoker
	secret  SecretReader

	state domain.StateID
	menu  []domain.Action
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithRenderer renders logged text, e.g. through glamour.
func WithRenderer(r ContentRenderer) TerminalOption {
	return func(t *Terminal) {
		t.render = r
	}
}

// WithInvoker handles Invoke actions. Without it nested sessions are refused.
func WithInvoker(inv Invoker) TerminalOption {
	return func(t *Terminal) {
		t.invoker = inv
	}
}

// WithSecretReader overrides how signing keys are read.
func WithSecretReader(r SecretReader) TerminalOption {
	return func(t *Terminal) {
		t.secret = r
	}
}

// WithTerminalLogger sets the diagnostic logger.
func WithTerminalLogger(logger *slog.Logger) TerminalOption {
	return func(t *Terminal) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTerminal creates a terminal front end. Nil r and w default to Stdin and Stdout.
func NewTerminal(r io.Reader, w io.Writer, opts ...TerminalOption) *Terminal {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	t := &Terminal{
		input:  newLineSource(r),
		writer: w,
		out:    termenv.NewOutput(w),
		logger: logging.NewNop(),
		state:  domain.StateExit,
	}
	t.secret = t.defaultSecretReader(r)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Nested returns a terminal for a nested session. It shares input and output
// with t but keeps its own menu.
func (t *Terminal) Nested() *Terminal {
	child := *t
	child.state = domain.StateExit
	child.menu = nil
	return &child
}

// SetInvoker installs the handler for Invoke actions after construction,
// for invokers that need the terminal itself.
func (t *Terminal) SetInvoker(inv Invoker) {
	t.invoker = inv
}

// Close stops the input pump.
func (t *Terminal) Close() {
	t.input.Close()
}

// State returns the last state the engine switched to.
func (t *Terminal) State() domain.StateID {
	return t.state
}

// Menu returns the actions presented in the current context.
func (t *Terminal) Menu() []domain.Action {
	out := make([]domain.Action, len(t.menu))
	copy(out, t.menu)
	return out
}

func (t *Terminal) SwitchState(ctx context.Context, state domain.StateID) {
	t.logger.Debug("state switched", "state", state.String())
	t.state = state
	t.menu = t.menu[:0]
}

func (t *Terminal) Log(ctx context.Context, msg string) {
	if msg == "" {
		return
	}
	if t.render != nil {
		if rendered, err := t.render(msg); err == nil {
			msg = strings.TrimSpace(rendered)
		}
	}
	fmt.Fprintln(t.writer, msg)
}

func (t *Terminal) ShowAction(ctx context.Context, action domain.Action) {
	t.menu = append(t.menu, action)
}

func (t *Terminal) Input(ctx context.Context, prompt string) (string, error) {
	for {
		fmt.Fprint(t.writer, t.out.String(prompt+": ").Bold())
		line, err := t.input.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		clean, err := SanitizeInput(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(t.writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (t *Terminal) LoadKey(ctx context.Context) (domain.KeyPair, error) {
	for {
		fmt.Fprint(t.writer, t.out.String("Enter secret key: ").Bold())
		secret, err := t.secret(ctx)
		if err != nil {
			return domain.KeyPair{}, err
		}
		kp, err := ParseSecret(secret)
		if err != nil {
			fmt.Fprintf(t.writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return kp, nil
	}
}

func (t *Terminal) InvokeDebot(ctx context.Context, addr domain.Address, action domain.Action) error {
	if t.invoker == nil {
		return domain.ErrNestedSessionUnsupported
	}
	fmt.Fprintln(t.writer, t.out.String("Invoking debot "+string(addr)).Faint())
	err := t.invoker(ctx, addr, action)
	fmt.Fprintln(t.writer, t.out.String("Returned from debot "+string(addr)).Faint())
	return err
}

// PrintMenu writes the numbered menu of presented actions.
func (t *Terminal) PrintMenu() {
	for i, act := range t.menu {
		label := act.Desc
		if label == "" {
			label = act.Name
		}
		num := t.out.String(fmt.Sprintf("%d)", i+1)).Foreground(t.out.Color("#818cf8")).Bold()
		fmt.Fprintf(t.writer, "%s %s\n", num, label)
	}
	fmt.Fprintf(t.writer, "%s %s\n", t.out.String("0)").Faint(), "Quit")
}

// defaultSecretReader hides input when r is an interactive terminal.
func (t *Terminal) defaultSecretReader(r io.Reader) SecretReader {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func(ctx context.Context) (string, error) {
			raw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(t.writer)
			return string(raw), err
		}
	}
	return func(ctx context.Context) (string, error) {
		return t.input.ReadLine(ctx)
	}
}
