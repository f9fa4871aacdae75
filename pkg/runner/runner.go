package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
)

// Session is the engine surface the runner drives.
type Session interface {
	Start(ctx context.Context) error
	Resume(ctx context.Context) error
	ExecuteAction(ctx context.Context, act domain.Action) error
	CurrentState() domain.StateID
	SessionID() string
}

// Runner drives a debot session from a Terminal: it prints the menu of the
// current context, reads the user's choice and executes it until the session exits.
type Runner struct {
	term    *Terminal
	logger  *slog.Logger
	resume  bool
	locker  ports.SessionLocker
	lockTTL time.Duration
	banner  string
}

// New creates a runner bound to term.
func New(term *Terminal, opts ...Option) *Runner {
	r := &Runner{
		term:    term,
		logger:  logging.NewNop(),
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts (or resumes) the session and loops until it exits, the input is
// exhausted or ctx is cancelled. Input exhaustion is not an error.
func (r *Runner) Run(ctx context.Context, s Session) (err error) {
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, s.SessionID(), r.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock session %s: %w", s.SessionID(), err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				r.logger.Warn("failed to release session lock", "session_id", s.SessionID(), "err", uerr)
			}
		}()
	}

	if r.banner != "" {
		fmt.Fprintln(r.term.writer, r.banner)
	}

	if r.resume {
		r.logger.Info("resuming session", "session_id", s.SessionID())
		err = s.Resume(ctx)
	} else {
		r.logger.Info("starting session", "session_id", s.SessionID())
		err = s.Start(ctx)
	}
	if err != nil {
		return err
	}
	return r.Loop(ctx, s)
}

// Loop presents menus for an already started session.
func (r *Runner) Loop(ctx context.Context, s Session) error {
	for !s.CurrentState().IsExit() {
		if err := ctx.Err(); err != nil {
			return err
		}
		menu := r.term.Menu()
		if len(menu) == 0 {
			r.logger.Warn("context has no interactive actions", "state", s.CurrentState().String())
			return nil
		}
		r.term.PrintMenu()

		choice, err := r.term.Input(ctx, "Select action")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		act, quit, ok := pick(menu, choice)
		if quit {
			r.logger.Info("session left by user", "session_id", s.SessionID(), "state", s.CurrentState().String())
			return nil
		}
		if !ok {
			fmt.Fprintf(r.term.writer, "Invalid choice %q. Enter a number between 0 and %d.\n", choice, len(menu))
			continue
		}

		if err := s.ExecuteAction(ctx, act); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("action failed", "action", act.Name, "err", err)
			r.term.Log(ctx, "Error: "+err.Error())
		}
	}
	return nil
}

func pick(menu []domain.Action, choice string) (domain.Action, bool, bool) {
	switch strings.ToLower(choice) {
	case "0", "exit", "quit", "q":
		return domain.Action{}, true, false
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(menu) {
		return domain.Action{}, false, false
	}
	return menu[n-1], false, true
}
