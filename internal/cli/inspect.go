package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/debot"
	"github.com/aretw0/debot/internal/presentation/graph"
	"github.com/aretw0/debot/internal/validator"
	"github.com/aretw0/debot/pkg/adapters/fixture"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/runner"
)

// InspectOptions selects the debot whose graph is inspected.
type InspectOptions struct {
	Fixture string
	Addr    string
	ABIPath string

	// SessionID highlights a stored session on the graph.
	SessionID string
	Store     StoreOptions
}

// fetchGraph loads the context graph through a quiet engine, the same way a
// session would.
func fetchGraph(ctx context.Context, opts InspectOptions) (domain.Graph, error) {
	service, err := fixture.Load(opts.Fixture)
	if err != nil {
		return nil, err
	}
	addr := opts.Addr
	if addr == "" {
		addr = string(service.Entry())
	}

	term := runner.NewTerminal(strings.NewReader(""), io.Discard)
	defer term.Close()

	var engineOpts []debot.Option
	if opts.ABIPath != "" {
		abi, err := os.ReadFile(opts.ABIPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read abi: %w", err)
		}
		engineOpts = append(engineOpts, debot.WithABI(string(abi)))
	}
	engine, err := debot.New(addr, service, term, engineOpts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Fetch(ctx); err != nil {
		return nil, err
	}
	return engine.Graph(), nil
}

// PrintGraph writes the Mermaid flowchart of the debot context graph.
func PrintGraph(ctx context.Context, w io.Writer, opts InspectOptions) error {
	g, err := fetchGraph(ctx, opts)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if opts.SessionID != "" {
		conn, err := openStore(ctx, opts.Store)
		if err != nil {
			return fmt.Errorf("highlighting a session: %w", err)
		}
		defer conn.close()
		cp, err := conn.raw.Load(ctx, opts.SessionID)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{Current: cp.Current, Previous: cp.Previous}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(g, overlay))
	return err
}

// Validate checks the debot context graph and reports unreachable contexts.
func Validate(ctx context.Context, w io.Writer, opts InspectOptions) error {
	g, err := fetchGraph(ctx, opts)
	if err != nil {
		return err
	}
	unreachable, err := validator.ValidateGraph(g)
	for _, id := range unreachable {
		fmt.Fprintf(w, "warning: context #%d is unreachable\n", id)
	}
	if err != nil {
		return err
	}
	printSystemMessage(w, "%d contexts, graph is valid.", len(g))
	return nil
}
