package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/debot/internal/presentation/graph"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func action(name, desc string, code uint8, to domain.StateID, attrs string) domain.Action {
	return domain.NewAction(name, desc, to, code, attrs, "")
}

func sample() domain.Graph {
	return domain.Graph{
		{ID: 0, Desc: "Main", Actions: []domain.Action{
			action("Hello", "", domain.CodePrint, domain.StateCurrent, "instant"),
			action("wallet", "Wallet", domain.CodeGoto, domain.ContextID(2), ""),
			action("quit", "Quit \"now\"", domain.CodeGoto, domain.StateExit, ""),
		}},
		{ID: 2, Actions: []domain.Action{
			action("back", "Back", domain.CodeGoto, domain.StatePrev, ""),
		}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(sample(), nil)

	tests := []struct {
		name     string
		contains string
	}{
		{"Initial context shape", `ctx0(("#0 Main"))`},
		{"Context shape", `ctx2["#2"]`},
		{"Instant edge", `ctx0 -. "Hello (print)" .-> ctx0`},
		{"Presented edge", `ctx0 -- "Wallet (goto)" --> ctx2`},
		{"Quotes escaped", `ctx0 -- "Quit 'now' (goto)" --> exit`},
		{"Exit node", `exit(["EXIT"])`},
		{"Prev edge", `ctx2 -. "Back (goto)" .-> prev`},
		{"Prev marker", `prev{{"previous context"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	t.Run("Current and previous", func(t *testing.T) {
		out := graph.GenerateMermaid(sample(), &graph.Overlay{Current: domain.ContextID(2), Previous: domain.StateZero})
		assert.Contains(t, out, "class ctx2 current;")
		assert.Contains(t, out, "class ctx0 previous;")
	})

	t.Run("Exited session", func(t *testing.T) {
		out := graph.GenerateMermaid(sample(), &graph.Overlay{Current: domain.StateExit, Previous: domain.ContextID(2)})
		assert.Contains(t, out, "class exit current;")
		assert.Contains(t, out, "class ctx2 previous;")
	})

	t.Run("Same state is only current", func(t *testing.T) {
		out := graph.GenerateMermaid(sample(), &graph.Overlay{Current: domain.StateZero, Previous: domain.StateZero})
		assert.Contains(t, out, "class ctx0 current;")
		assert.NotContains(t, out, "previous;")
	})
}
