package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/debot/pkg/domain"
)

// ValidateGraph checks a fetched context graph for broken links starting from
// the initial context. Broken links, duplicate ids and unsupported action
// kinds are errors. Contexts no action leads to are returned as unreachable;
// PREV targets are ignored for reachability since they resolve at runtime.
func ValidateGraph(g domain.Graph) ([]uint8, error) {
	var problems []string

	contexts := make(map[uint8]domain.Context, len(g))
	for _, c := range g {
		if _, dup := contexts[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("context #%d declared twice", c.ID))
			continue
		}
		contexts[c.ID] = c
	}
	if _, ok := contexts[0]; !ok {
		problems = append(problems, "initial context #0 is missing")
	}

	for _, c := range g {
		for _, act := range c.Actions {
			if u, ok := act.Kind.(domain.Unsupported); ok {
				problems = append(problems, fmt.Sprintf("context #%d: action %q has unsupported kind %d", c.ID, act.Name, u.Raw))
			}
			if id, ok := act.To.Context(); ok {
				if _, found := contexts[id]; !found {
					problems = append(problems, fmt.Sprintf("context #%d: action %q leads to missing context #%d", c.ID, act.Name, id))
				}
			}
		}
	}

	visited := make(map[uint8]bool)
	queue := []uint8{0}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		c, ok := contexts[id]
		if !ok {
			continue
		}
		for _, act := range c.Actions {
			if next, ok := act.To.Context(); ok && !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var unreachable []uint8
	for id := range contexts {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Slice(unreachable, func(i, j int) bool { return unreachable[i] < unreachable[j] })

	if len(problems) > 0 {
		return unreachable, fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return unreachable, nil
}
