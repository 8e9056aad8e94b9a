package dag

import (
	"fmt"
	"sort"
)

// TopoOrder returns the nodes in a deterministic topological order: every
// node appears after all of its dependencies, ties broken by address. The
// graph must already have passed cycle detection.
func (g *Graph) TopoOrder() ([]*Node, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for id, node := range g.Nodes {
		inDegree[id] = len(node.Deps)
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]*Node, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		node := g.Nodes[id]
		order = append(order, node)

		var unlocked []string
		for depID := range node.Dependents {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				unlocked = append(unlocked, depID)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("graph contains a cycle: ordered %d of %d nodes", len(order), len(g.Nodes))
	}
	return order, nil
}

// ReverseTopoOrder returns TopoOrder reversed; dependents come before their
// dependencies. This is the teardown order.
func (g *Graph) ReverseTopoOrder() ([]*Node, error) {
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
