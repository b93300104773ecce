package searcher

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"sparseplan/planning"
)

// Graphviz renders the search tree rooted at this node as a Graphviz DOT
// graph for visualization. States become decision nodes, tried actions
// become boxes, and the edge widths scale with the visit counts. Children
// reached only through simulation are omitted. The renderer is a read-only
// consumer of the tree.
func (n *Node) Graphviz() string {
	var b strings.Builder
	b.WriteString("graph sparseplan {\n")
	n.graphviz(&b, "0")
	b.WriteString("}\n")
	return b.String()
}

// WriteGraphviz writes the DOT rendering to w.
func (n *Node) WriteGraphviz(w io.Writer) error {
	_, err := io.WriteString(w, n.Graphviz())
	return err
}

func (n *Node) graphviz(b *strings.Builder, name string) {
	atoms := make([]string, 0, len(n.state))
	for _, a := range n.state.Atoms() {
		atoms = append(atoms, string(a))
	}
	fmt.Fprintf(b, "  decision_node%s [label=\"%s\\n%0.2f,%d\"]\n",
		name, strings.Join(atoms, ", "), n.utility, n.visits)

	next := 0
	for _, action := range n.triedOrder {
		fmt.Fprintf(b, "  action_node%s%s [label=%q, shape=box]\n", name, action.Name, action.Name)
		for _, key := range n.childEdges(action) {
			childName := fmt.Sprintf("%s_%d", name, next)
			n.children[key].graphviz(b, childName)
			fmt.Fprintf(b, "  action_node%s%s -- decision_node%s [style=dashed, label=%q]\n",
				name, action.Name, childName, key.effect.String())
			next++
		}
	}
	for _, action := range n.triedOrder {
		stats := n.tried[action]
		fmt.Fprintf(b, "  decision_node%s -- action_node%s%s [label=\"%0.2f,%d\", penwidth=\"%0.2f\"]\n",
			name, name, action.Name, stats.Reward, stats.Visits,
			math.Pow(float64(stats.Visits), 0.25))
	}
}

// childEdges returns the node's edges for one action in a stable order.
func (n *Node) childEdges(action *planning.Action) []edge {
	var edges []edge
	for key := range n.children {
		if key.action == action {
			edges = append(edges, key)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].effect.String() < edges[j].effect.String()
	})
	return edges
}
