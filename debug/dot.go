// Package debug renders a search tree for inspection: ExportDOT produces
// a DOT string a caller can feed to any graphviz renderer.
package debug

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/portstow/az/mcts"
)

// ExportDOT walks the subtree rooted at root and renders it as a DOT
// graph. Each node is labeled with its action, visit count and mean
// action value; pruned nodes are rendered gray.
func ExportDOT(root *mcts.Node) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("tree"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	var walk func(n *mcts.Node, id string) error
	walk = func(n *mcts.Node, id string) error {
		attrs := map[string]string{
			"label": fmt.Sprintf("\"a=%d n=%d q=%.3f\"", n.Action, n.N, n.QSA()),
		}
		if n.Pruned {
			attrs["style"] = "filled"
			attrs["fillcolor"] = "gray"
		}
		if err := g.AddNode("tree", id, attrs); err != nil {
			return err
		}
		for _, a := range sortedActions(n.Children) {
			c := n.Children[a]
			childID := fmt.Sprintf("%s_%d", id, a)
			if err := walk(c, childID); err != nil {
				return err
			}
			if err := g.AddEdge(id, childID, true, nil); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, "root"); err != nil {
		return "", err
	}
	return g.String(), nil
}

func sortedActions(children map[int]*mcts.Node) []int {
	actions := make([]int, 0, len(children))
	for a := range children {
		actions = append(actions, a)
	}
	for i := 1; i < len(actions); i++ {
		for j := i; j > 0 && actions[j-1] > actions[j]; j-- {
			actions[j-1], actions[j] = actions[j], actions[j-1]
		}
	}
	return actions
}
