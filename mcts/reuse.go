package mcts

// ReuseChild detaches root's child for action and returns it as a new,
// parentless root, closing every sibling subtree first. The caller is
// expected to have already applied action to the real environment; the
// returned node's Env already reflects that step, since it was created
// by Env.Copy()+Step() during expansion.
func ReuseChild(root *Node, action int) (*Node, error) {
	child, ok := root.Children[action]
	if !ok {
		return nil, InvariantViolation("mcts: cannot reuse child for action %d: not present among %d children", action, len(root.Children))
	}
	for a, sibling := range root.Children {
		if a == action {
			continue
		}
		sibling.Close()
	}
	child.Detach()
	return child, nil
}
