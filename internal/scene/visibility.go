package scene

// WithHidden hides nodes for the duration of fn and restores each node's
// previous visibility afterwards, including when fn fails or panics.
func WithHidden(nodes []*Node, fn func() error) error {
	saved := make([]bool, len(nodes))
	for i, n := range nodes {
		if n == nil {
			continue
		}
		saved[i] = n.Visible
		n.Visible = false
	}
	defer func() {
		for i := len(nodes) - 1; i >= 0; i-- {
			if nodes[i] != nil {
				nodes[i].Visible = saved[i]
			}
		}
	}()
	return fn()
}
