package arcir

// Postorder returns the blocks reachable from entry, each listed after
// all of its successors. Backward dataflow converges fastest in this
// order.
func Postorder(f *Func) []BlockID {
	if f == nil || f.Block(f.Entry) == nil {
		return nil
	}
	adj := make([][]BlockID, len(f.Blocks))
	for i := range f.Blocks {
		adj[i] = f.Blocks[i].Term.Successors(nil)
	}

	type frame struct {
		id   BlockID
		edge int
	}
	seen := make([]bool, len(f.Blocks))
	order := make([]BlockID, 0, len(f.Blocks))
	stack := []frame{{id: f.Entry}}
	seen[f.Entry] = true
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		if fr.edge < len(adj[fr.id]) {
			next := adj[fr.id][fr.edge]
			fr.edge++
			if next.IsValid() && int(next) < len(f.Blocks) && !seen[next] {
				seen[next] = true
				stack = append(stack, frame{id: next})
			}
			continue
		}
		order = append(order, fr.id)
		stack = stack[:len(stack)-1]
	}
	return order
}
