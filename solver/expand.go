package solver

// Expand returns the legal children of s. Combine children come first, in
// Operators order, followed by one push child per pool position. The order
// is deterministic and decides which state wins a tie in Solve.
//
// A combine child pops right then left from the stack and pushes
// left <op> right. Mirrored commutative pairs, negative differences and
// inexact quotients are never emitted; any value they would lead to is
// reachable through a legal path anyway.
func (s *State) Expand() []*State {
	children := make([]*State, 0, len(Operators)+len(s.pool))

	if n := len(s.stack); n >= 2 {
		left, right := s.stack[n-2], s.stack[n-1]
		for _, o := range Operators {
			v, ok := o.Apply(left, right)
			if !ok {
				continue
			}
			stack := make([]int, n-1)
			copy(stack, s.stack[:n-2])
			stack[n-2] = v
			children = append(children, s.child(CombineOp(o), stack, s.pool))
		}
	}

	for i, tile := range s.pool {
		pool := make([]int, 0, len(s.pool)-1)
		pool = append(pool, s.pool[:i]...)
		pool = append(pool, s.pool[i+1:]...)

		stack := make([]int, len(s.stack)+1)
		copy(stack, s.stack)
		stack[len(s.stack)] = tile
		children = append(children, s.child(PushOp(tile), stack, pool))
	}
	return children
}

// child builds a successor. The pool slice may be shared with s since
// neither state ever writes to it.
func (s *State) child(op Operation, stack, pool []int) *State {
	return &State{
		parent: s,
		op:     op,
		stack:  stack,
		pool:   pool,
		depth:  s.depth + 1,
	}
}
