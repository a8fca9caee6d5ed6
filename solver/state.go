package solver

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var ErrNoValue = errors.New("state does not hold exactly one value")

// OpKind tags the variant held by an Operation.
type OpKind uint8

const (
	// OpNone is only ever held by a root state.
	OpNone OpKind = iota
	OpPush
	OpCombine
)

// Operation is what turned a parent state into its child: either a tile
// pushed onto the stack, or an operator combining the top two values.
type Operation struct {
	Kind     OpKind
	Tile     int
	Operator Operator
}

func PushOp(tile int) Operation {
	return Operation{Kind: OpPush, Tile: tile}
}

func CombineOp(o Operator) Operation {
	return Operation{Kind: OpCombine, Operator: o}
}

func (op Operation) String() string {
	switch op.Kind {
	case OpPush:
		return strconv.Itoa(op.Tile)
	case OpCombine:
		return op.Operator.Symbol()
	}
	return ""
}

// State is a node in the search tree: a partially evaluated postfix
// expression and the tiles not yet used. States are never modified after
// they are built, so children may share a parent freely.
type State struct {
	parent *State
	op     Operation
	stack  []int
	pool   []int
	depth  int
}

// Root returns the initial state for the given tiles: empty stack, every
// tile still in the pool.
func Root(tiles []int) *State {
	pool := make([]int, len(tiles))
	copy(pool, tiles)
	return &State{
		stack: []int{},
		pool:  pool,
	}
}

func (s *State) HasValue() bool {
	return len(s.stack) == 1
}

// Value returns the single value held by this state. It panics if the
// state does not hold exactly one value.
func (s *State) Value() int {
	if !s.HasValue() {
		panic(ErrNoValue.Error() + ": stack " + s.stackString())
	}
	return s.stack[0]
}

// TryValue is like Value but returns ErrNoValue instead of panicking.
func (s *State) TryValue() (int, error) {
	if !s.HasValue() {
		return 0, ErrNoValue
	}
	return s.stack[0], nil
}

func (s *State) Parent() *State {
	return s.parent
}

func (s *State) Operation() Operation {
	return s.op
}

// Depth is the number of operations applied since the root.
func (s *State) Depth() int {
	return s.depth
}

// Stack returns a copy of the operand stack, bottom first.
func (s *State) Stack() []int {
	return append([]int(nil), s.stack...)
}

// Pool returns a copy of the unused tiles, in input order.
func (s *State) Pool() []int {
	return append([]int(nil), s.pool...)
}

// Path returns the chain of states from the root down to s.
func (s *State) Path() []*State {
	path := make([]*State, s.depth+1)
	for n := s; n != nil; n = n.parent {
		path[n.depth] = n
	}
	return path
}

// String returns the postfix trace of operations that lead to this
// state, e.g. "25 50 + 3 *". The root renders as the empty string.
func (s *State) String() string {
	path := s.Path()
	tokens := lo.Map(path[1:], func(n *State, _ int) string {
		return n.op.String()
	})
	return strings.Join(tokens, " ")
}

// Infix renders the computation as a parenthesised infix expression.
// If the stack holds more than one value, each sub-expression is
// rendered, separated by commas.
func (s *State) Infix() string {
	exprs := make([]string, 0, len(s.stack))
	for _, n := range s.Path()[1:] {
		switch n.op.Kind {
		case OpPush:
			exprs = append(exprs, strconv.Itoa(n.op.Tile))
		case OpCombine:
			r := exprs[len(exprs)-1]
			l := exprs[len(exprs)-2]
			exprs = exprs[:len(exprs)-2]
			exprs = append(exprs, "("+l+" "+n.op.Operator.Symbol()+" "+r+")")
		}
	}
	if len(exprs) == 1 {
		return strings.TrimSuffix(strings.TrimPrefix(exprs[0], "("), ")")
	}
	return strings.Join(exprs, ", ")
}

func (s *State) stackString() string {
	return "[" + strings.Join(lo.Map(s.stack, func(v int, _ int) string {
		return strconv.Itoa(v)
	}), " ") + "]"
}
