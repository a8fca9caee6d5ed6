package solver

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

// pushChild returns the i-th push child of s.
func pushChild(s *State, i int) *State {
	pushes := []*State{}
	for _, c := range s.Expand() {
		if c.Operation().Kind == OpPush {
			pushes = append(pushes, c)
		}
	}
	return pushes[i]
}

func combineChildren(s *State) map[Operator]*State {
	m := map[Operator]*State{}
	for _, c := range s.Expand() {
		if c.Operation().Kind == OpCombine {
			m[c.Operation().Operator] = c
		}
	}
	return m
}

func TestRoot(t *testing.T) {
	is := is.New(t)
	tiles := []int{25, 50, 3}
	r := Root(tiles)
	tiles[0] = 99
	is.Equal(r.Pool(), []int{25, 50, 3})
	is.Equal(len(r.Stack()), 0)
	is.True(!r.HasValue())
	is.Equal(r.Parent(), nil)
	is.Equal(r.Operation().Kind, OpNone)
	is.Equal(r.String(), "")
	is.Equal(r.Depth(), 0)
}

func TestValuePanicsWithoutSingleValue(t *testing.T) {
	r := Root([]int{1, 2})
	assert.Panics(t, func() { r.Value() })
	two := pushChild(pushChild(r, 0), 0)
	assert.Equal(t, []int{1, 2}, two.Stack())
	assert.Panics(t, func() { two.Value() })
	_, err := two.TryValue()
	assert.ErrorIs(t, err, ErrNoValue)

	one := pushChild(r, 1)
	v, err := one.TryValue()
	assert.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestExpandOrder(t *testing.T) {
	is := is.New(t)
	// stack [2 6], pool [4 4]
	s := pushChild(pushChild(Root([]int{2, 6, 4, 4}), 0), 0)
	is.Equal(s.Stack(), []int{2, 6})
	children := s.Expand()
	ops := []string{}
	for _, c := range children {
		ops = append(ops, c.Operation().String())
	}
	// 2 - 6 is negative and 2 / 6 is inexact.
	is.Equal(ops, []string{"+", "*", "4", "4"})
	is.Equal(children[0].Stack(), []int{8})
	is.Equal(children[1].Stack(), []int{12})
	is.Equal(children[2].Stack(), []int{2, 6, 4})
	is.Equal(children[2].Pool(), []int{4})
	is.Equal(children[3].Pool(), []int{4})
	for _, c := range children {
		is.Equal(c.Parent(), s)
		is.Equal(c.Depth(), 3)
	}
}

func TestExpandPruning(t *testing.T) {
	is := is.New(t)
	type tc struct {
		left, right int
		expected    map[Operator]int
	}
	cases := []tc{
		{6, 2, map[Operator]int{Subtract: 4, Divide: 3}},
		{2, 6, map[Operator]int{Add: 8, Multiply: 12}},
		{3, 3, map[Operator]int{Add: 6, Subtract: 0, Multiply: 9, Divide: 1}},
		{7, 0, map[Operator]int{Subtract: 7}},
		{0, 7, map[Operator]int{Add: 7, Multiply: 0, Divide: 0}},
		{0, 0, map[Operator]int{Add: 0, Subtract: 0, Multiply: 0}},
		{7, 2, map[Operator]int{Subtract: 5}},
	}
	for _, c := range cases {
		s := pushChild(pushChild(Root([]int{c.left, c.right}), 0), 0)
		got := combineChildren(s)
		is.Equal(len(got), len(c.expected))
		for o, v := range c.expected {
			child, ok := got[o]
			is.True(ok)
			is.Equal(child.Value(), v)
			is.Equal(len(child.Pool()), 0)
		}
	}
}

func TestExpandDuplicateTilesAreDistinct(t *testing.T) {
	is := is.New(t)
	children := Root([]int{4, 4}).Expand()
	is.Equal(len(children), 2)
	is.Equal(children[0].Value(), 4)
	is.Equal(children[1].Value(), 4)
	is.True(children[0] != children[1])
}

func TestTreeInvariants(t *testing.T) {
	is := is.New(t)
	tiles := []int{0, 2, 3, 3}
	var walk func(s *State)
	walk = func(s *State) {
		// every tile is either still in the pool or was pushed exactly once.
		pushes := 0
		for _, n := range s.Path() {
			if n.Operation().Kind == OpPush {
				pushes++
			}
		}
		is.Equal(len(s.Pool())+pushes, len(tiles))
		is.True(len(s.Pool())+len(s.Stack()) <= len(tiles))
		for _, v := range s.Stack() {
			is.True(v >= 0)
		}
		seen := map[Operator]bool{}
		for _, c := range s.Expand() {
			op := c.Operation()
			if op.Kind == OpCombine {
				is.True(!seen[op.Operator])
				seen[op.Operator] = true
				st := s.Stack()
				left, right := st[len(st)-2], st[len(st)-1]
				switch op.Operator {
				case Add, Multiply:
					is.True(left <= right)
				case Subtract:
					is.True(left >= right)
				case Divide:
					is.True(right != 0)
					is.Equal(left%right, 0)
				}
				is.Equal(c.Pool(), s.Pool())
			}
			walk(c)
		}
	}
	walk(Root(tiles))
}

func TestTraceRendering(t *testing.T) {
	is := is.New(t)
	// ((25 + 50) / 3)
	s := pushChild(pushChild(Root([]int{25, 50, 3}), 0), 0)
	s = combineChildren(s)[Add]
	s = pushChild(s, 0)
	is.Equal(s.Infix(), "(25 + 50), 3")
	is.Equal(len(combineChildren(s)), 2) // 75 - 3 and 75 / 3
	s = combineChildren(s)[Divide]
	is.Equal(s.Value(), 25)
	is.Equal(s.String(), "25 50 + 3 /")
	is.Equal(s.Infix(), "(25 + 50) / 3")
	is.Equal(len(s.Path()), 6)
	is.Equal(s.Path()[0].Depth(), 0)

	one := pushChild(Root([]int{7}), 0)
	is.Equal(one.Infix(), "7")
	is.Equal(Root(nil).Infix(), "")
}

func TestOperatorApplyOverflow(t *testing.T) {
	is := is.New(t)
	_, ok := Add.Apply(math.MaxInt-1, math.MaxInt-1)
	is.True(!ok)
	v, ok := Add.Apply(1, math.MaxInt-1)
	is.True(ok)
	is.Equal(v, math.MaxInt)
	_, ok = Multiply.Apply(3037000500, 3037000500)
	is.True(!ok)
	v, ok = Multiply.Apply(0, math.MaxInt)
	is.True(ok)
	is.Equal(v, 0)

	s := pushChild(pushChild(Root([]int{3037000500, 3037000500}), 0), 0)
	got := combineChildren(s)
	_, ok = got[Multiply]
	is.True(!ok)
	_, ok = got[Add]
	is.True(ok)
}

func TestSolveNeverWraps(t *testing.T) {
	is := is.New(t)
	s := Solve([]int{1 << 32, 1 << 33}, 0, nil)
	// 2^33 / 2^32; the wrapped product would have looked like an exact 0.
	is.Equal(s.Value(), 2)
	is.Equal(s.String(), "8589934592 4294967296 /")
}

func TestOperatorApply(t *testing.T) {
	is := is.New(t)
	is.Equal(Add.Symbol(), "+")
	is.Equal(Subtract.String(), "-")
	is.Equal(Multiply.Symbol(), "*")
	is.Equal(Divide.Symbol(), "/")
	is.True(Add.Commutative())
	is.True(!Divide.Commutative())
	_, ok := Divide.Apply(5, 0)
	is.True(!ok)
	v, ok := Divide.Apply(100, 4)
	is.True(ok)
	is.Equal(v, 25)
}
