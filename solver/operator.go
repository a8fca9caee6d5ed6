package solver

import "math"

// Operator is one of the four arithmetic operators allowed in the
// Numbers round.
type Operator uint8

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

// Operators lists the operators in emission order. Expand relies on this
// order; changing it changes which state wins ties.
var Operators = [...]Operator{Add, Subtract, Multiply, Divide}

func (o Operator) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	}
	return "?"
}

func (o Operator) String() string {
	return o.Symbol()
}

// Commutative is true for the operators whose mirrored operand order is
// discarded by Expand.
func (o Operator) Commutative() bool {
	return o == Add || o == Multiply
}

// Apply computes left o right. ok is false if the result would not be a
// legal intermediate: a mirrored commutative pair, a negative difference,
// division by zero, a fractional quotient, or a value that overflows int.
func (o Operator) Apply(left, right int) (int, bool) {
	if o.Commutative() && left > right {
		return 0, false
	}
	switch o {
	case Add:
		if left > math.MaxInt-right {
			return 0, false
		}
		return left + right, true
	case Subtract:
		if left-right < 0 {
			return 0, false
		}
		return left - right, true
	case Multiply:
		if right != 0 && left > math.MaxInt/right {
			return 0, false
		}
		return left * right, true
	case Divide:
		if right == 0 || left%right != 0 {
			return 0, false
		}
		return left / right, true
	}
	return 0, false
}
