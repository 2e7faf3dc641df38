package runtime

import (
	"fmt"
	"math"
	"slices"

	"github.com/panyam/ecsl/decl"
)

func invalidBinary(op decl.BinOp, left, right Var) error {
	return fmt.Errorf("%w: %s %s %s", ErrInvalidOperator, left.GetType(), op, right.GetType())
}

// BinaryOp applies op to two values.  Both operands must have the same
// variant; there are no implicit conversions.
func BinaryOp(op decl.BinOp, left, right Var) (Var, error) {
	if !left.SameType(right) {
		return Void, invalidBinary(op, left, right)
	}
	if op == decl.OpEq {
		return BoolVar(left.Equal(right)), nil
	}
	if op == decl.OpNeq {
		return BoolVar(!left.Equal(right)), nil
	}

	switch l := left.Value.(type) {
	case int64:
		return intOp(op, l, right.Value.(int64))
	case float32:
		return floatOp(op, l, right.Value.(float32))
	case bool:
		r := right.Value.(bool)
		switch op {
		case decl.OpAnd:
			return BoolVar(l && r), nil
		case decl.OpOr:
			return BoolVar(l || r), nil
		case decl.OpXor:
			return BoolVar(l != r), nil
		}
	case rune:
		if res, ok := compare(op, l, right.Value.(rune)); ok {
			return BoolVar(res), nil
		}
	case string:
		r := right.Value.(string)
		if op == decl.OpAdd {
			return StringVar(l + r), nil
		}
		if res, ok := compare(op, l, r); ok {
			return BoolVar(res), nil
		}
	case *List:
		if op == decl.OpAdd {
			r := right.Value.(*List)
			return ListVar(slices.Concat(l.Items, r.Items)...), nil
		}
	}
	return Void, invalidBinary(op, left, right)
}

func intOp(op decl.BinOp, l, r int64) (Var, error) {
	switch op {
	case decl.OpAdd:
		return IntVar(l + r), nil
	case decl.OpSub:
		return IntVar(l - r), nil
	case decl.OpMul:
		return IntVar(l * r), nil
	case decl.OpDiv:
		if r == 0 {
			return Void, fmt.Errorf("%w: %d / 0", ErrDivisionByZero, l)
		}
		return IntVar(l / r), nil
	case decl.OpMod:
		if r == 0 {
			return Void, fmt.Errorf("%w: %d %% 0", ErrDivisionByZero, l)
		}
		return IntVar(l % r), nil
	case decl.OpXor:
		return IntVar(l ^ r), nil
	case decl.OpBitAnd:
		return IntVar(l & r), nil
	case decl.OpBitOr:
		return IntVar(l | r), nil
	case decl.OpShl, decl.OpShr:
		if r < 0 {
			return Void, fmt.Errorf("%w: negative shift count %d", ErrInvalidOperator, r)
		}
		if op == decl.OpShl {
			return IntVar(l << uint64(r)), nil
		}
		return IntVar(l >> uint64(r)), nil
	}
	if res, ok := compare(op, l, r); ok {
		return BoolVar(res), nil
	}
	return Void, invalidBinary(op, IntVar(l), IntVar(r))
}

func floatOp(op decl.BinOp, l, r float32) (Var, error) {
	switch op {
	case decl.OpAdd:
		return FloatVar(l + r), nil
	case decl.OpSub:
		return FloatVar(l - r), nil
	case decl.OpMul:
		return FloatVar(l * r), nil
	case decl.OpDiv:
		return FloatVar(l / r), nil
	case decl.OpMod:
		return FloatVar(float32(math.Mod(float64(l), float64(r)))), nil
	}
	if res, ok := compare(op, l, r); ok {
		return BoolVar(res), nil
	}
	return Void, invalidBinary(op, FloatVar(l), FloatVar(r))
}

func compare[T int64 | float32 | rune | string](op decl.BinOp, l, r T) (result bool, ok bool) {
	switch op {
	case decl.OpLt:
		return l < r, true
	case decl.OpLeq:
		return l <= r, true
	case decl.OpGt:
		return l > r, true
	case decl.OpGeq:
		return l >= r, true
	case decl.OpEq:
		return l == r, true
	case decl.OpNeq:
		return l != r, true
	}
	return false, false
}

// UnaryOp applies op to a value.
func UnaryOp(op decl.UnOp, operand Var) (Var, error) {
	switch v := operand.Value.(type) {
	case int64:
		switch op {
		case decl.OpPos:
			return operand, nil
		case decl.OpNeg:
			return IntVar(-v), nil
		case decl.OpBitNot:
			return IntVar(^v), nil
		}
	case float32:
		switch op {
		case decl.OpPos:
			return operand, nil
		case decl.OpNeg:
			return FloatVar(-v), nil
		}
	case bool:
		if op == decl.OpNot {
			return BoolVar(!v), nil
		}
	}
	return Void, fmt.Errorf("%w: %s%s", ErrInvalidOperator, op, operand.GetType())
}
