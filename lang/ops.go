package lang

import "github.com/Toshiki428/DICE/parser"

// applyBinaryOp implements arithmetic, comparison, and string-concatenation
// binary operators. Logical `&&`/`||` short-circuit before reaching here —
// see evalBinaryOp.
func applyBinaryOp(op parser.TokenType, left, right Value, pos Position) (Value, error) {
	switch op.String() {
	case "+":
		if ls, ok := left.(String); ok {
			return ls + String(right.String()), nil
		}
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, NewRuntimeError(pos, "operands to + must both be numbers or the left a string, got %s and %s", left.String(), right.String())
		}
		return ln + rn, nil
	case "-", "*", "/":
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, NewRuntimeError(pos, "operands to %s must be numbers, got %s and %s", op.String(), left.String(), right.String())
		}
		switch op.String() {
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		default:
			if rn == 0 {
				return nil, NewRuntimeError(pos, "division by zero")
			}
			return ln / rn, nil
		}
	case "==":
		return Bool(valuesEqual(left, right)), nil
	case "!=":
		return Bool(!valuesEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, NewRuntimeError(pos, "operands to %s must be numbers, got %s and %s", op.String(), left.String(), right.String())
		}
		switch op.String() {
		case "<":
			return Bool(ln < rn), nil
		case "<=":
			return Bool(ln <= rn), nil
		case ">":
			return Bool(ln > rn), nil
		default:
			return Bool(ln >= rn), nil
		}
	default:
		return nil, NewRuntimeError(pos, "unsupported binary operator %s", op.String())
	}
}

func applyUnaryOp(op parser.TokenType, operand Value, pos Position) (Value, error) {
	switch op.String() {
	case "!":
		return Bool(!Truthy(operand)), nil
	case "-":
		n, ok := operand.(Number)
		if !ok {
			return nil, NewRuntimeError(pos, "unary - requires a number, got %s", operand.String())
		}
		return -n, nil
	default:
		return nil, NewRuntimeError(pos, "unsupported unary operator %s", op.String())
	}
}

func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Unit:
		_, ok := b.(Unit)
		return ok
	default:
		return a == b
	}
}
