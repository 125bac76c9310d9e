package machine

import (
	"fmt"

	"github.com/arkscript-lang/arkscript/lang/compiler"
)

// evalOperator executes one of spec.md §4.7's ADD..NOT opcodes, popping n
// operands off ec's value stack (n is the opcode's argument: how many
// values lang/compiler pushed before it — usually 2, 1 for the unary
// operators). Returns (nil, nil) if op is not one of the operator
// opcodes, letting the caller report an unimplemented-opcode error.
func evalOperator(ec *ExecutionContext, op compiler.Opcode, n int) (Value, error) {
	switch op {
	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD:
		return arith(ec, op, n)
	case compiler.GT, compiler.LT, compiler.LE, compiler.GE, compiler.NEQ, compiler.EQ:
		return compare(ec, op, n)
	case compiler.AND, compiler.OR:
		return logical(ec, op, n)
	case compiler.NOT:
		return Bool(!Truthy(ec.pop())), nil
	case compiler.LEN:
		return length(ec)
	case compiler.EMPTY:
		v := Deref(ec.pop())
		switch v := v.(type) {
		case *List:
			return Bool(len(v.Items) == 0), nil
		case ArkString:
			return Bool(len(v) == 0), nil
		default:
			return nil, newErr(ec, TypeError, "empty? operand is not a list or string")
		}
	case compiler.HEAD:
		l, ok := Deref(ec.pop()).(*List)
		if !ok || len(l.Items) == 0 {
			return nil, newErr(ec, IndexError, "head of empty or non-list value")
		}
		return l.Items[0], nil
	case compiler.TAIL:
		l, ok := Deref(ec.pop()).(*List)
		if !ok || len(l.Items) == 0 {
			return nil, newErr(ec, IndexError, "tail of empty or non-list value")
		}
		return NewList(l.Items[1:]...), nil
	case compiler.ISNIL:
		return Bool(Deref(ec.pop()) == Nil), nil
	case compiler.ASSERT:
		msg := ec.pop()
		cond := ec.pop()
		if !Truthy(cond) {
			return nil, newErr(ec, AssertionError, "%s", msg.String())
		}
		return Nil, nil
	case compiler.TO_NUM:
		s, ok := Deref(ec.pop()).(ArkString)
		if !ok {
			return nil, newErr(ec, TypeError, "toNumber operand is not a string")
		}
		var f float64
		if _, err := fmt.Sscanf(string(s), "%g", &f); err != nil {
			return nil, newErr(ec, TypeError, "%q is not a valid number", s)
		}
		return Number(f), nil
	case compiler.TO_STR:
		return ArkString(Deref(ec.pop()).String()), nil
	case compiler.AT:
		idx, ok := Deref(ec.pop()).(Number)
		if !ok {
			return nil, newErr(ec, TypeError, "@ index is not a number")
		}
		l, ok := Deref(ec.pop()).(*List)
		if !ok {
			return nil, newErr(ec, TypeError, "@ target is not a list")
		}
		i := int(idx)
		if i < 0 || i >= len(l.Items) {
			return nil, newErr(ec, IndexError, "index %d out of range (len %d)", i, len(l.Items))
		}
		return l.Items[i], nil
	default:
		return nil, nil
	}
}

func arith(ec *ExecutionContext, op compiler.Opcode, n int) (Value, error) {
	ops := ec.popN(n)
	if len(ops) == 0 {
		return nil, newErr(ec, ArityError, "%s requires at least one operand", op)
	}
	acc, ok := Deref(ops[0]).(Number)
	if !ok {
		return nil, newErr(ec, TypeError, "%s operand is not a number", op)
	}
	for _, rawNext := range ops[1:] {
		next, ok := Deref(rawNext).(Number)
		if !ok {
			return nil, newErr(ec, TypeError, "%s operand is not a number", op)
		}
		switch op {
		case compiler.ADD:
			acc += next
		case compiler.SUB:
			acc -= next
		case compiler.MUL:
			acc *= next
		case compiler.DIV:
			if next == 0 {
				return nil, newErr(ec, DivisionByZero, "division by zero")
			}
			acc /= next
		case compiler.MOD:
			if next == 0 {
				return nil, newErr(ec, DivisionByZero, "modulo by zero")
			}
			acc = Number(int64(acc) % int64(next))
		}
	}
	return acc, nil
}

func compare(ec *ExecutionContext, op compiler.Opcode, n int) (Value, error) {
	ops := ec.popN(n)
	if len(ops) != 2 {
		return nil, newErr(ec, ArityError, "%s requires exactly two operands, got %d", op, len(ops))
	}
	x, y := Deref(ops[0]), Deref(ops[1])

	if op == compiler.EQ || op == compiler.NEQ {
		eq := valuesEqual(x, y)
		if op == compiler.NEQ {
			eq = !eq
		}
		return Bool(eq), nil
	}

	xn, xok := x.(Number)
	yn, yok := y.(Number)
	if !xok || !yok {
		return nil, newErr(ec, TypeError, "%s operands must be numbers", op)
	}
	switch op {
	case compiler.GT:
		return Bool(xn > yn), nil
	case compiler.LT:
		return Bool(xn < yn), nil
	case compiler.LE:
		return Bool(xn <= yn), nil
	case compiler.GE:
		return Bool(xn >= yn), nil
	}
	return nil, newErr(ec, VMInvariantError, "unreachable comparison opcode %s", op)
}

func logical(ec *ExecutionContext, op compiler.Opcode, n int) (Value, error) {
	ops := ec.popN(n)
	result := op == compiler.AND
	for _, v := range ops {
		t := Truthy(v)
		if op == compiler.AND {
			result = result && t
		} else {
			result = result || t
		}
	}
	return Bool(result), nil
}

func length(ec *ExecutionContext) (Value, error) {
	switch v := Deref(ec.pop()).(type) {
	case *List:
		return Number(len(v.Items)), nil
	case ArkString:
		return Number(len(v)), nil
	default:
		return nil, newErr(ec, TypeError, "len operand is not a list or string")
	}
}

// ValuesEqual reports whether x and y are equal under spec.md §4.4's
// structural equality rule, the same rule EQ/NEQ use — exported for
// lang/builtins (list:find and friends need the identical notion of
// equality a user would get from `=`).
func ValuesEqual(x, y Value) bool { return valuesEqual(x, y) }

func valuesEqual(x, y Value) bool {
	switch xv := x.(type) {
	case Number:
		yv, ok := y.(Number)
		return ok && xv == yv
	case ArkString:
		yv, ok := y.(ArkString)
		return ok && xv == yv
	case sentinel:
		yv, ok := y.(sentinel)
		return ok && xv == yv
	case *List:
		yv, ok := y.(*List)
		if !ok || len(xv.Items) != len(yv.Items) {
			return false
		}
		for i := range xv.Items {
			if !valuesEqual(Deref(xv.Items[i]), Deref(yv.Items[i])) {
				return false
			}
		}
		return true
	case *Closure:
		yv, ok := y.(*Closure)
		return ok && xv.PageAddr == yv.PageAddr && xv.Scope.Equal(yv.Scope)
	default:
		return x == y
	}
}
