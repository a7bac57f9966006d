package sweep

import (
	"fmt"

	"github.com/roach88/archgen/internal/ir"
)

// Mul returns a Step multiplying numbers by factor. Int times int stays int.
func Mul(factor ir.IRValue) Step {
	return func(v ir.IRValue) (ir.IRValue, error) {
		return arith(v, factor, "*")
	}
}

// Add returns a Step adding delta to numbers.
func Add(delta ir.IRValue) Step {
	return func(v ir.IRValue) (ir.IRValue, error) {
		return arith(v, delta, "+")
	}
}

// AtMost returns a Test holding while a number is <= limit.
func AtMost(limit ir.IRValue) Test {
	return func(v ir.IRValue) (bool, error) {
		a, aInt, err := number(v)
		if err != nil {
			return false, err
		}
		b, bInt, err := number(limit)
		if err != nil {
			return false, err
		}
		if aInt && bInt {
			return v.(ir.IRInt) <= limit.(ir.IRInt), nil
		}
		return a <= b, nil
	}
}

func arith(a, b ir.IRValue, op string) (ir.IRValue, error) {
	if ai, ok := a.(ir.IRInt); ok {
		if bi, ok := b.(ir.IRInt); ok {
			if op == "*" {
				return ai * bi, nil
			}
			return ai + bi, nil
		}
	}
	af, _, err := number(a)
	if err != nil {
		return nil, err
	}
	bf, _, err := number(b)
	if err != nil {
		return nil, err
	}
	if op == "*" {
		return ir.IRFloat(af * bf), nil
	}
	return ir.IRFloat(af + bf), nil
}

func number(v ir.IRValue) (float64, bool, error) {
	switch n := v.(type) {
	case ir.IRInt:
		return float64(n), true, nil
	case ir.IRFloat:
		return float64(n), false, nil
	default:
		return 0, false, fmt.Errorf("not a number: %s", ir.String(v))
	}
}
