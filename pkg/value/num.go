package value

import (
	"fmt"
	"math/big"
)

// Num is an exact rational number (spec.md §3.3: "Numbers are exact
// rationals; division by zero is an error"). math/big.Rat is the standard
// library's arbitrary-precision rational type; no third-party exact-rational
// library appears anywhere in the retrieved pack, so this is the one place
// Ven leans on the standard library for a core data type rather than an
// ecosystem dependency (see DESIGN.md).
type Num struct {
	R *big.Rat
}

func NewNum(r *big.Rat) Num { return Num{R: r} }

func NumFromInt64(n int64) Num { return Num{R: big.NewRat(n, 1)} }

func NumFromString(s string) (Num, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Num{}, false
	}
	return Num{R: r}, true
}

func (n Num) Kind() Kind { return KindNum }

func (n Num) String() string {
	if n.R.IsInt() {
		return n.R.Num().String()
	}
	return n.R.RatString()
}

func (n Num) Truthy() bool { return true }

func (n Num) Eqv(o Value) bool {
	on, ok := o.(Num)
	return ok && n.R.Cmp(on.R) == 0
}

func (n Num) Add(o Num) Num { return Num{R: new(big.Rat).Add(n.R, o.R)} }
func (n Num) Sub(o Num) Num { return Num{R: new(big.Rat).Sub(n.R, o.R)} }
func (n Num) Mul(o Num) Num { return Num{R: new(big.Rat).Mul(n.R, o.R)} }

func (n Num) Div(o Num) (Num, error) {
	if o.R.Sign() == 0 {
		return Num{}, fmt.Errorf("division by zero")
	}
	return Num{R: new(big.Rat).Quo(n.R, o.R)}, nil
}

func (n Num) Neg() Num { return Num{R: new(big.Rat).Neg(n.R)} }

func (n Num) Cmp(o Num) int { return n.R.Cmp(o.R) }

// Int32 converts an integral Num to int32. It reports false (with 0) for a
// non-integer or for a value outside the int32 range, which the `x` repeat
// operator's overflow guard relies on (spec.md §8 boundary case).
func (n Num) Int32() (int32, bool) {
	if !n.R.IsInt() {
		return 0, false
	}
	i := n.R.Num()
	if i.IsInt64() {
		v := i.Int64()
		if v > int64(1<<31-1) || v < int64(-1<<31) {
			return 0, false
		}
		return int32(v), true
	}
	return 0, false
}
