// Package eds implements EDs, a fixed-point token quantity with its own decimal precision.
//
// A value is magnitude / 10^decimals. Values are immutable: every operation returns a new EDs.
// Operands with different precisions are rescaled to the larger one before combining.
package eds

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrUnderflow      = errors.New("eds: underflow")
	ErrDivisionByZero = errors.New("eds: division by zero")
	ErrNegative       = errors.New("eds: negative value")
	ErrPrecision      = errors.New("eds: too many fractional digits")
)

type EDs struct {
	val      *big.Int
	decimals uint8
}

// New copies val. It panics on a negative magnitude.
func New(val *big.Int, decimals uint8) EDs {
	if val == nil {
		return Zero(decimals)
	}

	if val.Sign() < 0 {
		panic(fmt.Sprintf("eds: negative magnitude %s", val))
	}

	return EDs{val: new(big.Int).Set(val), decimals: decimals}
}

func FromUint64(val uint64, decimals uint8) EDs {
	return EDs{val: new(big.Int).SetUint64(val), decimals: decimals}
}

func Zero(decimals uint8) EDs {
	return EDs{val: new(big.Int), decimals: decimals}
}

// E8s is a USD quantity or a rate as the payment canister encodes them.
func E8s(val *big.Int) EDs {
	return New(val, 8)
}

// Parse reads decimal text such as "12.5" at the given precision.
func Parse(s string, decimals uint8) (EDs, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return EDs{}, fmt.Errorf("parse %q: %w", s, err)
	}

	return FromDecimal(d, decimals)
}

func FromDecimal(d decimal.Decimal, decimals uint8) (EDs, error) {
	if d.IsNegative() {
		return EDs{}, fmt.Errorf("%s: %w", d, ErrNegative)
	}

	if !d.Truncate(int32(decimals)).Equal(d) {
		return EDs{}, fmt.Errorf("%s at %d decimals: %w", d, decimals, ErrPrecision)
	}

	return EDs{val: d.Shift(int32(decimals)).BigInt(), decimals: decimals}, nil
}

// Val returns a copy of the raw magnitude.
func (e EDs) Val() *big.Int {
	return new(big.Int).Set(e.raw())
}

func (e EDs) Decimals() uint8 {
	return e.decimals
}

func (e EDs) IsZero() bool {
	return e.raw().Sign() == 0
}

// ToDecimals rescales to exactly n places. Increasing precision pads with zeros and is lossless,
// decreasing precision truncates the dropped digits (no rounding).
func (e EDs) ToDecimals(n uint8) EDs {
	return EDs{val: rescale(e.raw(), e.decimals, n), decimals: n}
}

func (e EDs) Add(other EDs) EDs {
	p := max(e.decimals, other.decimals)
	a, b := e.at(p), other.at(p)

	return EDs{val: a.Add(a, b), decimals: p}
}

func (e EDs) Sub(other EDs) (EDs, error) {
	p := max(e.decimals, other.decimals)
	a, b := e.at(p), other.at(p)

	if a.Cmp(b) < 0 {
		return EDs{}, fmt.Errorf("%s - %s: %w", e, other, ErrUnderflow)
	}

	return EDs{val: a.Sub(a, b), decimals: p}, nil
}

// Mul truncates the product to the larger of the two precisions.
func (e EDs) Mul(other EDs) EDs {
	p := max(e.decimals, other.decimals)
	a, b := e.at(p), other.at(p)

	a.Mul(a, b)
	a.Quo(a, pow10(p))

	return EDs{val: a, decimals: p}
}

// Div truncates the quotient to the larger of the two precisions.
func (e EDs) Div(other EDs) (EDs, error) {
	p := max(e.decimals, other.decimals)
	a, b := e.at(p), other.at(p)

	if b.Sign() == 0 {
		return EDs{}, fmt.Errorf("%s / %s: %w", e, other, ErrDivisionByZero)
	}

	a.Mul(a, pow10(p))
	a.Quo(a, b)

	return EDs{val: a, decimals: p}, nil
}

func (e EDs) Cmp(other EDs) int {
	p := max(e.decimals, other.decimals)
	return e.at(p).Cmp(other.at(p))
}

func (e EDs) Eq(other EDs) bool { return e.Cmp(other) == 0 }
func (e EDs) Lt(other EDs) bool { return e.Cmp(other) < 0 }
func (e EDs) Le(other EDs) bool { return e.Cmp(other) <= 0 }
func (e EDs) Gt(other EDs) bool { return e.Cmp(other) > 0 }
func (e EDs) Ge(other EDs) bool { return e.Cmp(other) >= 0 }

func (e EDs) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(e.raw(), -int32(e.decimals))
}

// String renders the value without trailing fractional zeros, e.g. "1.5001".
func (e EDs) String() string {
	return e.Decimal().String()
}

// StringFixed keeps every one of the value's decimal places, e.g. "1.50010000".
func (e EDs) StringFixed() string {
	return e.Decimal().StringFixed(int32(e.decimals))
}

type jsonEDs struct {
	Val      string `json:"val"`
	Decimals uint8  `json:"decimals"`
}

func (e EDs) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEDs{Val: e.raw().String(), Decimals: e.decimals})
}

func (e *EDs) UnmarshalJSON(b []byte) error {
	var j jsonEDs

	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}

	val, ok := new(big.Int).SetString(j.Val, 10)
	if !ok {
		return fmt.Errorf("eds: invalid magnitude %q", j.Val)
	}

	if val.Sign() < 0 {
		return ErrNegative
	}

	*e = EDs{val: val, decimals: j.Decimals}

	return nil
}

func (e EDs) raw() *big.Int {
	if e.val == nil {
		return new(big.Int)
	}

	return e.val
}

// at returns a fresh magnitude scaled to p places.
func (e EDs) at(p uint8) *big.Int {
	return rescale(e.raw(), e.decimals, p)
}

func rescale(val *big.Int, from, to uint8) *big.Int {
	res := new(big.Int).Set(val)

	switch {
	case to > from:
		res.Mul(res, pow10(to-from))
	case to < from:
		res.Quo(res, pow10(from-to))
	}

	return res
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
