package metrics

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Value is an optional float. The zero Value is undefined, which is distinct
// from a defined zero. Undefined values marshal to JSON null.
type Value struct {
	v  float64
	ok bool
}

// Some returns a defined Value.
func Some(v float64) Value {
	return Value{v: v, ok: true}
}

// None returns the undefined Value.
func None() Value {
	return Value{}
}

// Get returns the value and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Valid reports whether the value is defined.
func (v Value) Valid() bool {
	return v.ok
}

func (v Value) String() string {
	if !v.ok {
		return "undefined"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

func fromDecimal(d decimal.Decimal) Value {
	f, _ := d.Float64()
	return Some(f)
}

// greater reports a > b after rounding both to their shortest decimal form,
// so that thresholds such as 0.10 compare exactly.
func greater(a, b float64) bool {
	return decimal.NewFromFloat(a).GreaterThan(decimal.NewFromFloat(b))
}
