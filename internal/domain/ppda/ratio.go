package ppda

import (
	"encoding/json"
	"strconv"
)

// Ratio is a PPDA value that is either a real number or explicitly undefined.
// The zero value is undefined.
type Ratio struct {
	value   float64
	defined bool
}

// Defined wraps a computed ratio.
func Defined(v float64) Ratio { return Ratio{value: v, defined: true} }

// Undefined is the ratio of a team with no qualifying defensive actions.
func Undefined() Ratio { return Ratio{} }

// Value returns the ratio and whether it is defined.
func (r Ratio) Value() (float64, bool) { return r.value, r.defined }

// IsDefined reports whether the ratio holds a number.
func (r Ratio) IsDefined() bool { return r.defined }

// String renders "undefined" or the number.
func (r Ratio) String() string {
	if !r.defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// MarshalJSON encodes an undefined ratio as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts null or a number.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Defined(v)
	return nil
}
