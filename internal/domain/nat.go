package domain

import (
	"bytes"
	"fmt"
	"math/big"
)

// Nat is an unsigned arbitrary-precision integer. The zero value is 0.
// Nat values are immutable; every arithmetic method returns a new value.
type Nat struct {
	v *big.Int
}

// NewNat creates a Nat from a uint64
func NewNat(n uint64) Nat {
	return Nat{v: new(big.Int).SetUint64(n)}
}

// ParseNat parses a base-10 string of digits.
func ParseNat(s string) (Nat, error) {
	if s == "" {
		return Nat{}, fmt.Errorf("invalid natural number: empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Nat{}, fmt.Errorf("invalid natural number: %q", s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Nat{}, fmt.Errorf("invalid natural number: %q", s)
	}
	return Nat{v: v}, nil
}

// MustParseNat is ParseNat for constants and tests.
func MustParseNat(s string) Nat {
	n, err := ParseNat(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Nat) big() *big.Int {
	if n.v == nil {
		return new(big.Int)
	}
	return n.v
}

// Big returns a copy of the underlying big.Int.
func (n Nat) Big() *big.Int {
	return new(big.Int).Set(n.big())
}

func (n Nat) IsZero() bool {
	return n.big().Sign() == 0
}

// Cmp returns -1, 0 or +1.
func (n Nat) Cmp(o Nat) int {
	return n.big().Cmp(o.big())
}

func (n Nat) Equal(o Nat) bool {
	return n.Cmp(o) == 0
}

func (n Nat) Add(o Nat) Nat {
	return Nat{v: new(big.Int).Add(n.big(), o.big())}
}

func (n Nat) Mul(o Nat) Nat {
	return Nat{v: new(big.Int).Mul(n.big(), o.big())}
}

// Sub returns n-o, saturating at zero.
func (n Nat) Sub(o Nat) Nat {
	if n.Cmp(o) <= 0 {
		return Nat{}
	}
	return Nat{v: new(big.Int).Sub(n.big(), o.big())}
}

// Min returns the smaller of n and o.
func (n Nat) Min(o Nat) Nat {
	if n.Cmp(o) <= 0 {
		return n
	}
	return o
}

func (n Nat) String() string {
	return n.big().String()
}

// Key returns a comparable form usable as a map key.
func (n Nat) Key() string {
	return n.String()
}

// MarshalJSON encodes the value as a decimal string so it survives
// decoders that read numbers as float64.
func (n Nat) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (n *Nat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("invalid natural number: null")
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := ParseNat(string(data))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
