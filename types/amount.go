package types

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Amount represents a token quantity as a signed 256-bit integer in the
// token's smallest unit. All arithmetic is integer-only — no floating point.
//
// Amount values are immutable: every operation returns a new Amount and the
// backing big.Int is never shared with callers.
type Amount struct {
	v *big.Int
}

// amountBits is the width of the representable range. Values outside
// [-2^255, 2^255-1] are rejected at construction.
const amountBits = 256

var (
	maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), amountBits-1), big.NewInt(1))
	minAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), amountBits-1))
)

// NewAmount creates an Amount from an int64.
func NewAmount(v int64) Amount {
	return Amount{v: big.NewInt(v)}
}

// AmountFromBig creates an Amount from a big.Int, copying the value.
// It fails if v does not fit in a signed 256-bit integer.
func AmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, fmt.Errorf("types: amount from big: nil value")
	}
	if v.Cmp(maxAmount) > 0 || v.Cmp(minAmount) < 0 {
		return Amount{}, fmt.Errorf("types: amount %s overflows %d bits", v, amountBits)
	}
	return Amount{v: new(big.Int).Set(v)}, nil
}

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("types: parse amount %q: not a base-10 integer", s)
	}
	return AmountFromBig(v)
}

// MustParseAmount is like ParseAmount but panics on error. Use for hardcoded
// amounts.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("types: must parse amount %q: %v", s, err))
	}
	return a
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount { return Amount{v: new(big.Int)} }

// big returns the backing value, treating the zero Amount as 0.
func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Arithmetic operations

// Add returns a + other. Panics on 256-bit overflow (programming error:
// amounts this large cannot arise from valid token balances).
func (a Amount) Add(other Amount) Amount {
	sum := new(big.Int).Add(a.big(), other.big())
	out, err := AmountFromBig(sum)
	if err != nil {
		panic(fmt.Sprintf("types: amount add overflow: %v", err))
	}
	return out
}

// Sub returns a - other. Panics on 256-bit overflow.
func (a Amount) Sub(other Amount) Amount {
	diff := new(big.Int).Sub(a.big(), other.big())
	out, err := AmountFromBig(diff)
	if err != nil {
		panic(fmt.Sprintf("types: amount sub overflow: %v", err))
	}
	return out
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{v: new(big.Int).Neg(a.big())}
}

// Comparison methods

// Sign returns -1, 0 or +1 depending on the sign of the amount.
func (a Amount) Sign() int { return a.big().Sign() }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.big().Sign() > 0 }

// Cmp compares a and other, returning -1, 0 or +1.
func (a Amount) Cmp(other Amount) int { return a.big().Cmp(other.big()) }

// Equal reports whether both amounts are equal.
func (a Amount) Equal(other Amount) bool { return a.Cmp(other) == 0 }

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool { return a.Cmp(other) < 0 }

// BigInt returns a copy of the amount as a big.Int.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(a.big()) }

// String returns the base-10 representation.
func (a Amount) String() string { return a.big().String() }

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = ZeroAmount()
		return nil
	}
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage. Amounts are stored as
// base-10 strings so that 256-bit values survive every backend.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ZeroAmount()
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		*a = NewAmount(v)
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Amount", src)
	}
}
