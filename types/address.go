// Package types provides common types used across Paygate.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Address is an opaque account or contract identifier. It is used both as an
// authorization subject (who is calling) and as a fund source/destination.
// The engine never interprets its contents; the identity verifier and token
// backend give it meaning.
type Address string

// ZeroAddress is the invalid zero value. Operations reject it.
const ZeroAddress Address = ""

// ParseAddress validates and returns an Address. Leading and trailing
// whitespace is rejected rather than trimmed so that two renderings of the
// same account cannot coexist.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, fmt.Errorf("types: parse address: empty string")
	}
	if strings.TrimSpace(s) != s {
		return ZeroAddress, fmt.Errorf("types: parse address %q: surrounding whitespace", s)
	}
	return Address(s), nil
}

// MustParseAddress is like ParseAddress but panics on error. Use for
// hardcoded addresses.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(fmt.Sprintf("types: must parse address %q: %v", s, err))
	}
	return a
}

// String returns the raw address string.
func (a Address) String() string { return string(a) }

// IsZero reports whether the address is the invalid zero value.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Equal reports whether two addresses identify the same account.
func (a Address) Equal(other Address) bool { return a == other }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = ZeroAddress
		return nil
	}
	parsed, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Address) Value() (driver.Value, error) {
	return string(a), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ZeroAddress
		return nil
	case string:
		*a = Address(v)
		return nil
	case []byte:
		*a = Address(v)
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Address", src)
	}
}
