package types

import (
	"math/big"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		display string
	}{
		{"Positive", NewAmount(4900), "4900"},
		{"Negative", NewAmount(-100), "-100"},
		{"Zero", ZeroAmount(), "0"},
		{"ZeroValue", Amount{}, "0"},
		{"Parsed", MustParseAmount("123456789012345678901234567890"), "123456789012345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.amount.String() != tt.display {
				t.Errorf("String: got %s, want %s", tt.amount.String(), tt.display)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300)},
		{"Sub", func() Amount { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300)},
		{"Neg", func() Amount { return NewAmount(100).Neg() }, NewAmount(-100)},
		{"AddZeroValue", func() Amount { return Amount{}.Add(NewAmount(42)) }, NewAmount(42)},
		{"Complex", func() Amount {
			return NewAmount(1000).Add(NewAmount(500)).Sub(NewAmount(700))
		}, NewAmount(800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAmountComparison(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Amount
		cmp      int
		less     bool
		equal    bool
		positive bool
	}{
		{"Equal", NewAmount(100), NewAmount(100), 0, false, true, true},
		{"Less", NewAmount(50), NewAmount(100), -1, true, false, true},
		{"Greater", NewAmount(200), NewAmount(100), 1, false, false, true},
		{"NegativeVsZero", NewAmount(-1), ZeroAmount(), -1, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cmp(tt.b); got != tt.cmp {
				t.Errorf("Cmp: got %d, want %d", got, tt.cmp)
			}
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
			if got := tt.a.IsPositive(); got != tt.positive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.positive)
			}
		})
	}
}

func TestAmountBounds(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))

	if _, err := AmountFromBig(max); err != nil {
		t.Errorf("max value rejected: %v", err)
	}
	if _, err := AmountFromBig(min); err != nil {
		t.Errorf("min value rejected: %v", err)
	}

	over := new(big.Int).Add(max, big.NewInt(1))
	if _, err := AmountFromBig(over); err == nil {
		t.Error("expected error for 2^255")
	}
	under := new(big.Int).Sub(min, big.NewInt(1))
	if _, err := AmountFromBig(under); err == nil {
		t.Error("expected error for -(2^255)-1")
	}
}

func TestAmountAddOverflow(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for add overflow")
		}
	}()

	max, _ := AmountFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1)))
	_ = max.Add(NewAmount(1))
}

func TestAmountImmutability(t *testing.T) {
	a := NewAmount(100)
	_ = a.Add(NewAmount(50))
	if a.String() != "100" {
		t.Errorf("Add mutated receiver: %s", a)
	}

	b := a.BigInt()
	b.SetInt64(999)
	if a.String() != "100" {
		t.Errorf("BigInt leaked backing value: %s", a)
	}
}

func TestAmountParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Simple", "42", false},
		{"Negative", "-42", false},
		{"Huge", "99999999999999999999999999999999999999999999999999999999999999999999999999", true},
		{"NotANumber", "abc", true},
		{"Empty", "", true},
		{"Float", "1.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestAmountTextRoundTrip(t *testing.T) {
	original := MustParseAmount("-340282366920938463463374607431768211456")
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored Amount
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if !restored.Equal(original) {
		t.Errorf("round-trip mismatch: %s != %s", restored, original)
	}
}

func TestAmountScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"String", "12345", "12345"},
		{"Bytes", []byte("-7"), "-7"},
		{"Int64", int64(42), "42"},
		{"Nil", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := a.Scan(tt.src); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if a.String() != tt.want {
				t.Errorf("got %s, want %s", a, tt.want)
			}
		})
	}

	var a Amount
	if err := a.Scan(3.14); err == nil {
		t.Error("expected error scanning float64")
	}
}
