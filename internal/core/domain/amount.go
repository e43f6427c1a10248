package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is an exact decimal in major currency units, kept in the canonical
// form "<int>.<2 digits>" ("499.00").
//
// The backend serialises decimals either as JSON numbers or as strings; both
// decode through ParseAmount so no float rounding ever happens.
// MinorUnits is the only conversion to gateway units.
type Amount string

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ParseAmount validates s and returns it in canonical form.
func ParseAmount(s string) (Amount, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return "", err
	}
	return Amount(d.StringFixed(2)), nil
}

// parseDecimal accepts non-negative decimals with at most two significant
// decimals. Extra trailing zeros are fine.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q has sub-minor precision", ErrInvalidAmount, s)
	}
	return d, nil
}

// MinorUnits converts the major-unit amount to minor units (x100).
func (a Amount) MinorUnits() (int64, error) {
	d, err := parseDecimal(string(a))
	if err != nil {
		return 0, err
	}
	minor := d.Shift(2)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, string(a))
	}
	return minor.IntPart(), nil
}

// IsZero reports whether the amount is zero or unset.
func (a Amount) IsZero() bool {
	m, err := a.MinorUnits()
	return err != nil || m == 0
}

func (a Amount) String() string {
	return string(a)
}

// MarshalJSON emits the amount as a canonical JSON number literal.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("0"), nil
	}
	canonical, err := ParseAmount(string(a))
	if err != nil {
		return nil, err
	}
	return []byte(canonical), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}

	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		raw = n.String()
	}

	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
