package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const maxSafeUnits = (1<<63 - 1) / 100

// Amount is a money value in minor units. In JSON it is either an integer
// number of minor units or a decimal string of major units ("12.50", "$3").
type Amount int64

// UnmarshalJSON accepts both encodings described on Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: amount must be a number or a decimal string", ErrBadCommand)
		}
		cents, err := ParseDecimalToCents(s)
		if err != nil {
			return err
		}
		*a = Amount(cents)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: numeric amount must be an integer number of cents", ErrBadCommand)
	}
	*a = Amount(n)
	return nil
}

// ParseDecimalToCents converts a decimal major-unit string to minor units.
//
// A leading "$" is ignored, "." is the decimal separator and "," may only
// group the integer digits in threes, as en-US formatting prints them. Any
// other comma is refused. A third fractional digit rounds half up. Signs are
// refused.
//
//	ParseDecimalToCents("12.34")     -> 1234
//	ParseDecimalToCents("$12")       -> 1200
//	ParseDecimalToCents("$1,000.50") -> 100050
//	ParseDecimalToCents("12,34")     -> error
func ParseDecimalToCents(s string) (int64, error) {
	invalid := fmt.Errorf("%w: invalid amount %q", ErrBadCommand, s)

	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, invalid
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") || (intPart == "" && fracPart == "") {
		return 0, invalid
	}
	intPart, ok := ungroup(intPart)
	if !ok {
		return 0, invalid
	}
	if intPart == "" {
		intPart = "0"
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, invalid
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units >= maxSafeUnits {
		return 0, invalid
	}

	var frac int64
	for i := 0; i < 2; i++ {
		frac *= 10
		if i < len(fracPart) {
			frac += int64(fracPart[i] - '0')
		}
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++
	}

	return units*100 + frac, nil
}

// ungroup removes thousands separators from s. It reports false unless every
// group after the first has exactly three digits and the first has one to three.
func ungroup(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	groups := strings.Split(s, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
