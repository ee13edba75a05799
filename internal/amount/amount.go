package amount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a human amount such as "1.5" into the token's
// smallest unit as a base-10 string ("1500000000" for 9 decimals). Amounts
// that do not divide evenly into base units are rejected rather than rounded.
func ToBaseUnits(human string, decimals int32) (string, error) {
	human = strings.TrimSpace(human)
	if human == "" {
		return "", fmt.Errorf("amount is required")
	}
	if decimals < 0 {
		return "", fmt.Errorf("invalid decimals %d", decimals)
	}

	d, err := decimal.NewFromString(human)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", human, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("invalid amount %q: must not be negative", human)
	}

	base := d.Shift(decimals)
	if !base.Equal(base.Truncate(0)) {
		return "", fmt.Errorf("amount %q has more than %d decimal places", human, decimals)
	}
	return base.Truncate(0).String(), nil
}

// FromBaseUnits renders a base-unit string as a human amount.
func FromBaseUnits(raw string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base amount %q: %w", raw, err)
	}
	return d.Shift(-decimals).String(), nil
}
