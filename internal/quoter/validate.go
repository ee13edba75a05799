package quoter

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ValidateAddress checks that s is a base58 Solana public key.
func ValidateAddress(field, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return invalid(field, nil, "%s is required", field)
	}
	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return invalid(field, err, "invalid %s %q: %v", field, s, err)
	}
	return nil
}

// ValidateAmount checks that s is a non-negative integer in base 10. The
// amount is only scanned, never converted, so arbitrarily large values pass
// through untouched.
func ValidateAmount(s string) error {
	if s == "" {
		return invalid(ParamSwapAmount, nil, "%s is required", ParamSwapAmount)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return invalid(ParamSwapAmount, nil, "invalid %s %q: must be a base-10 integer in the token's smallest unit", ParamSwapAmount, s)
		}
	}
	return nil
}
