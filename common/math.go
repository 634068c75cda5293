package common

import (
	"fmt"
	"math/big"
	"strings"
)

// FloatStringToBig parses a decimal string like "0.3" into its integer
// representation with decimal digits, without going through float64.
func FloatStringToBig(value string, decimal uint64) (*big.Int, error) {
	value = strings.TrimSpace(value)
	intPart, fracPart, _ := strings.Cut(value, ".")
	if intPart == "" {
		intPart = "0"
	}
	if uint64(len(fracPart)) > decimal {
		return nil, fmt.Errorf("%s has more than %d decimal digits", value, decimal)
	}
	digits := intPart + fracPart + strings.Repeat("0", int(decimal)-len(fracPart))
	res, ok := new(big.Int).SetString(digits, 10)
	if !ok || res.Sign() < 0 {
		return nil, fmt.Errorf("couldn't parse %q as a non negative decimal", value)
	}
	return res, nil
}

// BigToFloatString renders value with decimal digits, without trailing zeros.
// Example: BigToFloatString(500000000000000000, 18) = "0.5"
func BigToFloatString(value *big.Int, decimal uint64) string {
	f := new(big.Float).SetInt(value)
	power := new(big.Float).SetInt(new(big.Int).Exp(
		big.NewInt(10), big.NewInt(int64(decimal)), nil,
	))
	res := new(big.Float).SetPrec(256).Quo(f, power)
	text := res.Text('f', int(decimal))
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	return text
}
