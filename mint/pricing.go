package mint

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	ajercommon "github.com/tranvictor/ajer/common"
)

const MinNameLength = 3

type Tier int

const (
	TierShort  Tier = 3
	TierMedium Tier = 4
	TierLong   Tier = 5
)

func (t Tier) String() string {
	switch t {
	case TierShort:
		return "short"
	case TierMedium:
		return "medium"
	default:
		return "long"
	}
}

// TierOf buckets a name by its length in characters.
func TierOf(name string) (Tier, error) {
	n := utf8.RuneCountInString(name)
	switch {
	case n < MinNameLength:
		return 0, &NameTooShortError{Name: name, Length: n}
	case n == 3:
		return TierShort, nil
	case n == 4:
		return TierMedium, nil
	default:
		return TierLong, nil
	}
}

// Pricing is the registration price of each tier, in wei.
type Pricing struct {
	Short  *big.Int
	Medium *big.Int
	Long   *big.Int
}

// DefaultPricing is 0.5 / 0.3 / 0.1 of the native token.
func DefaultPricing() Pricing {
	p, err := ParsePricing("0.5", "0.3", "0.1", 18)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePricing reads prices written in native token units, such as "0.5".
func ParsePricing(short, medium, long string, decimals uint64) (Pricing, error) {
	var (
		p   Pricing
		err error
	)
	if p.Short, err = ajercommon.FloatStringToBig(short, decimals); err != nil {
		return Pricing{}, fmt.Errorf("invalid short name price: %w", err)
	}
	if p.Medium, err = ajercommon.FloatStringToBig(medium, decimals); err != nil {
		return Pricing{}, fmt.Errorf("invalid medium name price: %w", err)
	}
	if p.Long, err = ajercommon.FloatStringToBig(long, decimals); err != nil {
		return Pricing{}, fmt.Errorf("invalid long name price: %w", err)
	}
	return p, nil
}

func (p Pricing) Of(t Tier) *big.Int {
	switch t {
	case TierShort:
		return new(big.Int).Set(p.Short)
	case TierMedium:
		return new(big.Int).Set(p.Medium)
	default:
		return new(big.Int).Set(p.Long)
	}
}

// Price returns what registering name costs.
func (p Pricing) Price(name string) (*big.Int, Tier, error) {
	tier, err := TierOf(name)
	if err != nil {
		return nil, 0, err
	}
	return p.Of(tier), tier, nil
}
