// Package amounts converts between human-decimal amounts and integer on-chain units.
package amounts

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"aptosyield/custody/assets"
	"aptosyield/custody/errors"

	"github.com/shopspring/decimal"
)

// Rounding selects how a scaled amount is turned into whole on-chain units.
type Rounding int

const (
	// RoundHalf rounds to the nearest unit, halves away from zero.
	RoundHalf Rounding = iota
	// RoundCeil rounds up. Callers that want withdrawals to favour the user ask for it explicitly.
	RoundCeil
	// RoundFloor rounds down.
	RoundFloor
)

// Bounds checked before any scaling. A u64 has 20 digits and no asset has more than 18 decimals.
const (
	maxIntegerDigits  = 40
	maxFractionDigits = 64
)

var maxOnChain = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ParseAmount parses a JSON number or numeric string, rejecting anything that is not a finite
// number of bounded magnitude.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: not a number", errors.ErrInvalidAmount)
	}
	if err := checkMagnitude(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkMagnitude bounds the exponent and coefficient size so rescaling stays cheap.
// The digit count is an upper bound derived from the bit length.
func checkMagnitude(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	if exp < -maxFractionDigits {
		return fmt.Errorf("%w: more than %d decimal places", errors.ErrInvalidAmount, maxFractionDigits)
	}
	digits := int64(amount.Coefficient().BitLen())*30103/100000 + 1
	if digits+exp > maxIntegerDigits {
		return fmt.Errorf("%w: amount overflows u64", errors.ErrInvalidAmount)
	}
	return nil
}

// ToOnChain scales amount by the asset's decimals factor and rounds to the nearest unit.
func ToOnChain(amount decimal.Decimal, asset assets.Descriptor) (uint64, error) {
	return ToOnChainWith(amount, asset, RoundHalf)
}

// ToOnChainCeil is ToOnChain with ceiling rounding.
func ToOnChainCeil(amount decimal.Decimal, asset assets.Descriptor) (uint64, error) {
	return ToOnChainWith(amount, asset, RoundCeil)
}

func ToOnChainWith(amount decimal.Decimal, asset assets.Descriptor, mode Rounding) (uint64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be greater than zero", errors.ErrInvalidAmount)
	}
	if err := checkMagnitude(amount); err != nil {
		return 0, err
	}
	if asset.Decimals <= 0 {
		return 0, fmt.Errorf("%w: asset %s has no decimals factor", errors.ErrUnknownToken, asset.Symbol)
	}

	scaled := amount.Mul(decimal.NewFromInt(asset.Decimals))
	switch mode {
	case RoundCeil:
		scaled = scaled.Ceil()
	case RoundFloor:
		scaled = scaled.Floor()
	default:
		scaled = scaled.Round(0)
	}

	if !scaled.IsPositive() {
		return 0, fmt.Errorf("%w: amount is below one on-chain unit of %s", errors.ErrInvalidAmount, asset.Symbol)
	}
	if scaled.GreaterThan(maxOnChain) {
		return 0, fmt.Errorf("%w: amount of %s overflows u64", errors.ErrInvalidAmount, asset.Symbol)
	}
	return scaled.BigInt().Uint64(), nil
}

// FromOnChain converts on-chain units back to a human amount. Zero is a valid input.
func FromOnChain(raw uint64, asset assets.Descriptor) decimal.Decimal {
	units := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0)
	if asset.Decimals <= 0 {
		return units
	}
	return units.Div(decimal.NewFromInt(asset.Decimals))
}
