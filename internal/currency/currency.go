// Package currency converts between the application's display currency,
// ether and wei. All arithmetic is decimal; amounts never pass through
// float64, so the wei sent on-chain is exactly the wei recorded off-chain.
package currency

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseUnitDecimals is the number of wei digits in one ether.
const BaseUnitDecimals = 18

// AmountError rejects an amount before any conversion happens.
type AmountError struct {
	Input  string
	Reason string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

// Converter applies a fixed exchange rate expressed as display-currency
// units per one ether.
type Converter struct {
	rate   decimal.Decimal
	symbol string
}

func NewConverter(rate decimal.Decimal, symbol string) (*Converter, error) {
	if !rate.IsPositive() {
		return nil, &AmountError{Input: rate.String(), Reason: "exchange rate must be positive"}
	}
	return &Converter{rate: rate, symbol: symbol}, nil
}

func (c *Converter) Rate() decimal.Decimal { return c.rate }

func (c *Converter) Symbol() string { return c.symbol }

// ToBaseUnit converts a display amount to wei. The ether value is rounded
// to 18 fractional digits, which makes the wei amount an exact integer.
func (c *Converter) ToBaseUnit(display decimal.Decimal) (*big.Int, error) {
	if display.IsNegative() {
		return nil, &AmountError{Input: display.String(), Reason: "must not be negative"}
	}
	ether := display.DivRound(c.rate, BaseUnitDecimals)
	return ether.Shift(BaseUnitDecimals).BigInt(), nil
}

// FromBaseUnit converts wei to the display currency.
func (c *Converter) FromBaseUnit(wei *big.Int) (decimal.Decimal, error) {
	ether, err := WeiToEther(wei)
	if err != nil {
		return decimal.Zero, err
	}
	return ether.Mul(c.rate), nil
}

// WeiToEther scales wei down by 10^18 without rounding.
func WeiToEther(wei *big.Int) (decimal.Decimal, error) {
	if wei == nil {
		return decimal.Zero, &AmountError{Input: "<nil>", Reason: "missing value"}
	}
	if wei.Sign() < 0 {
		return decimal.Zero, &AmountError{Input: wei.String(), Reason: "must not be negative"}
	}
	return decimal.NewFromBigInt(wei, -BaseUnitDecimals), nil
}

// EtherToWei scales ether up by 10^18, rounding sub-wei digits.
func EtherToWei(ether decimal.Decimal) (*big.Int, error) {
	if ether.IsNegative() {
		return nil, &AmountError{Input: ether.String(), Reason: "must not be negative"}
	}
	return ether.Round(BaseUnitDecimals).Shift(BaseUnitDecimals).BigInt(), nil
}

// ParseAmount parses a decimal string such as "0.1" or "1e-3".
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(strings.TrimLeft(trimmed, "+-")) {
	case "nan", "inf", "infinity":
		return decimal.Zero, &AmountError{Input: s, Reason: "must be finite"}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &AmountError{Input: s, Reason: err.Error()}
	}
	if d.IsNegative() {
		return decimal.Zero, &AmountError{Input: s, Reason: "must not be negative"}
	}
	return d, nil
}
