package rpc

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ParseHexUint64 converts a hex quantity (with or without "0x") to uint64.
// An empty string is zero.
func ParseHexUint64(hex string) (uint64, error) {
	hex = strings.TrimPrefix(hex, "0x")
	if hex == "" {
		return 0, nil
	}

	val := new(big.Int)
	_, ok := val.SetString(hex, 16)
	if !ok || !val.IsUint64() {
		return 0, fmt.Errorf("invalid hex: %s", hex)
	}
	return val.Uint64(), nil
}

// ParseHexBigInt converts a hex quantity of any size to *big.Int.
func ParseHexBigInt(hex string) (*big.Int, error) {
	hex = strings.TrimPrefix(hex, "0x")
	if hex == "" {
		return big.NewInt(0), nil
	}

	val := new(big.Int)
	_, ok := val.SetString(hex, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex: %s", hex)
	}
	return val, nil
}

// Uint64ToHex formats n as a 0x-prefixed quantity.
func Uint64ToHex(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

// BigToHex formats n as a 0x-prefixed quantity. nil and zero are "0x0".
func BigToHex(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

// NormalizeBlockArg converts a block identifier (decimal, hex or tag) to the
// form the node expects. Empty input means "latest".
func NormalizeBlockArg(arg string) string {
	arg = strings.TrimSpace(strings.ToLower(arg))

	switch arg {
	case "", "latest":
		return "latest"
	case "earliest", "pending":
		return arg
	}

	if strings.HasPrefix(arg, "0x") {
		return arg
	}

	num, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return arg
	}
	return Uint64ToHex(num)
}
