package main

import (
	"fmt"
	"math/big"
	"strings"
)

// parseID accepts a decimal or 0x-prefixed hex policy or claim id.
func parseID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	id, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	if id.Sign() < 0 {
		return nil, fmt.Errorf("invalid id %q: must not be negative", s)
	}
	return id, nil
}

// parseWei accepts a non-negative decimal integer amount of wei.
func parseWei(s string) (*big.Int, error) {
	wei, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || wei.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount %q", s)
	}
	return wei, nil
}
