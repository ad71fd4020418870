package abi

import (
	"fmt"
	"math/big"
)

// Kind is a solidity type the codec can encode and decode.
type Kind int

const (
	KindUint256 Kind = iota
	KindAddress
	KindString
	KindBool
)

// String returns the solidity type name.
func (k Kind) String() string {
	switch k {
	case KindUint256:
		return "uint256"
	case KindAddress:
		return "address"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// kindOf maps a solidity type name to the kinds this codec supports.
func kindOf(typ string) (Kind, bool) {
	switch typ {
	case "uint256", "uint":
		return KindUint256, true
	case "address":
		return KindAddress, true
	case "string":
		return KindString, true
	case "bool":
		return KindBool, true
	default:
		return 0, false
	}
}

// Value is one typed call argument.
type Value struct {
	Kind    Kind
	Int     *big.Int
	Address string
	Str     string
	Bool    bool
}

// Uint wraps v as a uint256 argument.
func Uint(v *big.Int) Value { return Value{Kind: KindUint256, Int: v} }

// Uint64 wraps v as a uint256 argument.
func Uint64(v uint64) Value { return Value{Kind: KindUint256, Int: new(big.Int).SetUint64(v)} }

// Address wraps a 0x hex address argument.
func Address(addr string) Value { return Value{Kind: KindAddress, Address: addr} }

// String wraps a string argument, encoded packed (see Encode).
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool wraps a bool argument, encoded as a word holding 0 or 1.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
