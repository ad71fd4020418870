package abi

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const WordSize = 32

type Word [WordSize]byte

// EncodedCall is a selector followed by its argument words.
type EncodedCall struct {
	Selector [4]byte
	Words    []Word
}

// Hex returns the calldata as a 0x-prefixed hex string.
func (c *EncodedCall) Hex() string {
	var sb strings.Builder
	sb.Grow(2 + 8 + len(c.Words)*64)
	sb.WriteString("0x")
	sb.WriteString(hex.EncodeToString(c.Selector[:]))
	for _, w := range c.Words {
		sb.WriteString(hex.EncodeToString(w[:]))
	}
	return sb.String()
}

// EncodeCall encodes args against a canonical signature such as
// "fileClaim(uint256,uint256,string)" and returns the calldata hex.
func EncodeCall(signature string, args ...Value) (string, error) {
	call, err := Encode(signature, args...)
	if err != nil {
		return "", err
	}
	return call.Hex(), nil
}

// Encode builds the selector and argument words for signature.
//
// Static arguments occupy one word each. Strings do NOT follow the standard
// ABI head/tail layout: the UTF-8 bytes are appended right-padded to a word
// boundary, with no offset or length word. This matches the deployed
// contract's own decoder and only works for a single trailing string, so any
// other position is rejected.
func Encode(signature string, args ...Value) (*EncodedCall, error) {
	types, err := parseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(types) != len(args) {
		return nil, &EncodingError{
			Index:  -1,
			Reason: fmt.Sprintf("%s takes %d arguments, got %d", signature, len(types), len(args)),
		}
	}

	call := &EncodedCall{Selector: SelectorOf(signature)}
	for i, typ := range types {
		kind, ok := kindOf(typ)
		if !ok {
			return nil, &EncodingError{Index: i, Type: typ, Reason: "unsupported type"}
		}
		if args[i].Kind != kind {
			return nil, &EncodingError{Index: i, Type: typ, Reason: fmt.Sprintf("got %s value", args[i].Kind)}
		}

		switch kind {
		case KindUint256:
			w, err := encodeUint(i, args[i])
			if err != nil {
				return nil, err
			}
			call.Words = append(call.Words, w)
		case KindAddress:
			w, err := encodeAddress(i, args[i].Address)
			if err != nil {
				return nil, err
			}
			call.Words = append(call.Words, w)
		case KindBool:
			call.Words = append(call.Words, encodeBool(args[i].Bool))
		case KindString:
			if i != len(types)-1 {
				return nil, &EncodingError{Index: i, Type: typ, Reason: "string is only supported as the last argument"}
			}
			call.Words = append(call.Words, encodePackedString(args[i].Str)...)
		}
	}
	return call, nil
}

func encodeUint(i int, v Value) (Word, error) {
	var w Word
	if v.Int == nil {
		return w, &EncodingError{Index: i, Type: "uint256", Reason: "nil integer"}
	}
	if v.Int.Sign() < 0 {
		return w, &EncodingError{Index: i, Type: "uint256", Reason: fmt.Sprintf("negative value %s", v.Int)}
	}
	u, overflow := uint256.FromBig(v.Int)
	if overflow {
		return w, &EncodingError{Index: i, Type: "uint256", Reason: "value does not fit in 256 bits"}
	}
	return Word(u.Bytes32()), nil
}

func encodeAddress(i int, addr string) (Word, error) {
	var w Word
	raw, err := parseAddress(addr)
	if err != nil {
		return w, &EncodingError{Index: i, Type: "address", Reason: err.Error()}
	}
	copy(w[12:], raw)
	return w, nil
}

func encodeBool(b bool) Word {
	var w Word
	if b {
		w[WordSize-1] = 1
	}
	return w
}

func encodePackedString(s string) []Word {
	b := []byte(s)
	words := make([]Word, (len(b)+WordSize-1)/WordSize)
	for i := range words {
		copy(words[i][:], b[i*WordSize:])
	}
	return words
}

func parseAddress(addr string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(trimmed) != 40 {
		return nil, fmt.Errorf("invalid address length: expected 40 hex chars, got %d", len(trimmed))
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid address hex: %w", err)
	}
	return raw, nil
}

// ValidateAddress checks that addr is 20 bytes of hex, with or without 0x.
func ValidateAddress(addr string) error {
	_, err := parseAddress(addr)
	return err
}

// parseSignature splits "name(t1,t2)" into its parameter types.
func parseSignature(signature string) ([]string, error) {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return nil, &EncodingError{Index: -1, Reason: fmt.Sprintf("malformed signature %q", signature)}
	}
	inner := signature[open+1 : len(signature)-1]
	if inner == "" {
		return nil, nil
	}
	types := strings.Split(inner, ",")
	for i, t := range types {
		if t == "" || t != strings.TrimSpace(t) {
			return nil, &EncodingError{Index: i, Type: t, Reason: fmt.Sprintf("malformed signature %q", signature)}
		}
	}
	return types, nil
}
