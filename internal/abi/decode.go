package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// errorSelector is the selector of Error(string), the payload solidity
// attaches to require/revert messages.
const errorSelector = "08c379a0"

// DecodeWord interprets a hex word (such as a log topic) as a big-endian
// unsigned integer. Short input is treated as left-padded.
func DecodeWord(word string) (*big.Int, error) {
	raw, err := decodeHex(word)
	if err != nil {
		return nil, err
	}
	if len(raw) > WordSize {
		return nil, &DecodingError{Reason: fmt.Sprintf("word is %d bytes, want at most %d", len(raw), WordSize)}
	}
	return new(uint256.Int).SetBytes(raw).ToBig(), nil
}

// DecodeTopicUint extracts topics[index] as an unsigned integer.
func DecodeTopicUint(topics []string, index int) (*big.Int, error) {
	if index < 0 || index >= len(topics) {
		return nil, &DecodingError{Reason: fmt.Sprintf("topic %d requested, log has %d", index, len(topics))}
	}
	return DecodeWord(topics[index])
}

// DecodeOutputs decodes standard ABI return data for the given types.
// uint256 decodes to *big.Int, address to a lowercase 0x string, bool to
// bool and string to string (offset + length encoding).
func DecodeOutputs(types []string, data string) ([]interface{}, error) {
	raw, err := decodeHex(data)
	if err != nil {
		return nil, err
	}
	if len(raw) < len(types)*WordSize {
		return nil, &DecodingError{
			Offset: len(raw),
			Reason: fmt.Sprintf("have %d bytes, need at least %d for %d values", len(raw), len(types)*WordSize, len(types)),
		}
	}

	out := make([]interface{}, len(types))
	for i, typ := range types {
		head := i * WordSize
		word := raw[head : head+WordSize]

		kind, ok := kindOf(typ)
		if !ok {
			return nil, &DecodingError{Offset: head, Reason: fmt.Sprintf("unsupported type %s", typ)}
		}

		switch kind {
		case KindUint256:
			out[i] = new(uint256.Int).SetBytes(word).ToBig()
		case KindAddress:
			if !allZero(word[:12]) {
				return nil, &DecodingError{Offset: head, Reason: "address word has non-zero padding"}
			}
			out[i] = "0x" + hex.EncodeToString(word[12:])
		case KindBool:
			if !allZero(word[:WordSize-1]) || word[WordSize-1] > 1 {
				return nil, &DecodingError{Offset: head, Reason: "invalid bool word"}
			}
			out[i] = word[WordSize-1] == 1
		case KindString:
			s, err := decodeString(raw, word, head)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
	}
	return out, nil
}

func decodeString(raw, offsetWord []byte, head int) (string, error) {
	offset, err := wordToInt(offsetWord)
	if err != nil || offset+WordSize > len(raw) {
		return "", &DecodingError{Offset: head, Reason: "string offset out of range"}
	}
	length, err := wordToInt(raw[offset : offset+WordSize])
	start := offset + WordSize
	if err != nil || start+length > len(raw) {
		return "", &DecodingError{Offset: offset, Reason: "string length out of range"}
	}
	b := raw[start : start+length]
	if !utf8.Valid(b) {
		return "", &DecodingError{Offset: start, Reason: "string is not valid UTF-8"}
	}
	return string(b), nil
}

// DecodeRevertReason extracts the message from Error(string) revert data.
func DecodeRevertReason(data string) (string, bool) {
	trimmed := strings.TrimPrefix(data, "0x")
	if !strings.HasPrefix(trimmed, errorSelector) {
		return "", false
	}
	out, err := DecodeOutputs([]string{"string"}, "0x"+trimmed[len(errorSelector):])
	if err != nil {
		return "", false
	}
	return out[0].(string), true
}

func wordToInt(word []byte) (int, error) {
	u := new(uint256.Int).SetBytes(word)
	if !u.IsUint64() || u.Uint64() > uint64(1<<31) {
		return 0, fmt.Errorf("value too large")
	}
	return int(u.Uint64()), nil
}

func decodeHex(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, &DecodingError{Reason: fmt.Sprintf("invalid hex: %v", err)}
	}
	return raw, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
