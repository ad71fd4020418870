package abi

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

func keccak256(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// SelectorOf returns the first 4 bytes of the Keccak-256 digest of a
// canonical signature, e.g. "balanceOf(address)" -> 70a08231.
func SelectorOf(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], keccak256([]byte(signature)))
	return sel
}

// SelectorHex is SelectorOf as a 0x-prefixed hex string.
func SelectorHex(signature string) string {
	sel := SelectorOf(signature)
	return "0x" + hex.EncodeToString(sel[:])
}

// TopicOf returns the full 32-byte digest of an event signature, which is
// what nodes report as topics[0].
func TopicOf(signature string) string {
	return "0x" + hex.EncodeToString(keccak256([]byte(signature)))
}
