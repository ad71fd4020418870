package abi

import "fmt"

// EncodingError reports an argument that cannot be turned into calldata.
// Index is the zero-based argument position, or -1 when the problem is
// with the call as a whole.
type EncodingError struct {
	Index  int
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("abi encoding: %s", e.Reason)
	}
	return fmt.Sprintf("abi encoding: argument %d (%s): %s", e.Index, e.Type, e.Reason)
}

// DecodingError reports malformed topic or return data. Offset is the byte
// offset into the data where decoding failed.
type DecodingError struct {
	Offset int
	Reason string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("abi decoding at byte %d: %s", e.Offset, e.Reason)
}
