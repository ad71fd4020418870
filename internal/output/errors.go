package output

import (
	"errors"
	"fmt"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/insurance"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/txn"
)

// ErrorKind classifies err by the typed error it wraps.
func ErrorKind(err error) string {
	var (
		transportErr *rpc.TransportError
		protocolErr  *rpc.ProtocolError
		encodingErr  *abi.EncodingError
		decodingErr  *abi.DecodingError
		timeoutErr   *txn.TimeoutError
		revertedErr  *txn.RevertedError
		amountErr    *currency.AmountError
	)
	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &protocolErr):
		return "protocol"
	case errors.As(err, &encodingErr):
		return "encoding"
	case errors.As(err, &decodingErr):
		return "decoding"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &revertedErr):
		return "reverted"
	case errors.As(err, &amountErr):
		return "amount"
	case errors.Is(err, insurance.ErrMissingIdentifier):
		return "missing_identifier"
	default:
		return "other"
	}
}

// RevertReason extracts the Error(string) message a node attached to a
// protocol error, if any.
func RevertReason(err error) (string, bool) {
	var protocolErr *rpc.ProtocolError
	if !errors.As(err, &protocolErr) {
		return "", false
	}
	return abi.DecodeRevertReason(protocolErr.DataHex())
}

// Error renders a failed command.
func (p *Printer) Error(err error) error {
	reason, hasReason := RevertReason(err)
	if p.format == FormatJSON {
		out := map[string]interface{}{
			"error": err.Error(),
			"kind":  ErrorKind(err),
		}
		if hasReason {
			out["revertReason"] = reason
		}
		return p.writeJSON(out)
	}

	fmt.Fprintf(p.w, "\n  %s %s\n", red("✗"), err.Error())
	if hasReason {
		fmt.Fprintf(p.w, "    %s %s\n", cyan("Revert reason:"), reason)
	}
	var transportErr *rpc.TransportError
	if errors.As(err, &transportErr) {
		fmt.Fprintf(p.w, "    %s is the node reachable at %s?\n", yellow("⚠"), transportErr.URL)
	}
	fmt.Fprintln(p.w)
	return nil
}
