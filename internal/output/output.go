// Package output renders command results either as colored terminal text
// or as indented JSON.
package output

import (
	"fmt"
	"io"
	"math/big"

	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/rpc"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatJSON     Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTerminal:
		return FormatTerminal, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected terminal or json)", s)
	}
}

// Printer writes results to w in one format. Amounts are shown in ether and
// in the converter's display currency.
type Printer struct {
	w      io.Writer
	format Format
	conv   *currency.Converter
}

func NewPrinter(w io.Writer, format Format, conv *currency.Converter) *Printer {
	return &Printer{w: w, format: format, conv: conv}
}

func (p *Printer) Format() Format { return p.format }

type amountJSON struct {
	Wei     string `json:"wei"`
	Ether   string `json:"ether"`
	Display string `json:"display,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

func (p *Printer) amountJSON(wei *big.Int) amountJSON {
	if wei == nil {
		return amountJSON{}
	}
	out := amountJSON{Wei: wei.String()}
	if ether, err := currency.WeiToEther(wei); err == nil {
		out.Ether = ether.String()
	}
	if p.conv != nil {
		if display, err := p.conv.FromBaseUnit(wei); err == nil {
			out.Display = display.StringFixed(2)
			out.Symbol = p.conv.Symbol()
		}
	}
	return out
}

// amountText renders wei as "0.05 ETH (100.00 USD)".
func (p *Printer) amountText(wei *big.Int) string {
	a := p.amountJSON(wei)
	if a.Wei == "" {
		return "—"
	}
	if a.Display == "" {
		return a.Ether + " ETH"
	}
	return fmt.Sprintf("%s ETH (%s %s)", a.Ether, a.Display, a.Symbol)
}

type txJSON struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed,omitempty"`
	Succeeded   bool   `json:"succeeded"`
}

func newTxJSON(hash string, receipt *rpc.Receipt) txJSON {
	out := txJSON{Hash: hash}
	if receipt == nil {
		return out
	}
	if parsed, err := receipt.Parsed(); err == nil {
		out.BlockNumber = parsed.BlockNumber
		out.GasUsed = parsed.GasUsed
		out.Succeeded = parsed.Succeeded
	}
	return out
}

func idString(id *big.Int) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func formatWithCommas(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func truncateHash(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + "..." + hash[len(hash)-6:]
}
