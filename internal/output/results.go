package output

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/dmagro/coverchain/internal/insurance"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/shopspring/decimal"
)

func (p *Printer) writeJSON(v interface{}) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

type accountJSON struct {
	Address string     `json:"address"`
	Balance amountJSON `json:"balance"`
}

func (p *Printer) Status(s *insurance.NodeStatus) error {
	if p.format == FormatJSON {
		accounts := make([]accountJSON, len(s.Accounts))
		for i, a := range s.Accounts {
			accounts[i] = accountJSON{Address: a.Address, Balance: p.amountJSON(a.Wei)}
		}
		out := map[string]interface{}{
			"clientVersion":   s.ClientVersion,
			"contractAddress": s.ContractAddress,
			"accounts":        accounts,
		}
		if s.Latency != nil {
			out["latency"] = map[string]interface{}{
				"samples": s.Latency.Samples,
				"p50Ms":   s.Latency.P50.Milliseconds(),
				"p95Ms":   s.Latency.P95.Milliseconds(),
				"maxMs":   s.Latency.Max.Milliseconds(),
			}
		}
		return p.writeJSON(out)
	}

	p.header("Node Status")
	p.field("Client", s.ClientVersion)
	p.field("Contract", s.ContractAddress)
	if s.Latency != nil {
		p.field("Latency", fmt.Sprintf("p50 %s  p95 %s  max %s (%d samples)",
			s.Latency.P50.Round(time.Microsecond), s.Latency.P95.Round(time.Microsecond),
			s.Latency.Max.Round(time.Microsecond), s.Latency.Samples))
	}
	p.blank()

	if len(s.Accounts) == 0 {
		p.field("Accounts", yellow("none unlocked"))
		p.blank()
		return nil
	}
	tbl := p.newTable("#", "Account", "Balance")
	for i, a := range s.Accounts {
		tbl.AddRow(i, a.Address, p.amountText(a.Wei))
	}
	tbl.Print()
	p.blank()
	return nil
}

func (p *Printer) PolicyOpened(r *insurance.OpenPolicyResult) error {
	tx := newTxJSON(r.TxHash, r.Receipt)
	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{
			"policyId":    idString(r.PolicyID),
			"coverage":    p.amountJSON(r.CoverageWei),
			"premiumPaid": p.amountJSON(r.PremiumWei),
			"transaction": tx,
		})
	}

	p.header("Policy Opened")
	p.field("Policy ID", green(idString(r.PolicyID)))
	p.field("Coverage", p.amountText(r.CoverageWei))
	p.field("Premium Paid", p.amountText(r.PremiumWei))
	p.txFields(tx)
	p.blank()
	return nil
}

func (p *Printer) PremiumPaid(r *insurance.PayPremiumResult) error {
	tx := newTxJSON(r.TxHash, r.Receipt)
	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{
			"policyId":    idString(r.PolicyID),
			"amount":      p.amountJSON(r.AmountWei),
			"transaction": tx,
		})
	}

	p.header("Premium Paid")
	p.field("Policy ID", idString(r.PolicyID))
	p.field("Amount", p.amountText(r.AmountWei))
	p.txFields(tx)
	p.blank()
	return nil
}

func (p *Printer) ClaimFiled(r *insurance.FileClaimResult) error {
	tx := newTxJSON(r.TxHash, r.Receipt)
	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{
			"claimId":     idString(r.ClaimID),
			"policyId":    idString(r.PolicyID),
			"amount":      p.amountJSON(r.AmountWei),
			"transaction": tx,
		})
	}

	p.header("Claim Filed")
	p.field("Claim ID", green(idString(r.ClaimID)))
	p.field("Policy ID", idString(r.PolicyID))
	p.field("Amount", p.amountText(r.AmountWei))
	p.txFields(tx)
	p.blank()
	return nil
}

func (p *Printer) ClaimAdjudicated(r *insurance.AdjudicateClaimResult) error {
	tx := newTxJSON(r.TxHash, r.Receipt)
	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{
			"claimId":     idString(r.ClaimID),
			"approved":    r.Approved,
			"transaction": tx,
		})
	}

	p.header("Claim Adjudicated")
	p.field("Claim ID", idString(r.ClaimID))
	p.field("Decision", decision(r.Approved))
	p.txFields(tx)
	p.blank()
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() || t.Unix() == 0 {
		return "—"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func (p *Printer) Policy(pol *insurance.Policy, showRaw bool) error {
	if p.format == FormatJSON {
		out := map[string]interface{}{
			"policyId":  idString(pol.ID),
			"insured":   pol.Insured,
			"coverage":  p.amountJSON(pol.CoverageWei),
			"premium":   p.amountJSON(pol.PremiumWei),
			"startDate": pol.StartDate,
			"endDate":   pol.EndDate,
			"active":    pol.Active,
			"balance":   p.amountJSON(pol.BalanceWei),
		}
		if showRaw {
			out["raw"] = pol.Raw
		}
		return p.writeJSON(out)
	}

	p.header("Policy #" + idString(pol.ID))
	p.field("Insured", pol.Insured)
	p.field("Coverage", p.amountText(pol.CoverageWei))
	p.field("Premium", p.amountText(pol.PremiumWei))
	p.field("Balance", p.amountText(pol.BalanceWei))
	p.field("Start", formatDate(pol.StartDate))
	p.field("End", formatDate(pol.EndDate))
	p.field("Active", yesNo(pol.Active))
	if showRaw {
		p.blank()
		p.field("Raw Result", pol.Raw)
	}
	p.blank()
	return nil
}

func (p *Printer) Claim(c *insurance.Claim, showRaw bool) error {
	if p.format == FormatJSON {
		out := map[string]interface{}{
			"claimId":        idString(c.ID),
			"policyId":       idString(c.PolicyID),
			"claimant":       c.Claimant,
			"amount":         p.amountJSON(c.AmountWei),
			"proofReference": c.ProofReference,
			"validated":      c.Validated,
			"paid":           c.Paid,
		}
		if showRaw {
			out["raw"] = c.Raw
		}
		return p.writeJSON(out)
	}

	p.header("Claim #" + idString(c.ID))
	p.field("Policy ID", idString(c.PolicyID))
	p.field("Claimant", c.Claimant)
	p.field("Amount", p.amountText(c.AmountWei))
	p.field("Proof", c.ProofReference)
	p.field("Validated", yesNo(c.Validated))
	p.field("Paid", yesNo(c.Paid))
	if showRaw {
		p.blank()
		p.field("Raw Result", c.Raw)
	}
	p.blank()
	return nil
}

type policyEventJSON struct {
	PolicyID    string     `json:"policyId"`
	Insured     string     `json:"insured"`
	Coverage    amountJSON `json:"coverage"`
	BlockNumber string     `json:"blockNumber"`
	TxHash      string     `json:"transactionHash"`
	coverageWei *big.Int
}

// PolicyEvents renders PolicyCreated logs. Logs that do not decode are
// reported with their raw topics.
func (p *Printer) PolicyEvents(logs []rpc.Log) error {
	events := make([]policyEventJSON, 0, len(logs))
	var undecoded []rpc.Log
	for _, l := range logs {
		e, err := insurance.DecodePolicyCreated(l)
		if err != nil {
			undecoded = append(undecoded, l)
			continue
		}
		events = append(events, policyEventJSON{
			PolicyID:    e.PolicyID.String(),
			Insured:     e.Insured,
			Coverage:    p.amountJSON(e.CoverageWei),
			BlockNumber: l.BlockNumber,
			TxHash:      l.TransactionHash,
			coverageWei: e.CoverageWei,
		})
	}

	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{"events": events, "undecoded": nonNilLogs(undecoded)})
	}

	p.header("PolicyCreated Events")
	if len(events) == 0 && len(undecoded) == 0 {
		p.field("Events", yellow("none found"))
		p.blank()
		return nil
	}
	tbl := p.newTable("Policy", "Insured", "Coverage", "Block", "Transaction")
	for _, e := range events {
		tbl.AddRow(e.PolicyID, e.Insured, p.amountText(e.coverageWei), blockText(e.BlockNumber), truncateHash(e.TxHash))
	}
	tbl.Print()
	p.undecoded(undecoded)
	p.blank()
	return nil
}

type claimEventJSON struct {
	ClaimID     string     `json:"claimId"`
	PolicyID    string     `json:"policyId"`
	Amount      amountJSON `json:"amount"`
	BlockNumber string     `json:"blockNumber"`
	TxHash      string     `json:"transactionHash"`
	amountWei   *big.Int
}

// ClaimEvents renders ClaimFiled logs.
func (p *Printer) ClaimEvents(logs []rpc.Log) error {
	events := make([]claimEventJSON, 0, len(logs))
	var undecoded []rpc.Log
	for _, l := range logs {
		e, err := insurance.DecodeClaimFiled(l)
		if err != nil {
			undecoded = append(undecoded, l)
			continue
		}
		events = append(events, claimEventJSON{
			ClaimID:     e.ClaimID.String(),
			PolicyID:    e.PolicyID.String(),
			Amount:      p.amountJSON(e.AmountWei),
			BlockNumber: l.BlockNumber,
			TxHash:      l.TransactionHash,
			amountWei:   e.AmountWei,
		})
	}

	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{"events": events, "undecoded": nonNilLogs(undecoded)})
	}

	p.header("ClaimFiled Events")
	if len(events) == 0 && len(undecoded) == 0 {
		p.field("Events", yellow("none found"))
		p.blank()
		return nil
	}
	tbl := p.newTable("Claim", "Policy", "Amount", "Block", "Transaction")
	for _, e := range events {
		tbl.AddRow(e.ClaimID, e.PolicyID, p.amountText(e.amountWei), blockText(e.BlockNumber), truncateHash(e.TxHash))
	}
	tbl.Print()
	p.undecoded(undecoded)
	p.blank()
	return nil
}

func (p *Printer) undecoded(logs []rpc.Log) {
	for _, l := range logs {
		p.field(yellow("Undecoded"), indent(l.TransactionHash+" "+l.Data))
	}
}

func nonNilLogs(logs []rpc.Log) []rpc.Log {
	if logs == nil {
		return []rpc.Log{}
	}
	return logs
}

func blockText(hexBlock string) string {
	n, err := rpc.ParseHexUint64(hexBlock)
	if err != nil || hexBlock == "" {
		return hexBlock
	}
	return formatWithCommas(n)
}

// Conversion renders a display amount next to its wei value.
func (p *Printer) Conversion(display decimal.Decimal, wei *big.Int) error {
	amount := p.amountJSON(wei)
	if p.format == FormatJSON {
		return p.writeJSON(map[string]interface{}{
			"input":  display.String(),
			"amount": amount,
			"rate":   p.rateString(),
		})
	}

	p.header("Conversion")
	if p.conv != nil {
		p.field("Rate", p.rateString())
	}
	p.field("Display", display.String()+" "+amount.Symbol)
	p.field("Ether", amount.Ether)
	p.field("Wei", amount.Wei)
	p.blank()
	return nil
}

func (p *Printer) rateString() string {
	if p.conv == nil {
		return ""
	}
	return p.conv.Rate().String() + " " + p.conv.Symbol() + "/ETH"
}
