package insurance

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/rpc"
	"go.uber.org/zap"
)

// GetPolicy reads a policy and decodes the contract's return tuple.
func (s *Service) GetPolicy(ctx context.Context, policyID *big.Int) (*Policy, error) {
	out, raw, err := s.read(ctx, FnGetPolicy, policyID)
	if err != nil {
		return nil, err
	}
	if len(out) != 7 {
		return nil, &abi.DecodingError{Reason: fmt.Sprintf("%s returned %d values, want 7", FnGetPolicy, len(out))}
	}
	t := tuple{fn: FnGetPolicy, values: out}
	pol := &Policy{
		ID:          policyID,
		Insured:     t.address(0),
		CoverageWei: t.uint(1),
		PremiumWei:  t.uint(2),
		StartDate:   unixTime(t.uint(3)),
		EndDate:     unixTime(t.uint(4)),
		Active:      t.boolean(5),
		BalanceWei:  t.uint(6),
		Raw:         raw,
	}
	if t.err != nil {
		return nil, t.err
	}
	return pol, nil
}

// GetClaim reads a claim and decodes the contract's return tuple.
func (s *Service) GetClaim(ctx context.Context, claimID *big.Int) (*Claim, error) {
	out, raw, err := s.read(ctx, FnGetClaim, claimID)
	if err != nil {
		return nil, err
	}
	if len(out) != 6 {
		return nil, &abi.DecodingError{Reason: fmt.Sprintf("%s returned %d values, want 6", FnGetClaim, len(out))}
	}
	t := tuple{fn: FnGetClaim, values: out}
	claim := &Claim{
		ID:             claimID,
		PolicyID:       t.uint(0),
		Claimant:       t.address(1),
		AmountWei:      t.uint(2),
		ProofReference: t.str(3),
		Validated:      t.boolean(4),
		Paid:           t.boolean(5),
		Raw:            raw,
	}
	if t.err != nil {
		return nil, t.err
	}
	return claim, nil
}

// tuple converts decoded return values to Go types, keeping the first
// mismatch. The output types come from the loaded interface description,
// so they may not be what this package expects.
type tuple struct {
	fn     string
	values []interface{}
	err    error
}

func (t *tuple) mismatch(i int, want string) {
	if t.err == nil {
		t.err = &abi.DecodingError{
			Offset: i * abi.WordSize,
			Reason: fmt.Sprintf("%s value %d is %T, want %s", t.fn, i, t.values[i], want),
		}
	}
}

func (t *tuple) uint(i int) *big.Int {
	v, ok := t.values[i].(*big.Int)
	if !ok {
		t.mismatch(i, "uint256")
		return new(big.Int)
	}
	return v
}

func (t *tuple) address(i int) string {
	v, ok := t.values[i].(string)
	if !ok || len(v) != 42 {
		t.mismatch(i, "address")
		return ""
	}
	return v
}

func (t *tuple) str(i int) string {
	v, ok := t.values[i].(string)
	if !ok {
		t.mismatch(i, "string")
		return ""
	}
	return v
}

func (t *tuple) boolean(i int) bool {
	v, ok := t.values[i].(bool)
	if !ok {
		t.mismatch(i, "bool")
	}
	return v
}

func (s *Service) read(ctx context.Context, fn string, id *big.Int) ([]interface{}, string, error) {
	if id == nil {
		return nil, "", &abi.EncodingError{Index: 0, Type: "uint256", Reason: "id is required"}
	}
	method, err := s.orch.Contract().Method(fn)
	if err != nil {
		return nil, "", err
	}
	raw, err := s.orch.Read(ctx, fn, abi.Uint(id))
	if err != nil {
		return nil, "", err
	}
	out, err := method.DecodeOutputs(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("failed to decode %s(%s): %w", fn, id, err)
	}
	return out, raw, nil
}

func unixTime(secs *big.Int) time.Time {
	if !secs.IsInt64() {
		return time.Time{}
	}
	return time.Unix(secs.Int64(), 0).UTC()
}

// ScanEvents returns the contract's logs for eventName between the given
// blocks (earliest and latest when empty). This is a best-effort query: any
// failure is logged and yields an empty slice.
func (s *Service) ScanEvents(ctx context.Context, eventName, fromBlock, toBlock string) []rpc.Log {
	event, err := s.orch.Contract().Event(eventName)
	if err != nil {
		s.logger.Sugar().Warnw("event scan skipped", zap.String("event", eventName), zap.Error(err))
		return []rpc.Log{}
	}

	from := rpc.NormalizeBlockArg(fromBlock)
	if fromBlock == "" {
		from = "earliest"
	}
	to := rpc.NormalizeBlockArg(toBlock)

	logs, err := s.orch.Logs(ctx, []string{event.Topic()}, from, to)
	if err != nil {
		s.logger.Sugar().Warnw("event scan failed",
			zap.String("event", event.Signature()),
			zap.String("fromBlock", from),
			zap.String("toBlock", to),
			zap.Error(err),
		)
		return []rpc.Log{}
	}
	if logs == nil {
		logs = []rpc.Log{}
	}
	s.logger.Sugar().Debugw("event scan",
		zap.String("event", event.Signature()),
		zap.Int("count", len(logs)),
	)
	return logs
}

// ScanPolicyCreatedEvents returns PolicyCreated logs, best effort.
func (s *Service) ScanPolicyCreatedEvents(ctx context.Context, fromBlock, toBlock string) []rpc.Log {
	return s.ScanEvents(ctx, EventPolicyCreated, fromBlock, toBlock)
}

// ScanClaimFiledEvents returns ClaimFiled logs, best effort.
func (s *Service) ScanClaimFiledEvents(ctx context.Context, fromBlock, toBlock string) []rpc.Log {
	return s.ScanEvents(ctx, EventClaimFiled, fromBlock, toBlock)
}

// DecodePolicyCreated reads policyId and insured from the indexed topics and
// coverageAmount from the data.
func DecodePolicyCreated(l rpc.Log) (*PolicyCreated, error) {
	if len(l.Topics) < 3 {
		return nil, &abi.DecodingError{Reason: fmt.Sprintf("%s log has %d topics, want 3", EventPolicyCreated, len(l.Topics))}
	}
	policyID, err := abi.DecodeTopicUint(l.Topics, 1)
	if err != nil {
		return nil, err
	}
	insured, err := abi.DecodeOutputs([]string{"address"}, l.Topics[2])
	if err != nil {
		return nil, err
	}
	data, err := abi.DecodeOutputs([]string{"uint256"}, l.Data)
	if err != nil {
		return nil, err
	}
	return &PolicyCreated{
		PolicyID:    policyID,
		Insured:     insured[0].(string),
		CoverageWei: data[0].(*big.Int),
		Log:         l,
	}, nil
}

// DecodeClaimFiled reads claimId and policyId from the indexed topics and
// amountClaimed from the data.
func DecodeClaimFiled(l rpc.Log) (*ClaimFiled, error) {
	if len(l.Topics) < 3 {
		return nil, &abi.DecodingError{Reason: fmt.Sprintf("%s log has %d topics, want 3", EventClaimFiled, len(l.Topics))}
	}
	claimID, err := abi.DecodeTopicUint(l.Topics, 1)
	if err != nil {
		return nil, err
	}
	policyID, err := abi.DecodeTopicUint(l.Topics, 2)
	if err != nil {
		return nil, err
	}
	data, err := abi.DecodeOutputs([]string{"uint256"}, l.Data)
	if err != nil {
		return nil, err
	}
	return &ClaimFiled{
		ClaimID:   claimID,
		PolicyID:  policyID,
		AmountWei: data[0].(*big.Int),
		Log:       l,
	}, nil
}
