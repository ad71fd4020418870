package insurance

import (
	"context"
	"fmt"
	"time"

	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/stats"
	"golang.org/x/sync/errgroup"
)

// NodeStatus gathers the node's client version and the balances of its
// unlocked accounts concurrently. Any failing call fails the whole status.
func (s *Service) NodeStatus(ctx context.Context) (*NodeStatus, error) {
	status := &NodeStatus{ContractAddress: s.orch.ContractAddress()}
	var addresses []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		version, err := s.accounts.ClientVersion(gctx)
		if err != nil {
			return fmt.Errorf("client version: %w", err)
		}
		status.ClientVersion = version
		return nil
	})
	g.Go(func() error {
		accounts, err := s.accounts.Accounts(gctx)
		if err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
		addresses = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Each goroutine owns one index, so no lock is needed.
	status.Accounts = make([]AccountStatus, len(addresses))
	g, gctx = errgroup.WithContext(ctx)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			wei, err := s.accounts.GetBalance(gctx, addr, "latest")
			if err != nil {
				return fmt.Errorf("balance of %s: %w", addr, err)
			}
			ether, err := currency.WeiToEther(wei)
			if err != nil {
				return err
			}
			display, err := s.converter.FromBaseUnit(wei)
			if err != nil {
				return err
			}
			status.Accounts[i] = AccountStatus{Address: addr, Wei: wei, Ether: ether, Display: display}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return status, nil
}

// ProbeLatency times samples sequential web3_clientVersion round trips.
// The first failed call aborts the probe.
func (s *Service) ProbeLatency(ctx context.Context, samples int) (stats.TailLatency, error) {
	if samples <= 0 {
		return stats.TailLatency{}, fmt.Errorf("samples must be positive, got %d", samples)
	}
	latencies := make([]time.Duration, 0, samples)
	for i := 0; i < samples; i++ {
		start := time.Now()
		if _, err := s.accounts.ClientVersion(ctx); err != nil {
			return stats.TailLatency{}, fmt.Errorf("latency probe %d: %w", i+1, err)
		}
		latencies = append(latencies, time.Since(start))
	}
	return stats.CalculateTailLatency(latencies), nil
}
