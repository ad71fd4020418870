// Package config loads the coverchain YAML configuration. Values may use
// ${VAR} references, expanded from the environment before parsing.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	RPC          RPC          `yaml:"rpc"`
	Contract     Contract     `yaml:"contract"`
	Transactions Transactions `yaml:"transactions"`
	Currency     Currency     `yaml:"currency"`
	Ledger       Ledger       `yaml:"ledger"`
	Log          Log          `yaml:"log"`
}

type RPC struct {
	URL     string        `yaml:"url"`     // node endpoint, supports ${VAR}
	Timeout time.Duration `yaml:"timeout"` // per-call HTTP timeout
}

type Contract struct {
	Interface string `yaml:"interface"` // path to a JSON artifact; embedded description when empty
	Network   string `yaml:"network"`   // network id key in the artifact
	Address   string `yaml:"address"`   // overrides the artifact address
}

type Transactions struct {
	GasLimit       uint64        `yaml:"gas_limit"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	MaxAttempts    int           `yaml:"max_attempts"`
	DefaultAccount string        `yaml:"default_account"` // falls back to eth_accounts[0]
}

type Currency struct {
	Rate   string `yaml:"rate"`   // display units per 1 ether
	Symbol string `yaml:"symbol"` // display currency code
}

type Ledger struct {
	Kafka Kafka `yaml:"kafka"`
}

type Kafka struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	RequiredAcks string        `yaml:"required_acks"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Enabled reports whether records go to Kafka rather than the log.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Log struct {
	Debug bool `yaml:"debug"`
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Default returns the configuration of a local development node. Load
// starts from it, so a file only needs the keys it changes.
func Default() *Config {
	return &Config{
		RPC: RPC{
			URL:     "http://127.0.0.1:8545",
			Timeout: 10 * time.Second,
		},
		Contract: Contract{
			Network: "5777",
		},
		Transactions: Transactions{
			GasLimit:     3_000_000,
			PollInterval: time.Second,
			MaxAttempts:  30,
		},
		Currency: Currency{
			Rate:   "2000",
			Symbol: "USD",
		},
	}
}

// ExchangeRate parses currency.rate.
func (c *Config) ExchangeRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Currency.Rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("currency.rate: %w", err)
	}
	return rate, nil
}

// Validate checks required fields and ranges. Suspicious but legal values
// produce a warning on stderr.
func (c *Config) Validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	u, err := url.Parse(c.RPC.URL)
	if err != nil {
		return fmt.Errorf("rpc.url: invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("rpc.url: invalid url (missing scheme or host)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("rpc.url: invalid url scheme %q (expected http or https)", u.Scheme)
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be > 0")
	}

	if c.Contract.Address != "" && !addressPattern.MatchString(c.Contract.Address) {
		return fmt.Errorf("contract.address %q is not a 0x-prefixed 20-byte hex address", c.Contract.Address)
	}
	if c.Contract.Address == "" && c.Contract.Network == "" {
		return fmt.Errorf("one of contract.address or contract.network is required")
	}

	if c.Transactions.GasLimit == 0 {
		return fmt.Errorf("transactions.gas_limit must be > 0")
	}
	if c.Transactions.PollInterval <= 0 {
		return fmt.Errorf("transactions.poll_interval must be > 0")
	}
	if c.Transactions.MaxAttempts <= 0 {
		return fmt.Errorf("transactions.max_attempts must be > 0")
	}
	if a := c.Transactions.DefaultAccount; a != "" && !addressPattern.MatchString(a) {
		return fmt.Errorf("transactions.default_account %q is not a 0x-prefixed 20-byte hex address", a)
	}

	rate, err := c.ExchangeRate()
	if err != nil {
		return err
	}
	if !rate.IsPositive() {
		return fmt.Errorf("currency.rate must be > 0")
	}

	if k := c.Ledger.Kafka; k.Enabled() {
		if k.Topic == "" {
			return fmt.Errorf("ledger.kafka.topic is required when brokers are set")
		}
		switch k.RequiredAcks {
		case "", "none", "one", "all":
		default:
			return fmt.Errorf("ledger.kafka.required_acks %q must be none, one or all", k.RequiredAcks)
		}
	}

	if d := c.RPC.Timeout; d < 500*time.Millisecond {
		fmt.Fprintf(os.Stderr, "Warning: rpc timeout is very low (%s); requests may fail under normal network jitter\n", d)
	} else if d > 2*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: rpc timeout is very high (%s); failures may take a long time to surface\n", d)
	}
	if wait := c.Transactions.PollInterval * time.Duration(c.Transactions.MaxAttempts); wait > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: transactions may be polled for up to %s before timing out\n", wait)
	}

	return nil
}

// Load reads path over the defaults, expanding ${VAR} references first.
// The result is not validated: callers apply their overrides and then call
// Validate once.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
