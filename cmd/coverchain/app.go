package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/config"
	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/env"
	"github.com/dmagro/coverchain/internal/insurance"
	"github.com/dmagro/coverchain/internal/ledger"
	"github.com/dmagro/coverchain/internal/logger"
	"github.com/dmagro/coverchain/internal/output"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/txn"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultConfigPath = "coverchain.yaml"

// app holds everything a command needs. It is built once per invocation
// and its configuration is not modified afterwards.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	converter *currency.Converter
	printer   *output.Printer

	client   *rpc.Client
	service  *insurance.Service
	recorder ledger.Recorder
}

// newOfflineApp loads configuration, logger and printer without touching
// the node.
func newOfflineApp() (*app, error) {
	if err := env.Load(); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Log.Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	rate, err := cfg.ExchangeRate()
	if err != nil {
		return nil, err
	}
	conv, err := currency.NewConverter(rate, cfg.Currency.Symbol)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(viper.GetString(flagFormat))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       *cfg,
		logger:    l,
		converter: conv,
		printer:   output.NewPrinter(os.Stdout, format, conv),
	}, nil
}

// newApp also wires the node client, orchestrator, ledger recorder and
// domain service.
func newApp() (*app, error) {
	a, err := newOfflineApp()
	if err != nil {
		return nil, err
	}

	contract, address, err := resolveContract(a.cfg.Contract)
	if err != nil {
		return nil, err
	}

	a.client = rpc.NewClient(rpc.ClientConfig{URL: a.cfg.RPC.URL, Timeout: a.cfg.RPC.Timeout}, a.logger)

	orch, err := txn.NewOrchestrator(a.client, contract, txn.Config{
		ContractAddress: address,
		GasLimit:        a.cfg.Transactions.GasLimit,
		PollInterval:    a.cfg.Transactions.PollInterval,
		MaxAttempts:     a.cfg.Transactions.MaxAttempts,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	a.recorder, err = newRecorder(a.cfg.Ledger, a.logger)
	if err != nil {
		return nil, err
	}

	a.service, err = insurance.NewService(orch, a.client, a.converter, a.logger, insurance.WithRecorder(a.recorder))
	if err != nil {
		return nil, err
	}

	a.logger.Sugar().Debugw("coverchain ready",
		zap.String("rpcUrl", a.cfg.RPC.URL),
		zap.String("contract", contract.Name),
		zap.String("contractAddress", address),
	)
	return a, nil
}

func (a *app) Close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.logger.Sugar().Errorw("failed to close ledger recorder", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// sender resolves the --from flag, the configured default account, or the
// node's first account, in that order.
func (a *app) sender(ctx context.Context) (string, error) {
	account := viper.GetString(flagFrom)
	if account == "" {
		account = a.cfg.Transactions.DefaultAccount
	}
	return a.service.ResolveAccount(ctx, account)
}

// loadConfig reads the config file, applies flag and environment overrides
// and validates the result once. A missing file is only an error when it
// was asked for.
func loadConfig() (*config.Config, error) {
	path := viper.GetString(flagConfig)

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if v := viper.GetString(flagRPCURL); v != "" {
		cfg.RPC.URL = v
	}
	if v := viper.GetString(flagContractAddress); v != "" {
		cfg.Contract.Address = v
	}
	if v := viper.GetString(flagContractNetwork); v != "" {
		cfg.Contract.Network = v
	}
	if viper.GetBool(flagDebug) {
		cfg.Log.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveContract(c config.Contract) (*abi.Contract, string, error) {
	var (
		contract *abi.Contract
		err      error
	)
	if c.Interface != "" {
		contract, err = abi.LoadContract(c.Interface)
	} else {
		contract, err = abi.DefaultContract()
	}
	if err != nil {
		return nil, "", err
	}

	if c.Address != "" {
		return contract, c.Address, nil
	}
	address, err := contract.AddressFor(c.Network)
	if err != nil {
		return nil, "", err
	}
	return contract, address, nil
}

func newRecorder(cfg config.Ledger, l *zap.Logger) (ledger.Recorder, error) {
	if !cfg.Kafka.Enabled() {
		return ledger.NewLogRecorder(l), nil
	}
	return ledger.NewKafkaRecorder(ledger.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	}, l)
}
