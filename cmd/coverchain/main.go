// Command coverchain drives the coverage insurance contract on a
// development node: opening and funding policies, filing and adjudicating
// claims, and querying their on-chain state.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmagro/coverchain/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "COVERCHAIN"

const (
	flagConfig          = "config"
	flagDebug           = "debug"
	flagFormat          = "format"
	flagFrom            = "from"
	flagRPCURL          = "rpc.url"
	flagContractAddress = "contract.address"
	flagContractNetwork = "contract.network"
)

var rootCmd = &cobra.Command{
	Use:           "coverchain",
	Short:         "Coverage insurance client for an Ethereum JSON-RPC node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, defaultConfigPath, "Config file path")
	flags.Bool(flagDebug, false, "Enable debug logging")
	flags.String(flagFormat, string(output.FormatTerminal), "Output format: terminal|json")
	flags.String(flagFrom, "", "Sender account (default: transactions.default_account, then the node's first account)")
	flags.String(flagRPCURL, "", `Node endpoint, e.g. "http://127.0.0.1:8545"`)
	flags.String(flagContractAddress, "", "Contract address (overrides the interface description)")
	flags.String(flagContractNetwork, "", "Network id used to look up the contract address")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(policyCmd())
	rootCmd.AddCommand(claimCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(convertCmd())

	flags.VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(f.Name, f) //nolint:errcheck
		viper.BindEnv(f.Name)      //nolint:errcheck
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		format, ferr := output.ParseFormat(viper.GetString(flagFormat))
		if ferr != nil {
			format = output.FormatTerminal
		}
		output.NewPrinter(os.Stderr, format, nil).Error(err) //nolint:errcheck
		stop()
		os.Exit(1)
	}
}
