package cmd

import (
	"fmt"

	"github.com/lmittmann/w3"
	"github.com/spf13/cobra"

	"github.com/21state/spacetoken/internal/checker"
	"github.com/21state/spacetoken/internal/token"
)

type tokenVerifyOptions struct {
	name     string
	symbol   string
	decimals uint
	network  string
	address  string
	repeat   int
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Token metadata checks",
	}

	var o tokenVerifyOptions
	tokenVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify that a token reports the expected name, symbol and decimals",
		Long: `Checks the token's name(), symbol() and decimals() accessors against the
expected values. Each property is checked on its own token handle and a
mismatch fails only that property.

Without --address a token is constructed in memory from the expected values.
With --address the deployed token is read through the network profile's
JSON-RPC endpoint.

Examples:
  spacetoken token verify --name Space --symbol SPACE --decimals 18
  spacetoken token verify --network development --address 0x5FbDB2315678afecb367f032d93F642f64180aa3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenVerify(cmd, o)
		},
	}

	flags := tokenVerifyCmd.Flags()
	flags.StringVar(&o.name, "name", "Space", "Expected token name")
	flags.StringVar(&o.symbol, "symbol", "SPACE", "Expected token symbol")
	flags.UintVar(&o.decimals, "decimals", 18, "Expected token decimals")
	flags.StringVarP(&o.network, "network", "n", "development", "Network profile of the deployed token")
	flags.StringVar(&o.address, "address", "", "Address of the deployed token")
	flags.IntVar(&o.repeat, "repeat", 1, "Read each accessor this many times and require identical results")

	tokenCmd.AddCommand(tokenVerifyCmd)
	return tokenCmd
}

type resultView struct {
	Property string `json:"property"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

func runTokenVerify(cmd *cobra.Command, o tokenVerifyOptions) error {
	ctx := cmd.Context()

	decimals, err := token.ParseDecimals(o.decimals)
	if err != nil {
		return err
	}
	expected := token.Metadata{Name: o.name, Symbol: o.symbol, Decimals: decimals}

	factory := token.NewFactory(expected)
	target := "in-memory token"
	if o.address != "" {
		addr, err := token.ParseAddress(o.address)
		if err != nil {
			return err
		}
		cfg, err := loadProject(ctx)
		if err != nil {
			return err
		}
		network, err := cfg.Profile(o.network)
		if err != nil {
			return err
		}

		debugPrint("Connecting to %s (%s)", network.Name, network.RPCURL())
		client, err := w3.Dial(network.RPCURL())
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", network.Name, err)
		}
		defer client.Close()

		factory = token.AttachFactory(client, addr)
		target = fmt.Sprintf("%s on %s", addr.Hex(), network.Name)
	}

	printInfo("Verifying %s against %s", target, expected)
	suite := &checker.Suite{
		Factory:  factory,
		Expected: expected,
		Repeat:   o.repeat,
		DebugLog: debugPrint,
	}
	report := suite.Run(ctx)

	if opts.JSON {
		views := make([]resultView, 0, len(report.Results))
		for _, r := range report.Results {
			views = append(views, resultView{
				Property: string(r.Property),
				Expected: r.Expected,
				Actual:   r.Actual,
				Passed:   r.Passed(),
				Error:    errString(r.Err),
			})
		}
		if err := printJSON(views); err != nil {
			return err
		}
	} else {
		for _, r := range report.Results {
			fmt.Printf("%s %s\n", mark(r.Passed()), r)
		}
	}

	if failed := report.Failures(); len(failed) > 0 {
		return fmt.Errorf("%d of %d token properties failed verification", len(failed), len(report.Results))
	}
	printInfo("All token properties verified")
	return nil
}
