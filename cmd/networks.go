package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/21state/spacetoken/internal/endpoint"
	"github.com/21state/spacetoken/internal/speedtest"
)

func newNetworksCmd() *cobra.Command {
	networksCmd := &cobra.Command{
		Use:   "networks",
		Short: "Inspect configured network profiles",
	}

	networksListCmd := &cobra.Command{
		Use:   "list",
		Short: "List network profiles",
		Args:  cobra.NoArgs,
		RunE:  runNetworksList,
	}

	networksShowCmd := &cobra.Command{
		Use:   "show <profile>",
		Short: "Show a single network profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runNetworksShow,
	}

	var measureLatency bool
	networksCheckCmd := &cobra.Command{
		Use:   "check [profile...]",
		Short: "Check that profile endpoints are reachable",
		Long: `Connects to each profile's JSON-RPC endpoint and compares the reported
chain id with the profile's network_id ("*" matches any chain).
Checks every profile when none are named.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworksCheck(cmd, args, measureLatency)
		},
	}
	networksCheckCmd.Flags().BoolVar(&measureLatency, "latency", false, "Measure RPC latency of healthy endpoints")

	networksCmd.AddCommand(networksListCmd)
	networksCmd.AddCommand(networksShowCmd)
	networksCmd.AddCommand(networksCheckCmd)
	return networksCmd
}

type networkView struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	NetworkID string `json:"network_id"`
	URL       string `json:"url"`
}

func runNetworksList(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	views := make([]networkView, 0, len(cfg.Profiles()))
	for _, n := range cfg.Networks() {
		views = append(views, networkView{Name: n.Name, Host: n.Host, Port: n.Port, NetworkID: n.NetworkID.String(), URL: n.RPCURL()})
	}

	if opts.JSON {
		return printJSON(views)
	}
	if len(views) == 0 {
		printInfo("No network profiles configured")
		return nil
	}
	for _, v := range views {
		fmt.Printf("%-16s %s:%d  network_id=%s\n", colorBold(v.Name), v.Host, v.Port, v.NetworkID)
	}
	return nil
}

func runNetworksShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	n, err := cfg.Profile(args[0])
	if err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(networkView{Name: n.Name, Host: n.Host, Port: n.Port, NetworkID: n.NetworkID.String(), URL: n.RPCURL()})
	}
	fmt.Printf("Network:    %s\n", colorBold(n.Name))
	fmt.Printf("Host:       %s\n", n.Host)
	fmt.Printf("Port:       %d\n", n.Port)
	fmt.Printf("Network ID: %s\n", n.NetworkID)
	fmt.Printf("RPC URL:    %s\n", n.RPCURL())
	return nil
}

type checkView struct {
	endpoint.Info
	LatencyMS float64 `json:"latency_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func runNetworksCheck(cmd *cobra.Command, args []string, measureLatency bool) error {
	ctx := cmd.Context()
	cfg, err := loadProject(ctx)
	if err != nil {
		return err
	}

	debugPrint("Initializing managers")
	endpointMgr := endpoint.NewManager(cfg, opts.Timeout, debugPrint)

	endpoints, err := endpointMgr.Select(args...)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		return errors.New("no network profiles configured")
	}

	printInfo("Checking %d network profiles", len(endpoints))
	endpoints = endpointMgr.CheckHealth(ctx, endpoints)
	healthy := len(endpoint.Healthy(endpoints))
	printInfo("%d of %d endpoints are healthy", healthy, len(endpoints))

	if measureLatency && healthy > 0 {
		printInfo("Testing RPC latency...")
		endpoints = speedtest.NewTester(debugPrint).TestEndpoints(ctx, endpoints)
		speedtest.SortByLatency(endpoints)
	}

	if opts.JSON {
		views := make([]checkView, 0, len(endpoints))
		for _, e := range endpoints {
			views = append(views, checkView{Info: e, LatencyMS: float64(e.Latency.Microseconds()) / 1000, Error: errString(e.Err)})
		}
		if err := printJSON(views); err != nil {
			return err
		}
	} else {
		for _, e := range endpoints {
			if e.Healthy {
				fmt.Printf("%s %s chain_id=%d\n", mark(true), e, e.ChainID)
				continue
			}
			fmt.Printf("%s %s: %v\n", mark(false), e, e.Err)
		}
	}

	if healthy < len(endpoints) {
		return fmt.Errorf("%d network profiles failed the health check", len(endpoints)-healthy)
	}
	return nil
}
