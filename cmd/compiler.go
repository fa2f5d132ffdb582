package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/21state/spacetoken/internal/config"
	"github.com/21state/spacetoken/internal/downloader"
	"github.com/21state/spacetoken/internal/solc"
)

func newCompilerCmd() *cobra.Command {
	compilerCmd := &cobra.Command{
		Use:   "compiler",
		Short: "Inspect the solc compiler descriptor",
	}

	compilerShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configured compiler version and optimizer settings",
		Args:  cobra.NoArgs,
		RunE:  runCompilerShow,
	}

	compilerResolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the version expression to a published solc release",
		Args:  cobra.NoArgs,
		RunE:  runCompilerResolve,
	}

	var solcDir string
	compilerFetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the resolved solc release binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompilerFetch(cmd, solcDir)
		},
	}
	compilerFetchCmd.Flags().StringVar(&solcDir, "dir", "", "Destination directory (default ~/.spacetoken/solc)")

	compilerCmd.AddCommand(compilerShowCmd)
	compilerCmd.AddCommand(compilerResolveCmd)
	compilerCmd.AddCommand(compilerFetchCmd)
	return compilerCmd
}

type compilerView struct {
	Version          string `json:"version"`
	DefaultVersion   bool   `json:"default_version"`
	OptimizerEnabled bool   `json:"optimizer_enabled"`
	OptimizerRuns    int    `json:"optimizer_runs"`
}

func viewCompiler(c config.Compiler) compilerView {
	return compilerView{
		Version:          c.VersionExpr(),
		DefaultVersion:   c.IsDefaultVersion(),
		OptimizerEnabled: c.Optimizer.Enabled,
		OptimizerRuns:    c.Optimizer.Runs,
	}
}

func runCompilerShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}
	v := viewCompiler(cfg.Compiler())

	if opts.JSON {
		return printJSON(v)
	}
	version := v.Version
	if v.DefaultVersion {
		version += " (default)"
	}
	fmt.Printf("Version:   %s\n", colorBold(version))
	fmt.Printf("Optimizer: enabled=%v runs=%d\n", v.OptimizerEnabled, v.OptimizerRuns)
	return nil
}

func resolveRelease(cmd *cobra.Command) (solc.Release, error) {
	cfg, err := loadProject(cmd.Context())
	if err != nil {
		return solc.Release{}, err
	}

	platform, err := solc.Platform()
	if err != nil {
		return solc.Release{}, err
	}

	c := cfg.Compiler()
	debugPrint("Resolving solc %s for %s from %s", c.VersionExpr(), platform, opts.SolcBaseURL)
	rel, err := solc.NewResolver(opts.SolcBaseURL, platform, opts.Timeout).Resolve(cmd.Context(), c)
	if err != nil {
		return solc.Release{}, fmt.Errorf("failed to resolve compiler: %w", err)
	}
	debugPrint("Resolved %s to %s", c.VersionExpr(), rel.URL)
	return rel, nil
}

func runCompilerResolve(cmd *cobra.Command, args []string) error {
	rel, err := resolveRelease(cmd)
	if err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(rel)
	}
	fmt.Printf("%s solc %s\n", mark(true), colorBold(rel.Version))
	fmt.Printf("  %s\n", rel.URL)
	return nil
}

func runCompilerFetch(cmd *cobra.Command, solcDir string) error {
	rel, err := resolveRelease(cmd)
	if err != nil {
		return err
	}

	dir := solcDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".spacetoken", "solc")
	}
	debugPrint("Download directory: %s", dir)

	printInfo("Downloading solc %s", rel.Version)
	result, err := downloader.NewManager(os.Stderr).Download(cmd.Context(), rel.URL, dir)
	if err != nil {
		debugPrint("Download failed: %v", err)
		return fmt.Errorf("failed to download compiler: %w", err)
	}

	if opts.JSON {
		return printJSON(map[string]interface{}{
			"version": rel.Version,
			"path":    result.Path,
			"size":    result.Size,
		})
	}
	fmt.Printf("\n%s Download completed!\n", mark(true))
	fmt.Printf("Compiler saved to: %s\n", result.Path)
	fmt.Printf("Size: %.2f MB\n", float64(result.Size)/1000/1000)
	return nil
}
