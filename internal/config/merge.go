package config

import (
	"fmt"
	"strings"
)

// MergePolicy decides what happens when several sources define the same
// profile or compiler block.
type MergePolicy int

const (
	// LastWins lets later sources replace earlier definitions.
	LastWins MergePolicy = iota
	// RejectConflicts fails when a redefinition differs from the earlier one.
	RejectConflicts
)

func (p MergePolicy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case RejectConflicts:
		return "reject"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(p))
	}
}

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-wins", "lastwins", "last":
		return LastWins, nil
	case "reject", "reject-conflicts", "strict":
		return RejectConflicts, nil
	default:
		return 0, fmt.Errorf("invalid merge policy: %s. Must be one of: last-wins, reject", s)
	}
}

// Merge combines files in order. Profiles are resolved independently; the
// compiler block follows the same policy as profiles. Under LastWins every
// replaced definition is reported through debugLog, which may be nil.
func Merge(policy MergePolicy, debugLog DebugLogger, files ...File) (*Config, error) {
	if debugLog == nil {
		debugLog = func(string, ...interface{}) {}
	}
	cfg := &Config{
		networks: make(map[string]Network),
		compiler: DefaultCompiler(),
	}
	origin := make(map[string]string)
	compilerOrigin := ""

	for i, f := range files {
		src := sourceName(f, i)
		for name, n := range f.Networks {
			n.Name = name
			if prev, ok := cfg.networks[name]; ok {
				if policy == RejectConflicts && prev != n {
					return nil, fmt.Errorf("%w: network %q redefined by %s (%s vs %s)",
						ErrConflict, name, src, describe(prev), describe(n))
				}
				if prev != n {
					debugLog("Network %q from %s (%s) overridden by %s (%s)", name, origin[name], describe(prev), src, describe(n))
				}
			}
			cfg.networks[name] = n
			origin[name] = src
		}

		if f.Solc == nil {
			continue
		}
		if compilerOrigin != "" && !cfg.compiler.Equal(*f.Solc) {
			if policy == RejectConflicts {
				return nil, fmt.Errorf("%w: solc redefined by %s (version %s vs %s)",
					ErrConflict, src, cfg.compiler.VersionExpr(), f.Solc.VersionExpr())
			}
			debugLog("solc block from %s (version %s) overridden by %s (version %s)",
				compilerOrigin, cfg.compiler.VersionExpr(), src, f.Solc.VersionExpr())
		}
		cfg.compiler = *f.Solc
		compilerOrigin = src
	}

	return cfg, nil
}

func sourceName(f File, i int) string {
	if f.Source != "" {
		return f.Source
	}
	return fmt.Sprintf("source %d", i+1)
}

func describe(n Network) string {
	return fmt.Sprintf("%s network_id=%s", n.Endpoint(), n.NetworkID)
}
