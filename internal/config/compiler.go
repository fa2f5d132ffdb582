package config

import (
	"fmt"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSolcVersion is used when the compiler version is null or absent.
	DefaultSolcVersion   = "0.5.16"
	DefaultOptimizerRuns = 200
)

func DefaultCompiler() Compiler {
	return Compiler{Optimizer: Optimizer{Runs: DefaultOptimizerRuns}}
}

func (c *Compiler) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Version   *string    `yaml:"version"`
		Optimizer *Optimizer `yaml:"optimizer"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = DefaultCompiler()
	if raw.Version != nil && strings.TrimSpace(*raw.Version) != "" {
		v := strings.TrimSpace(*raw.Version)
		c.Version = &v
	}
	if raw.Optimizer != nil {
		c.Optimizer = *raw.Optimizer
	}
	return nil
}

func (o *Optimizer) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled bool `yaml:"enabled"`
		Runs    *int `yaml:"runs"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	o.Enabled = raw.Enabled
	o.Runs = DefaultOptimizerRuns
	if raw.Runs != nil {
		o.Runs = *raw.Runs
	}
	return nil
}

// VersionExpr returns the configured version expression, or the default
// version when none is set.
func (c Compiler) VersionExpr() string {
	if c.Version == nil {
		return DefaultSolcVersion
	}
	return *c.Version
}

func (c Compiler) IsDefaultVersion() bool {
	return c.Version == nil
}

func (c Compiler) Equal(o Compiler) bool {
	if (c.Version == nil) != (o.Version == nil) {
		return false
	}
	if c.Version != nil && *c.Version != *o.Version {
		return false
	}
	return c.Optimizer == o.Optimizer
}

// Constraint parses the version expression. Exact versions, npm-style caret
// and tilde ranges, and space or comma separated comparator lists are
// accepted.
func (c Compiler) Constraint() (version.Constraints, error) {
	expr := c.VersionExpr()
	if strings.Contains(expr, "||") {
		return nil, fmt.Errorf("compiler version %q: alternative ranges are not supported", expr)
	}

	var parts []string
	for _, term := range comparatorTerms(expr) {
		translated, err := translateTerm(term)
		if err != nil {
			return nil, fmt.Errorf("compiler version %q: %w", expr, err)
		}
		parts = append(parts, translated...)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("compiler version %q: empty expression", expr)
	}

	constraints, err := version.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return nil, fmt.Errorf("compiler version %q: %w", expr, err)
	}
	return constraints, nil
}

// comparatorTerms splits an expression into terms, re-attaching operators that
// were separated from their version by whitespace.
func comparatorTerms(expr string) []string {
	fields := strings.Fields(strings.ReplaceAll(expr, ",", " "))
	var terms []string
	pending := ""
	for _, f := range fields {
		if strings.Trim(f, "<>=!~^") == "" {
			pending += f
			continue
		}
		terms = append(terms, pending+f)
		pending = ""
	}
	if pending != "" {
		terms = append(terms, pending)
	}
	return terms
}

func translateTerm(term string) ([]string, error) {
	switch {
	case strings.HasPrefix(term, "~>"):
		return []string{term}, nil
	case strings.HasPrefix(term, "^"):
		return caretRange(strings.TrimPrefix(term, "^"))
	case strings.HasPrefix(term, "~"):
		return tildeRange(strings.TrimPrefix(term, "~"))
	}

	op := strings.TrimRight(term[:len(term)-len(strings.TrimLeft(term, "<>=!"))], " ")
	v := strings.TrimPrefix(strings.TrimLeft(term, "<>=!"), "v")
	if _, err := version.NewVersion(v); err != nil {
		return nil, err
	}
	if op == "" {
		op = "="
	}
	return []string{op + " " + v}, nil
}

func caretRange(v string) ([]string, error) {
	major, minor, patch, err := splitVersion(v)
	if err != nil {
		return nil, err
	}
	var upper string
	switch {
	case major > 0:
		upper = fmt.Sprintf("%d.0.0", major+1)
	case minor > 0:
		upper = fmt.Sprintf("0.%d.0", minor+1)
	default:
		upper = fmt.Sprintf("0.0.%d", patch+1)
	}
	return []string{">= " + v, "< " + upper}, nil
}

func tildeRange(v string) ([]string, error) {
	major, minor, _, err := splitVersion(v)
	if err != nil {
		return nil, err
	}
	return []string{">= " + v, fmt.Sprintf("< %d.%d.0", major, minor+1)}, nil
}

func splitVersion(v string) (int, int, int, error) {
	segs := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(segs) != 3 {
		return 0, 0, 0, fmt.Errorf("expected major.minor.patch, got %q", v)
	}
	var out [3]int
	for i, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid version segment %q in %q", s, v)
		}
		out[i] = n
	}
	return out[0], out[1], out[2], nil
}
