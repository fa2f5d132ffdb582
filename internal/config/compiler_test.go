package config

import (
	"testing"

	version "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCompiler_Constraint(t *testing.T) {
	tests := []struct {
		name    string
		expr    *string
		allowed []string
		denied  []string
	}{
		{"default", nil, []string{"0.5.16"}, []string{"0.5.17", "0.5.15"}},
		{"exact", strPtr("0.4.24"), []string{"0.4.24"}, []string{"0.4.25"}},
		{"caret zero major", strPtr("^0.5.0"), []string{"0.5.0", "0.5.17"}, []string{"0.6.0", "0.4.26"}},
		{"caret major", strPtr("^1.2.3"), []string{"1.2.3", "1.9.0"}, []string{"2.0.0", "1.2.2"}},
		{"tilde", strPtr("~0.5.1"), []string{"0.5.1", "0.5.9"}, []string{"0.6.0", "0.5.0"}},
		{"range", strPtr(">=0.4.24 <0.6.0"), []string{"0.4.24", "0.5.16"}, []string{"0.6.0", "0.4.23"}},
		{"spaced operators", strPtr(">= 0.4.24, < 0.6.0"), []string{"0.5.0"}, []string{"0.6.1"}},
		{"pessimistic", strPtr("~> 0.5.1"), []string{"0.5.9"}, []string{"0.6.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compiler{Version: tt.expr}
			constraints, err := c.Constraint()
			require.NoError(t, err)

			for _, v := range tt.allowed {
				assert.True(t, constraints.Check(version.Must(version.NewVersion(v))), "%s should satisfy %s", v, c.VersionExpr())
			}
			for _, v := range tt.denied {
				assert.False(t, constraints.Check(version.Must(version.NewVersion(v))), "%s should not satisfy %s", v, c.VersionExpr())
			}
		})
	}
}

func TestCompiler_ConstraintErrors(t *testing.T) {
	for _, expr := range []string{"^0.5.0 || ^0.6.0", "native", "^0.5", ">="} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compiler{Version: strPtr(expr)}.Constraint()
			assert.Error(t, err)
		})
	}
}

func TestCompiler_Equal(t *testing.T) {
	a := Compiler{Version: strPtr("0.5.16"), Optimizer: Optimizer{Enabled: true, Runs: 200}}
	b := Compiler{Version: strPtr("0.5.16"), Optimizer: Optimizer{Enabled: true, Runs: 200}}
	assert.True(t, a.Equal(b))

	b.Optimizer.Runs = 1000
	assert.False(t, a.Equal(b))

	assert.False(t, a.Equal(DefaultCompiler()))
	assert.True(t, DefaultCompiler().Equal(DefaultCompiler()))
}

func TestNetworkID_Matches(t *testing.T) {
	assert.True(t, Wildcard.Matches(1))
	assert.True(t, Wildcard.Matches(5777))
	assert.True(t, NetworkID("1337").Matches(1337))
	assert.True(t, NetworkID("0x539").Matches(1337))
	assert.False(t, NetworkID("1").Matches(1337))
	assert.False(t, NetworkID("").Matches(1))
}
