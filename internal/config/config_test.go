package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const truffleYAML = `
networks:
  development:
    host: localhost
    port: 7545
    network_id: "*"
  ganache:
    host: localhost
    port: 7545
    network_id: "*"
  solc:
    version: null
    optimizer:
      enabled: true
      runs: 200
`

const overrideYAML = `
networks:
  development:
    host: 127.0.0.1
    port: 8545
    network_id: 1337
solc:
  version: "^0.5.0"
  optimizer:
    enabled: true
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParse_LiftsNestedSolc(t *testing.T) {
	f, err := Parse([]byte(truffleYAML))
	require.NoError(t, err)

	assert.Len(t, f.Networks, 2)
	assert.NotContains(t, f.Networks, "solc")
	require.NotNil(t, f.Solc)
	assert.Nil(t, f.Solc.Version)
	assert.True(t, f.Solc.Optimizer.Enabled)
	assert.Equal(t, 200, f.Solc.Optimizer.Runs)

	dev := f.Networks["development"]
	assert.Equal(t, "development", dev.Name)
	assert.Equal(t, "localhost", dev.Host)
	assert.Equal(t, 7545, dev.Port)
	assert.True(t, dev.NetworkID.IsWildcard())
}

func TestParse_TopLevelSolcWins(t *testing.T) {
	f, err := Parse([]byte(`
networks:
  solc:
    version: "0.4.24"
solc:
  version: "0.5.16"
`))
	require.NoError(t, err)
	require.NotNil(t, f.Solc)
	assert.Equal(t, "0.5.16", f.Solc.VersionExpr())
	assert.Empty(t, f.Networks)
}

func TestParse_OptimizerRunsDefault(t *testing.T) {
	f, err := Parse([]byte(overrideYAML))
	require.NoError(t, err)
	require.NotNil(t, f.Solc)
	assert.Equal(t, DefaultOptimizerRuns, f.Solc.Optimizer.Runs)
	assert.Equal(t, NetworkID("1337"), f.Networks["development"].NetworkID)
}

func TestParse_NestedNullSolcUsesDefaults(t *testing.T) {
	for name, body := range map[string]string{
		"null":  "networks:\n  solc: null\n",
		"empty": "networks:\n  solc:\n",
	} {
		t.Run(name, func(t *testing.T) {
			f, err := Parse([]byte(body))
			require.NoError(t, err)
			require.NotNil(t, f.Solc)
			assert.Empty(t, f.Networks)
			assert.Equal(t, DefaultCompiler(), *f.Solc)
			assert.Equal(t, DefaultOptimizerRuns, f.Solc.Optimizer.Runs)
		})
	}
}

func TestParse_InvalidNetworkID(t *testing.T) {
	_, err := Parse([]byte(`
networks:
  bad:
    host: localhost
    port: 1
    network_id: mainnet
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "networks.bad")
}

func TestLoad_DevelopmentProfile(t *testing.T) {
	path := writeFile(t, "truffle.yaml", truffleYAML)

	cfg, err := NewLoader(time.Second, nil).Load(context.Background(), []string{path}, LastWins)
	require.NoError(t, err)

	dev, err := cfg.Profile("development")
	require.NoError(t, err)
	assert.Equal(t, "localhost:7545", dev.Endpoint())
	assert.Equal(t, "http://localhost:7545", dev.RPCURL())
	assert.Equal(t, []string{"development", "ganache"}, cfg.Profiles())
	assert.Equal(t, DefaultSolcVersion, cfg.Compiler().VersionExpr())
}

func TestLoad_UnknownProfileIsAbsent(t *testing.T) {
	path := writeFile(t, "truffle.yaml", truffleYAML)

	cfg, err := NewLoader(time.Second, nil).Load(context.Background(), []string{path}, LastWins)
	require.NoError(t, err)

	_, err = cfg.Profile("mainnet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
	assert.Contains(t, err.Error(), `"mainnet"`)
}

func TestLoad_LastWins(t *testing.T) {
	first := writeFile(t, "truffle.yaml", truffleYAML)
	second := writeFile(t, "truffle-config.yaml", overrideYAML)

	cfg, err := NewLoader(time.Second, nil).Load(context.Background(), []string{first, second}, LastWins)
	require.NoError(t, err)

	dev, err := cfg.Profile("development")
	require.NoError(t, err)
	assert.Equal(t, 8545, dev.Port)
	assert.Equal(t, "127.0.0.1", dev.Host)

	ganache, err := cfg.Profile("ganache")
	require.NoError(t, err)
	assert.Equal(t, 7545, ganache.Port)

	assert.Equal(t, "^0.5.0", cfg.Compiler().VersionExpr())
}

func TestLoad_RejectConflicts(t *testing.T) {
	first := writeFile(t, "truffle.yaml", truffleYAML)
	second := writeFile(t, "truffle-config.yaml", overrideYAML)

	_, err := NewLoader(time.Second, nil).Load(context.Background(), []string{first, second}, RejectConflicts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "development")
}

func TestLoad_RejectConflictsCompilerBlock(t *testing.T) {
	first := writeFile(t, "truffle.yaml", truffleYAML)
	second := writeFile(t, "truffle-config.yaml", truffleYAML+`solc:
  version: "0.4.24"
`)

	_, err := NewLoader(time.Second, nil).Load(context.Background(), []string{first, second}, RejectConflicts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "solc redefined by "+second)
	assert.NotContains(t, err.Error(), "network")

	cfg, err := NewLoader(time.Second, nil).Load(context.Background(), []string{first, second}, LastWins)
	require.NoError(t, err)
	assert.Equal(t, "0.4.24", cfg.Compiler().VersionExpr())
}

func TestLoad_LastWinsReportsOverrides(t *testing.T) {
	first := writeFile(t, "truffle.yaml", truffleYAML)
	second := writeFile(t, "truffle-config.yaml", overrideYAML)

	var lines []string
	debugLog := func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}
	_, err := NewLoader(time.Second, debugLog).Load(context.Background(), []string{first, second}, LastWins)
	require.NoError(t, err)

	assert.Contains(t, lines, fmt.Sprintf(`Network "development" from %s (localhost:7545 network_id=*) overridden by %s (127.0.0.1:8545 network_id=1337)`, first, second))
	assert.Contains(t, lines, fmt.Sprintf(`solc block from %s (version %s) overridden by %s (version ^0.5.0)`, first, DefaultSolcVersion, second))
	for _, line := range lines {
		assert.NotContains(t, line, `"ganache" from`)
	}
}

func TestMerge_IdenticalRedefinitionIsQuiet(t *testing.T) {
	f, err := Parse([]byte(truffleYAML))
	require.NoError(t, err)

	var lines []string
	_, err = Merge(LastWins, func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}, f, f)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLoad_RejectConflictsAcceptsIdenticalRedefinition(t *testing.T) {
	first := writeFile(t, "truffle.yaml", truffleYAML)
	second := writeFile(t, "truffle-config.yaml", truffleYAML)

	cfg, err := NewLoader(time.Second, nil).Load(context.Background(), []string{first, second}, RejectConflicts)
	require.NoError(t, err)
	assert.Len(t, cfg.Profiles(), 2)
}

func TestLoad_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/truffle.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(truffleYAML))
	}))
	defer srv.Close()

	loader := NewLoader(time.Second, nil)
	cfg, err := loader.Load(context.Background(), []string{srv.URL + "/truffle.yaml"}, LastWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"development", "ganache"}, cfg.Profiles())

	_, err = loader.Load(context.Background(), []string{srv.URL + "/missing.yaml"}, LastWins)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
networks:
  nohost:
    port: 7545
    network_id: "*"
  badport:
    host: localhost
    port: 70000
    network_id: "*"
  noid:
    host: localhost
    port: 7545
`)

	_, err := NewLoader(time.Second, nil).Load(context.Background(), []string{path}, LastWins)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `network "nohost": host is required`)
	assert.Contains(t, err.Error(), `network "badport": port 70000 out of range`)
	assert.Contains(t, err.Error(), `network "noid": network_id is required`)
}

func TestLoad_NoSources(t *testing.T) {
	_, err := NewLoader(time.Second, nil).Load(context.Background(), nil, LastWins)
	require.Error(t, err)
}

func TestConfig_CompilerIsCopied(t *testing.T) {
	v := "0.5.16"
	cfg, err := Merge(LastWins, nil, File{Solc: &Compiler{Version: &v}})
	require.NoError(t, err)

	c := cfg.Compiler()
	*c.Version = "0.8.0"
	assert.Equal(t, "0.5.16", cfg.Compiler().VersionExpr())
}

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MergePolicy
		wantErr bool
	}{
		{"", LastWins, false},
		{"last-wins", LastWins, false},
		{"REJECT", RejectConflicts, false},
		{"first-wins", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMergePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
