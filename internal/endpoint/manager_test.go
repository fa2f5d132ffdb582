package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/21state/spacetoken/internal/config"
	"github.com/21state/spacetoken/internal/rpctest"
)

func nodePort(t *testing.T, node *rpctest.Node) int {
	t.Helper()
	addr, ok := node.Listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func testConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	f, err := config.Parse([]byte(body))
	require.NoError(t, err)
	cfg, err := config.Merge(config.LastWins, nil, f)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestManager_Select(t *testing.T) {
	cfg := testConfig(t, `
networks:
  development: { host: localhost, port: 7545, network_id: "*" }
  ganache: { host: localhost, port: 8545, network_id: "5777" }
`)
	m := NewManager(cfg, time.Second, nil)

	all, err := m.Select()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "development", all[0].Name)
	assert.Equal(t, "http://localhost:7545", all[0].URL)

	one, err := m.Select("ganache")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, config.NetworkID("5777"), one[0].NetworkID)

	_, err = m.Select("mainnet")
	assert.True(t, errors.Is(err, config.ErrProfileNotFound))
}

func TestManager_CheckHealth(t *testing.T) {
	node := rpctest.NewNode(1337)
	defer node.Close()
	port := nodePort(t, node)

	cfg := testConfig(t, fmt.Sprintf(`
networks:
  development: { host: 127.0.0.1, port: %d, network_id: "*" }
  pinned: { host: 127.0.0.1, port: %d, network_id: "0x539" }
  wrongchain: { host: 127.0.0.1, port: %d, network_id: "1" }
  offline: { host: 127.0.0.1, port: %d, network_id: "*" }
`, port, port, port, closedPort(t)))

	var logged int
	m := NewManager(cfg, 2*time.Second, func(string, ...interface{}) { logged++ })
	endpoints, err := m.Select()
	require.NoError(t, err)

	checked := m.CheckHealth(context.Background(), endpoints)
	require.Len(t, checked, 4)

	byName := map[string]Info{}
	for _, e := range checked {
		byName[e.Name] = e
	}

	assert.True(t, byName["development"].Healthy)
	assert.Equal(t, uint64(1337), byName["development"].ChainID)
	assert.Greater(t, byName["development"].Latency, time.Duration(0))

	assert.True(t, byName["pinned"].Healthy)

	assert.False(t, byName["wrongchain"].Healthy)
	assert.ErrorContains(t, byName["wrongchain"].Err, "does not match network_id 1")

	assert.False(t, byName["offline"].Healthy)
	assert.ErrorContains(t, byName["offline"].Err, "connection failed")

	healthy := Healthy(checked)
	assert.Len(t, healthy, 2)
	assert.Greater(t, logged, 0)
}
