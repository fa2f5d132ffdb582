package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"golang.org/x/sync/errgroup"

	"github.com/21state/spacetoken/internal/config"
)

const maxConcurrentChecks = 8

type DebugLogger func(format string, a ...interface{})

type Manager struct {
	cfg      *config.Config
	timeout  time.Duration
	debugLog DebugLogger
}

func NewManager(cfg *config.Config, timeout time.Duration, debugLog DebugLogger) *Manager {
	if debugLog == nil {
		debugLog = func(string, ...interface{}) {}
	}
	return &Manager{
		cfg:      cfg,
		timeout:  timeout,
		debugLog: debugLog,
	}
}

// Select resolves the named profiles, or every profile when names is empty.
func (m *Manager) Select(names ...string) ([]Info, error) {
	if len(names) == 0 {
		names = m.cfg.Profiles()
	}

	result := make([]Info, 0, len(names))
	for _, name := range names {
		n, err := m.cfg.Profile(name)
		if err != nil {
			return nil, err
		}
		result = append(result, Info{
			Name:      n.Name,
			Endpoint:  n.Endpoint(),
			URL:       n.RPCURL(),
			NetworkID: n.NetworkID,
		})
	}
	return result, nil
}

// CheckHealth checks every endpoint concurrently and returns them in input
// order with Healthy, ChainID, Latency and Err filled in.
func (m *Manager) CheckHealth(ctx context.Context, endpoints []Info) []Info {
	result := make([]Info, len(endpoints))
	copy(result, endpoints)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)

	for i := range result {
		idx := i
		g.Go(func() error {
			info := &result[idx]
			m.debugLog("Checking health for network %s (%s)", info.Name, info.URL)
			if err := m.check(ctx, info); err != nil {
				info.Err = err
				m.debugLog("Network %s health check failed: %v", info.Name, err)
				return nil
			}
			info.Healthy = true
			m.debugLog("Network %s passed health check", info.Name)
			return nil
		})
	}

	_ = g.Wait()
	return result
}

func (m *Manager) check(ctx context.Context, info *Info) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	client, err := w3.Dial(info.URL)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer client.Close()

	start := time.Now()
	var chainID uint64
	if err := client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	info.Latency = time.Since(start)
	info.ChainID = chainID

	m.debugLog("  Response time: %v", info.Latency)
	m.debugLog("  Chain ID: %d", chainID)

	if !info.NetworkID.Matches(chainID) {
		return fmt.Errorf("chain id %d does not match network_id %s", chainID, info.NetworkID)
	}
	return nil
}

// Healthy filters endpoints that passed CheckHealth.
func Healthy(endpoints []Info) []Info {
	var healthy []Info
	for _, e := range endpoints {
		if e.Healthy {
			healthy = append(healthy, e)
		}
	}
	return healthy
}

type Info struct {
	Name      string           `json:"name"`
	Endpoint  string           `json:"endpoint"`
	URL       string           `json:"url"`
	NetworkID config.NetworkID `json:"network_id"`
	Healthy   bool             `json:"healthy"`
	ChainID   uint64           `json:"chain_id,omitempty"`
	Latency   time.Duration    `json:"latency_ns,omitempty"`
	Samples   int              `json:"samples,omitempty"`
	Err       error            `json:"-"`
}

func (i Info) String() string {
	latency := ""
	if i.Latency > 0 {
		latency = fmt.Sprintf(" (%s)", i.Latency.Round(time.Microsecond))
	}
	return fmt.Sprintf("%s %s%s", i.Name, i.Endpoint, latency)
}
