package speedtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"

	"github.com/21state/spacetoken/internal/endpoint"
)

const (
	testDuration = 5 * time.Second
	sampleCount  = 5
)

// Tester measures mean JSON-RPC round-trip latency per endpoint.
type Tester struct {
	duration time.Duration
	samples  int
	debugLog endpoint.DebugLogger
}

func NewTester(debugLog endpoint.DebugLogger) *Tester {
	if debugLog == nil {
		debugLog = func(string, ...interface{}) {}
	}
	return &Tester{
		duration: testDuration,
		samples:  sampleCount,
		debugLog: debugLog,
	}
}

// TestEndpoints measures every healthy endpoint concurrently. Unhealthy
// endpoints are returned untouched.
func (st *Tester) TestEndpoints(ctx context.Context, endpoints []endpoint.Info) []endpoint.Info {
	result := make([]endpoint.Info, len(endpoints))
	copy(result, endpoints)

	var wg sync.WaitGroup
	for i := range result {
		if !result[i].Healthy {
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			st.debugLog("Running latency test for network %s", result[idx].Name)
			latency, samples := st.testLatency(ctx, result[idx].URL)
			result[idx].Samples = samples
			if samples > 0 {
				result[idx].Latency = latency
			}
			st.debugLog("Latency test result for %s: %v over %d calls", result[idx].Name, latency, samples)
		}(i)
	}

	wg.Wait()
	return result
}

func (st *Tester) testLatency(ctx context.Context, url string) (time.Duration, int) {
	ctx, cancel := context.WithTimeout(ctx, st.duration)
	defer cancel()

	client, err := w3.Dial(url)
	if err != nil {
		st.debugLog("Latency test failed for URL %s: %v", url, err)
		return 0, 0
	}
	defer client.Close()

	var (
		total   time.Duration
		samples int
	)
	for i := 0; i < st.samples; i++ {
		var chainID uint64
		start := time.Now()
		if err := client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
			st.debugLog("Error during latency test: %v", err)
			break
		}
		total += time.Since(start)
		samples++
	}

	if samples == 0 {
		return 0, 0
	}
	return total / time.Duration(samples), samples
}

// SortByLatency orders endpoints fastest first; unmeasured endpoints go last.
func SortByLatency(endpoints []endpoint.Info) {
	sort.SliceStable(endpoints, func(i, j int) bool {
		a, b := endpoints[i], endpoints[j]
		if (a.Samples > 0) != (b.Samples > 0) {
			return a.Samples > 0
		}
		return a.Latency < b.Latency
	})
}
