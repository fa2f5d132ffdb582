package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// nestedSolcKey is the compiler block's key when it is declared inside
// the networks mapping instead of at the top level.
const nestedSolcKey = "solc"

type DebugLogger func(format string, a ...interface{})

type Loader struct {
	client   *http.Client
	debugLog DebugLogger
}

func NewLoader(timeout time.Duration, debugLog DebugLogger) *Loader {
	if debugLog == nil {
		debugLog = func(string, ...interface{}) {}
	}
	return &Loader{
		client: &http.Client{
			Timeout: timeout,
		},
		debugLog: debugLog,
	}
}

// Load reads every source in order and merges them under policy.
// Sources are file paths or http(s) URLs.
func (l *Loader) Load(ctx context.Context, sources []string, policy MergePolicy) (*Config, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no configuration sources given")
	}

	files := make([]File, 0, len(sources))
	for _, src := range sources {
		data, err := l.read(ctx, src)
		if err != nil {
			return nil, err
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", src, err)
		}
		f.Source = src
		l.debugLog("Loaded %s: %d network profiles, compiler block: %v", src, len(f.Networks), f.Solc != nil)
		files = append(files, f)
	}

	cfg, err := Merge(policy, l.debugLog, files...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return data, nil
	}

	l.debugLog("Fetching configuration from %s", src)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", src, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch config %s: HTTP %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read config data: %w", err)
	}
	return data, nil
}

// Parse decodes a single configuration document.
func Parse(data []byte) (File, error) {
	var raw struct {
		Networks map[string]yaml.Node `yaml:"networks"`
		Solc     *Compiler            `yaml:"solc"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return File{}, err
	}

	f := File{
		Networks: make(map[string]Network, len(raw.Networks)),
		Solc:     raw.Solc,
	}
	for name, node := range raw.Networks {
		if name == nestedSolcKey {
			if f.Solc != nil {
				continue
			}
			c := DefaultCompiler()
			if node.ShortTag() == "!!null" {
				f.Solc = &c
				continue
			}
			if err := node.Decode(&c); err != nil {
				return File{}, fmt.Errorf("networks.%s: %w", name, err)
			}
			f.Solc = &c
			continue
		}

		var n Network
		if err := node.Decode(&n); err != nil {
			return File{}, fmt.Errorf("networks.%s: %w", name, err)
		}
		n.Name = name
		f.Networks[name] = n
	}
	return f, nil
}
