// Package solc resolves a compiler descriptor to a published solc release.
package solc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"

	"github.com/21state/spacetoken/internal/config"
)

const DefaultBaseURL = "https://binaries.soliditylang.org"

var ErrNoRelease = errors.New("no matching solc release")

type Release struct {
	Version string `json:"version"`
	Path    string `json:"path"`
	URL     string `json:"url"`
}

type list struct {
	Releases      map[string]string `json:"releases"`
	LatestRelease string            `json:"latestRelease"`
}

type Resolver struct {
	baseURL  string
	platform string
	client   *http.Client
}

func NewResolver(baseURL, platform string, timeout time.Duration) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{
		baseURL:  strings.TrimRight(baseURL, "/"),
		platform: platform,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Platform maps the running OS to the binaries.soliditylang.org directory.
func Platform() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "linux-amd64", nil
	case "darwin":
		return "macosx-amd64", nil
	case "windows":
		return "windows-amd64", nil
	default:
		return "", fmt.Errorf("no native solc builds for %s", runtime.GOOS)
	}
}

// Resolve picks the highest published release satisfying the compiler's
// version expression.
func (r *Resolver) Resolve(ctx context.Context, c config.Compiler) (Release, error) {
	constraints, err := c.Constraint()
	if err != nil {
		return Release{}, err
	}

	l, err := r.fetchList(ctx)
	if err != nil {
		return Release{}, err
	}

	var (
		best     *version.Version
		bestPath string
	)
	for raw, path := range l.Releases {
		v, err := version.NewVersion(raw)
		if err != nil {
			continue
		}
		if !constraints.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestPath = v, path
		}
	}
	if best == nil {
		return Release{}, fmt.Errorf("%w for %q on %s", ErrNoRelease, c.VersionExpr(), r.platform)
	}

	return Release{
		Version: best.String(),
		Path:    bestPath,
		URL:     fmt.Sprintf("%s/%s/%s", r.baseURL, r.platform, bestPath),
	}, nil
}

func (r *Resolver) fetchList(ctx context.Context) (*list, error) {
	url := fmt.Sprintf("%s/%s/list.json", r.baseURL, r.platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch release list: HTTP %d", resp.StatusCode)
	}

	var l list
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to parse release list: %w", err)
	}
	return &l, nil
}
