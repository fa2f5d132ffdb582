package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

type Manager struct {
	client   *http.Client
	progress io.Writer
}

// NewManager returns a downloader that renders its progress bar to progress.
func NewManager(progress io.Writer) *Manager {
	if progress == nil {
		progress = os.Stderr
	}
	return &Manager{
		client: &http.Client{
			Timeout: 0,
		},
		progress: progress,
	}
}

type DownloadResult struct {
	Path string
	Size int64
}

// Download saves url into destDir under its base name and marks it
// executable. A partially written file is removed on failure.
func (m *Manager) Download(ctx context.Context, url, destDir string) (*DownloadResult, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to start download: HTTP %d", resp.StatusCode)
	}
	fileSize := resp.ContentLength

	fileName := filepath.Base(req.URL.Path)
	destPath := filepath.Join(destDir, fileName)
	file, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bar := progressbar.NewOptions64(
		fileSize,
		progressbar.OptionSetWriter(m.progress),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(m.progress)
		}),
		progressbar.OptionUseIECUnits(false),
	)

	written, err := io.Copy(io.MultiWriter(file, bar), resp.Body)
	if err != nil {
		_ = os.Remove(destPath)
		return nil, fmt.Errorf("download failed: %w", err)
	}

	return &DownloadResult{
		Path: destPath,
		Size: written,
	}, nil
}
