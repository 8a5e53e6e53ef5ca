package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrNoFrames is returned by sources that have run out of frames
var ErrNoFrames = errors.New("no frames available")

// FrameSource yields raw image frames from a camera or equivalent.
// Implementations must be safe for use from the capture loop goroutine.
type FrameSource interface {
	// Frame returns the next still image
	Frame(ctx context.Context) ([]byte, error)
	Close() error
}

// HTTPSource pulls JPEG stills from a snapshot URL, the common lowest
// denominator exposed by IP cameras.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a snapshot-URL frame source
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Frame(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create snapshot request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return data, nil
}

func (s *HTTPSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// DirSource replays image files from a directory in name order. Used
// for development and tests; returns ErrNoFrames when exhausted.
type DirSource struct {
	files []string
	next  int
	loop  bool
	mu    sync.Mutex
}

// NewDirSource lists the image files under dir. With loop set, the
// source starts over instead of running out.
func NewDirSource(dir string, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}

	return &DirSource{files: files, loop: loop}, nil
}

func (s *DirSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.files) {
		if !s.loop {
			return nil, ErrNoFrames
		}
		s.next = 0
	}

	data, err := os.ReadFile(s.files[s.next])
	if err != nil {
		return nil, fmt.Errorf("read frame file: %w", err)
	}
	s.next++

	return data, nil
}

func (s *DirSource) Close() error {
	return nil
}
