package darwinfetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// defaultChunkSize bounds how much of a response body is held between writes.
const defaultChunkSize = 1024

// ProgressFunc receives the running byte count after every chunk. total is
// -1 when the server did not announce a length.
type ProgressFunc func(transferred, total int64)

// Fetcher retrieves remote resources. Implementations perform a single
// request per call and never retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchToFile(ctx context.Context, url, dest string, progress ProgressFunc) error
}

// ObjectStore serves r2:// keys from a bucket.
type ObjectStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// HTTPFetcher is the streaming HTTP(S) Fetcher. Objects, when set, handles
// r2:// URLs.
type HTTPFetcher struct {
	Client    *http.Client
	ChunkSize int
	Objects   ObjectStore
}

func newHttpClient(timeout time.Duration) *http.Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	// Apple's CDN can be slow to complete the handshake for large installers
	transport.TLSHandshakeTimeout = 30 * time.Second

	// timeout 0 means no overall deadline
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewHTTPFetcher builds a fetcher from the loaded configuration.
func NewHTTPFetcher(cfg *Config) *HTTPFetcher {
	f := &HTTPFetcher{
		Client:    newHttpClient(cfg.Timeout()),
		ChunkSize: defaultChunkSize,
	}
	if cfg.HasR2() {
		r2, err := NewR2Client(cfg)
		if err != nil {
			debugf("R2 disabled: %v\n", err)
		} else {
			f.Objects = r2
		}
	}
	return f
}

func (f *HTTPFetcher) chunkSize() int {
	if f.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return f.ChunkSize
}

// open issues the request and returns the body with its announced length.
func (f *HTTPFetcher) open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	if key, ok := strings.CutPrefix(url, "r2://"); ok {
		if f.Objects == nil {
			return nil, 0, &DownloadError{URL: url, Err: errors.New("no R2 bucket configured")}
		}
		body, size, err := f.Objects.Open(ctx, key)
		if err != nil {
			return nil, 0, &DownloadError{URL: url, Err: err}
		}
		return body, size, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &DownloadError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "darwinfetch/"+version)

	client := f.Client
	if client == nil {
		client = newHttpClient(0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &DownloadError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, &DownloadError{URL: url, Err: fmt.Errorf("server returned %s", resp.Status)}
	}

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}
	return resp.Body, total, nil
}

// Fetch reads the whole resource into memory.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	debugf("Fetching %s\n", url)
	body, _, err := f.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	return data, nil
}

// FetchToFile streams the resource into dest, truncating any existing file.
// On failure dest keeps whatever the last successful write produced.
func (f *HTTPFetcher) FetchToFile(ctx context.Context, url, dest string, progress ProgressFunc) error {
	debugf("Downloading %s -> %s\n", url, dest)
	body, total, err := f.open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &DownloadError{URL: url, Err: fmt.Errorf("failed to create destination file %s: %w", dest, err)}
	}
	defer out.Close()

	buf := make([]byte, f.chunkSize())
	var transferred int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return &DownloadError{URL: url, Err: fmt.Errorf("failed to write to destination file: %w", werr)}
			}
			transferred += int64(n)
			if progress != nil {
				progress(transferred, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return &DownloadError{URL: url, Err: rerr}
		}
	}

	if err := out.Close(); err != nil {
		return &DownloadError{URL: url, Err: fmt.Errorf("failed to close destination file: %w", err)}
	}
	debugf("Download of %s complete (%d bytes).\n", url, transferred)
	return nil
}
