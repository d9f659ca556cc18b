package darwinfetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTTPFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "darwinfetch/") {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), srv.URL+"/sources.json")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != sampleCatalog {
		t.Errorf("Fetch returned %d bytes, expected the catalog", len(data))
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client()}
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.json")
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if de.URL != srv.URL+"/missing.json" {
		t.Errorf("DownloadError.URL = %q", de.URL)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should mention the status: %v", err)
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := &HTTPFetcher{Client: &http.Client{}}
	_, err := f.Fetch(context.Background(), url)
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Errorf("expected DownloadError for a closed server, got %v", err)
	}
}

func TestFetchToFileWithProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 500) // 5000 bytes
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5000")
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "InstallAssistant.pkg")
	writeFile(t, dest, []byte("stale contents that are longer than nothing"))

	f := &HTTPFetcher{Client: srv.Client(), ChunkSize: 1024}
	var calls int
	var lastTransferred, lastTotal int64
	err := f.FetchToFile(context.Background(), srv.URL+"/InstallAssistant.pkg", dest, func(transferred, total int64) {
		calls++
		if transferred < lastTransferred {
			t.Errorf("progress went backwards: %d after %d", transferred, lastTransferred)
		}
		lastTransferred, lastTotal = transferred, total
	})
	if err != nil {
		t.Fatalf("FetchToFile failed: %v", err)
	}
	if !bytes.Equal(readFile(t, dest), payload) {
		t.Errorf("destination does not hold the payload")
	}
	if lastTransferred != 5000 || lastTotal != 5000 {
		t.Errorf("final progress = %d/%d, expected 5000/5000", lastTransferred, lastTotal)
	}
	if calls < 5 {
		t.Errorf("expected at least one progress call per 1 KiB chunk, got %d", calls)
	}
}

func TestFetchToFileUnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("part one "))
		w.(http.Flusher).Flush()
		w.Write([]byte("part two"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "stream.bin")
	f := &HTTPFetcher{Client: srv.Client()}
	var lastTotal int64 = 1
	err := f.FetchToFile(context.Background(), srv.URL, dest, func(_, total int64) { lastTotal = total })
	if err != nil {
		t.Fatalf("FetchToFile failed: %v", err)
	}
	if lastTotal != -1 {
		t.Errorf("total = %d, expected -1 for a chunked response", lastTotal)
	}
	if got := string(readFile(t, dest)); got != "part one part two" {
		t.Errorf("destination = %q", got)
	}
}

func TestFetchToFileBadDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client()}
	dest := filepath.Join(t.TempDir(), "missing-dir", "file.pkg")
	err := f.FetchToFile(context.Background(), srv.URL, dest, nil)
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Errorf("expected DownloadError, got %v", err)
	}
}

type memObjects map[string][]byte

func (m memObjects) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	data, ok := m[key]
	if !ok {
		return nil, 0, errors.New("NoSuchKey")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func TestHTTPFetcherR2(t *testing.T) {
	f := &HTTPFetcher{Objects: memObjects{"installers/BaseSystem.dmg": []byte("dmg bytes")}}

	dest := filepath.Join(t.TempDir(), "BaseSystem.dmg")
	if err := f.FetchToFile(context.Background(), "r2://installers/BaseSystem.dmg", dest, nil); err != nil {
		t.Fatalf("FetchToFile from r2 failed: %v", err)
	}
	if got := string(readFile(t, dest)); got != "dmg bytes" {
		t.Errorf("destination = %q", got)
	}

	_, err := f.Fetch(context.Background(), "r2://installers/missing.dmg")
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Errorf("expected DownloadError for a missing key, got %v", err)
	}

	bare := &HTTPFetcher{}
	if _, err := bare.Fetch(context.Background(), "r2://anything"); !errors.As(err, &de) {
		t.Errorf("expected DownloadError without a bucket, got %v", err)
	}
}

func TestFetchToFileMidStreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10000")
		w.WriteHeader(http.StatusOK)
		w.Write(bytes.Repeat([]byte("x"), 3000))
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "InstallAssistant.pkg")
	var last, total int64
	f := &HTTPFetcher{Client: srv.Client()}
	err := f.FetchToFile(context.Background(), srv.URL+"/InstallAssistant.pkg", dest, func(n, size int64) {
		last, total = n, size
	})

	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF as the cause, got %v", err)
	}
	if de.URL != srv.URL+"/InstallAssistant.pkg" {
		t.Errorf("DownloadError.URL = %q", de.URL)
	}
	if got := len(readFile(t, dest)); got != 3000 {
		t.Errorf("partial file has %d bytes, expected 3000", got)
	}
	if last != 3000 || total != 10000 {
		t.Errorf("last progress = %d/%d, expected 3000/10000", last, total)
	}
}
