package darwinfetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeFetcher serves canned documents and records every URL it is asked for.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string][]byte
	fail  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{docs: make(map[string][]byte), fail: make(map[string]error)}
}

func (f *fakeFetcher) record(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFetcher) lookup(url string) ([]byte, error) {
	if err, ok := f.fail[url]; ok {
		return nil, &DownloadError{URL: url, Err: err}
	}
	data, ok := f.docs[url]
	if !ok {
		return nil, &DownloadError{URL: url, Err: errors.New("server returned 404 Not Found")}
	}
	return data, nil
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.record(url)
	data, err := f.lookup(url)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeFetcher) FetchToFile(ctx context.Context, url, dest string, progress ProgressFunc) error {
	f.record(url)
	data, err := f.lookup(url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// catalogJSON renders a minimal catalog document with one entry per name.
func catalogJSON(names ...string) []byte {
	doc := "["
	for i, n := range names {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"name":%q,"version":"14.%d","build":"23A%d","identifier":"id-%d","date":"2023-09-26"}`, n, i, i, i)
	}
	return []byte(doc + "]")
}
