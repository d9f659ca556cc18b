package darwinfetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Kind identifies one of the published catalogs.
type Kind string

const (
	KindGeneric  Kind = "generic"
	KindOffline  Kind = "offline"
	KindRecovery Kind = "recovery"
)

// AllKinds lists every catalog kind in menu order.
var AllKinds = []Kind{KindGeneric, KindOffline, KindRecovery}

// catalogFiles maps each kind to its document name under the data directory.
var catalogFiles = map[Kind]string{
	KindGeneric:  "sources.json",
	KindOffline:  "offline.json",
	KindRecovery: "recovery.json",
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalogFiles[k]; !ok {
		return "", &ChoiceError{Input: s, Reason: "expected one of generic, offline, recovery"}
	}
	return k, nil
}

// FileName returns the document name for the kind.
func (k Kind) FileName() string {
	return catalogFiles[k]
}

// Package is one downloadable file belonging to a SourceEntry.
type Package struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Filename returns the final path segment of the package URL, or "" when
// the URL has no file segment (no path, or a path ending in "/").
func (p Package) Filename() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ""
	}
	return path.Base(u.Path)
}

// validPathName reports whether name can be used as a single path element
// below a directory without leaving it.
func validPathName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// SourceEntry describes one installable image. Beta is nil when the
// document does not say; only an explicit true marks an entry as beta.
type SourceEntry struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Build      string    `json:"build"`
	Identifier string    `json:"identifier"`
	Date       string    `json:"date"`
	Beta       *bool     `json:"beta,omitempty"`
	Packages   []Package `json:"packages,omitempty"`
	Command    string    `json:"command,omitempty"`
}

// IsBeta reports whether the entry is explicitly flagged as beta.
func (e SourceEntry) IsBeta() bool {
	return e.Beta != nil && *e.Beta
}

// DirName is the per-acquisition directory name, "{version}_{build}".
func (e SourceEntry) DirName() string {
	return e.Version + "_" + e.Build
}

// TotalSize sums the declared package sizes.
func (e SourceEntry) TotalSize() int64 {
	var total int64
	for _, p := range e.Packages {
		total += p.Size
	}
	return total
}

// Catalog is the ordered list of entries for one kind. Document order is
// the display order.
type Catalog []SourceEntry

// ParseCatalog decodes a catalog document. Compressed payloads are
// inflated first; an empty document is an empty catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	plain, err := decodePayload(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(strings.TrimSpace(string(plain))) == 0 {
		return Catalog{}, nil
	}

	var entries []SourceEntry
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, &ParseError{Err: err}
	}
	for i := range entries {
		if entries[i].Packages == nil {
			entries[i].Packages = []Package{}
		}
	}
	return Catalog(entries), nil
}

// CatalogStore owns the local catalog documents under one data directory.
type CatalogStore struct {
	Dir string
}

// NewCatalogStore returns a store rooted at dir.
func NewCatalogStore(dir string) *CatalogStore {
	return &CatalogStore{Dir: dir}
}

// Path returns the local document path for kind.
func (s *CatalogStore) Path(kind Kind) string {
	return filepath.Join(s.Dir, kind.FileName())
}

// Exists reports whether a local document exists for kind.
func (s *CatalogStore) Exists(kind Kind) bool {
	info, err := os.Stat(s.Path(kind))
	return err == nil && !info.IsDir()
}

// ReadRaw returns the undecoded bytes of the local document.
func (s *CatalogStore) ReadRaw(kind Kind) ([]byte, error) {
	p := s.Path(kind)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{What: string(kind) + " catalog", Path: p}
	}
	if err != nil {
		return nil, fmt.Errorf("could not read catalog %s: %w", p, err)
	}
	return data, nil
}

// Load reads the catalog for kind. A missing document is an empty catalog.
func (s *CatalogStore) Load(kind Kind) (Catalog, error) {
	data, err := s.ReadRaw(kind)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			debugf("No local %s catalog at %s\n", kind, nf.Path)
			return Catalog{}, nil
		}
		return nil, err
	}

	cat, err := ParseCatalog(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = s.Path(kind)
		}
		return nil, err
	}
	return cat, nil
}

// Save replaces the local document for kind with raw. The bytes must parse
// as a catalog; the write is atomic and serialized by a file lock.
func (s *CatalogStore) Save(kind Kind, raw []byte) error {
	dest := s.Path(kind)
	if _, err := ParseCatalog(raw); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = dest
		}
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.Dir, err)
	}

	return withExclusiveLock(dest, func() error {
		tmp, err := os.CreateTemp(s.Dir, "."+kind.FileName()+".tmp-*")
		if err != nil {
			return fmt.Errorf("failed to create temp catalog: %w", err)
		}
		tmpPath := tmp.Name()
		if _, err := tmp.Write(raw); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write temp catalog: %w", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to close temp catalog: %w", err)
		}
		if err := os.Rename(tmpPath, dest); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to replace %s: %w", dest, err)
		}
		debugf("Saved %s catalog (%d bytes) to %s\n", kind, len(raw), dest)
		return nil
	})
}
