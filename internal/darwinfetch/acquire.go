package darwinfetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AcquisitionState tracks one acquisition from selection to completion.
type AcquisitionState int

const (
	SelectingSource AcquisitionState = iota
	DestinationPrepared
	Downloading
	Completed
	Aborted
)

func (s AcquisitionState) String() string {
	switch s {
	case SelectingSource:
		return "selecting source"
	case DestinationPrepared:
		return "destination prepared"
	case Downloading:
		return "downloading"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("AcquisitionState(%d)", int(s))
	}
}

// AcquisitionResult is returned by every acquisition, successful or not.
// Failed names the URL whose download stopped the queue.
type AcquisitionResult struct {
	State       AcquisitionState
	Entry       SourceEntry
	Dir         string
	Files       []string
	Transferred int
	Failed      string
	Err         error
}

// AcquisitionObserver is notified as packages are processed. Progress may
// return nil to skip byte-level reporting for a package.
type AcquisitionObserver interface {
	PackageStarted(i, n int, pkg Package, dest string)
	Progress(pkg Package) ProgressFunc
	PackageDone(i, n int, pkg Package, err error)
}

// Acquirer downloads the packages of one entry into Root/{version}_{build}.
type Acquirer struct {
	Fetcher Fetcher
	Root    string
	Events  AcquisitionObserver
}

// Acquire runs the acquisition for an already selected entry. Packages are
// fetched one at a time, largest first; the first failure aborts the rest
// and leaves files already written in place.
func (a *Acquirer) Acquire(ctx context.Context, entry SourceEntry) AcquisitionResult {
	res := AcquisitionResult{State: SelectingSource, Entry: entry}

	dir, err := a.destination(entry)
	if err != nil {
		res.State = Aborted
		res.Err = err
		return res
	}
	if err = a.prepare(dir); err != nil {
		res.State = Aborted
		res.Err = err
		return res
	}
	res.Dir = dir
	res.State = DestinationPrepared

	pkgs := OrderPackages(entry.Packages)
	for i, pkg := range pkgs {
		res.State = Downloading
		dest := filepath.Join(dir, pkg.Filename())

		var progress ProgressFunc
		if a.Events != nil {
			a.Events.PackageStarted(i, len(pkgs), pkg, dest)
			progress = a.Events.Progress(pkg)
		}

		err := a.Fetcher.FetchToFile(ctx, pkg.URL, dest, progress)
		if a.Events != nil {
			a.Events.PackageDone(i, len(pkgs), pkg, err)
		}
		if err != nil {
			res.State = Aborted
			res.Failed = pkg.URL
			res.Err = err
			return res
		}
		res.Files = append(res.Files, dest)
		res.Transferred++
	}

	res.State = Completed
	return res
}

// AcquireSelection resolves input against cat and acquires the chosen
// entry. Cancellation and bad input abort from SelectingSource.
func (a *Acquirer) AcquireSelection(ctx context.Context, cat Catalog, input string, showBeta bool) AcquisitionResult {
	entry, _, err := SelectEntry(cat, input, showBeta)
	if err != nil {
		return AcquisitionResult{State: Aborted, Err: err}
	}
	return a.Acquire(ctx, entry)
}

// destination resolves the entry's directory under Root. Names taken from
// the catalog must stay single path elements so nothing is written outside
// Root; every package filename is checked before anything touches disk.
func (a *Acquirer) destination(entry SourceEntry) (string, error) {
	name := entry.DirName()
	if !validPathName(name) {
		return "", &ParseError{Err: fmt.Errorf("entry %s has an unusable directory name %q", entry.Name, name)}
	}
	dir := filepath.Join(a.Root, name)
	if rel, err := filepath.Rel(a.Root, dir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ParseError{Err: fmt.Errorf("entry %s resolves outside %s", entry.Name, a.Root)}
	}
	for _, pkg := range entry.Packages {
		if !validPathName(pkg.Filename()) {
			return "", &ParseError{Err: fmt.Errorf("package URL %q has no usable file name", pkg.URL)}
		}
	}
	return dir, nil
}

// prepare creates dir if needed. An existing directory is reused. The lock
// file is a hidden sibling so the destination only holds packages.
func (a *Acquirer) prepare(dir string) error {
	if err := os.MkdirAll(a.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create downloads directory %s: %w", a.Root, err)
	}
	lockBase := filepath.Join(filepath.Dir(dir), "."+filepath.Base(dir))
	return withExclusiveLock(lockBase, func() error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create destination %s: %w", dir, err)
		}
		return nil
	})
}
