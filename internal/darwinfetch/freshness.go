package darwinfetch

import (
	"context"
)

// FreshnessReport is the outcome of comparing one local catalog with its
// remote copy. Remote holds the fetched bytes so a caller that decides to
// update does not need a second download; the check itself never writes.
type FreshnessReport struct {
	Kind      Kind
	Fresh     bool
	LocalSum  string
	RemoteSum string
	Remote    []byte
	Err       error
}

// FreshnessChecker decides whether local catalogs need re-fetching by
// comparing BLAKE3 digests of the whole local and remote documents.
type FreshnessChecker struct {
	Store   *CatalogStore
	Fetcher Fetcher
	Remotes map[Kind]string
}

// Check compares the local document for kind with the remote one. Any
// failure yields a report that is not fresh, with Err set.
func (c *FreshnessChecker) Check(ctx context.Context, kind Kind) FreshnessReport {
	report := FreshnessReport{Kind: kind}

	if !c.Store.Exists(kind) {
		report.Err = &NotFoundError{What: string(kind) + " catalog", Path: c.Store.Path(kind)}
		return report
	}

	remoteURL, ok := c.Remotes[kind]
	if !ok || remoteURL == "" {
		report.Err = &NotFoundError{What: "remote for " + string(kind) + " catalog"}
		return report
	}

	localSum, err := hashFile(c.Store.Path(kind))
	if err != nil {
		report.Err = err
		return report
	}
	report.LocalSum = localSum

	remote, err := c.Fetcher.Fetch(ctx, remoteURL)
	if err != nil {
		report.Err = err
		return report
	}
	report.Remote = remote
	report.RemoteSum = hashBytes(remote)
	report.Fresh = report.LocalSum == report.RemoteSum

	debugf("%s catalog: local %s remote %s\n", kind, report.LocalSum, report.RemoteSum)
	return report
}

// IsFresh reports whether the local catalog for kind is byte-identical to
// the remote one. Missing documents and network failures count as stale.
func (c *FreshnessChecker) IsFresh(ctx context.Context, kind Kind) bool {
	report := c.Check(ctx, kind)
	if report.Err != nil {
		debugf("freshness check for %s: %v\n", kind, report.Err)
	}
	return report.Fresh
}
