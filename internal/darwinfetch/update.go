package darwinfetch

import (
	"context"
	"errors"
	"fmt"
)

// UpdateOutcome summarizes what happened to one catalog during an update.
type UpdateOutcome int

const (
	UpToDate UpdateOutcome = iota
	Updated
	UpdateFailed
)

// UpdateResult is reported per kind by UpdateSources.
type UpdateResult struct {
	Kind    Kind
	Outcome UpdateOutcome
	Err     error
}

// UpdateSources refreshes every kind whose local catalog is stale. A missing
// local catalog is fetched; a failing kind does not stop the others.
func UpdateSources(ctx context.Context, checker *FreshnessChecker, kinds []Kind) []UpdateResult {
	results := make([]UpdateResult, 0, len(kinds))
	for _, kind := range kinds {
		results = append(results, updateOne(ctx, checker, kind))
	}
	return results
}

func updateOne(ctx context.Context, checker *FreshnessChecker, kind Kind) UpdateResult {
	report := checker.Check(ctx, kind)
	if report.Fresh {
		return UpdateResult{Kind: kind, Outcome: UpToDate}
	}

	remote := report.Remote
	if report.Err != nil {
		var nf *NotFoundError
		if !errors.As(report.Err, &nf) || checker.Store.Exists(kind) {
			return UpdateResult{Kind: kind, Outcome: UpdateFailed, Err: report.Err}
		}
		// first fetch of this kind, nothing local to compare against
		url, ok := checker.Remotes[kind]
		if !ok || url == "" {
			return UpdateResult{Kind: kind, Outcome: UpdateFailed, Err: report.Err}
		}
		data, err := checker.Fetcher.Fetch(ctx, url)
		if err != nil {
			return UpdateResult{Kind: kind, Outcome: UpdateFailed, Err: err}
		}
		remote = data
	}

	if err := checker.Store.Save(kind, remote); err != nil {
		return UpdateResult{Kind: kind, Outcome: UpdateFailed, Err: fmt.Errorf("failed to save %s catalog: %w", kind, err)}
	}
	return UpdateResult{Kind: kind, Outcome: Updated}
}

// handleUpdateCommand implements 'darwinfetch update [kind...]'.
func handleUpdateCommand(ctx context.Context, checker *FreshnessChecker, kinds []Kind) error {
	arrowf("Updating sources\n")

	failed := 0
	for _, r := range UpdateSources(ctx, checker, kinds) {
		switch r.Outcome {
		case UpToDate:
			cPrintf(colInfo, "  %-9s up to date\n", r.Kind)
		case Updated:
			cPrintf(colSuccess, "  %-9s updated -> %s\n", r.Kind, checker.Store.Path(r.Kind))
		case UpdateFailed:
			failed++
			cPrintf(colError, "  %-9s failed: %v\n", r.Kind, r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d catalogs could not be updated", failed, len(kinds))
	}
	return nil
}

// handleCheckCommand implements 'darwinfetch check [kind...]'.
func handleCheckCommand(ctx context.Context, checker *FreshnessChecker, kinds []Kind) error {
	arrowf("Checking catalog freshness\n")
	for _, kind := range kinds {
		report := checker.Check(ctx, kind)
		switch {
		case report.Fresh:
			cPrintf(colInfo, "  %-9s fresh (%s)\n", kind, shortSum(report.LocalSum))
		case report.Err != nil:
			cPrintf(colWarn, "  %-9s stale: %v\n", kind, report.Err)
		default:
			cPrintf(colWarn, "  %-9s stale (local %s, remote %s)\n", kind, shortSum(report.LocalSum), shortSum(report.RemoteSum))
		}
	}
	return nil
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
