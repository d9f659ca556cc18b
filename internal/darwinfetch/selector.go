package darwinfetch

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// OrderPackages returns a copy of pkgs sorted by size, largest first.
// Packages of equal size keep their document order.
func OrderPackages(pkgs []Package) []Package {
	sorted := slices.Clone(pkgs)
	slices.SortStableFunc(sorted, func(a, b Package) int {
		return cmp.Compare(b.Size, a.Size)
	})
	return sorted
}

// FilterBeta drops explicitly beta entries unless showBeta is set.
// Entries without a beta field are always kept.
func FilterBeta(entries []SourceEntry, showBeta bool) []SourceEntry {
	filtered := make([]SourceEntry, 0, len(entries))
	for _, e := range entries {
		if hidden(e, showBeta) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// hidden reports whether the beta setting keeps e out of view.
func hidden(e SourceEntry, showBeta bool) bool {
	return !showBeta && e.IsBeta()
}

// ListedEntry pairs a visible entry with its 1-based catalog index.
type ListedEntry struct {
	Index int
	Entry SourceEntry
}

// Listing is the filtered view shown to the user. Indexes are positions in
// the full document, so hiding beta entries never renumbers the rest.
func Listing(cat Catalog, showBeta bool) []ListedEntry {
	listed := make([]ListedEntry, 0, len(cat))
	for i, e := range cat {
		if hidden(e, showBeta) {
			continue
		}
		listed = append(listed, ListedEntry{Index: i + 1, Entry: e})
	}
	return listed
}

// SelectEntry resolves user input against the catalog. "c" cancels.
func SelectEntry(cat Catalog, input string, showBeta bool) (SourceEntry, int, error) {
	in := strings.TrimSpace(input)
	if strings.EqualFold(in, "c") {
		return SourceEntry{}, 0, ErrCanceled
	}

	n, err := strconv.Atoi(in)
	if err != nil {
		return SourceEntry{}, 0, &ChoiceError{Input: input, Reason: "not a number"}
	}
	if n < 1 || n > len(cat) {
		return SourceEntry{}, 0, &ChoiceError{Input: input, Reason: "out of range"}
	}

	entry := cat[n-1]
	if hidden(entry, showBeta) {
		return SourceEntry{}, 0, &ChoiceError{Input: input, Reason: "beta installers are hidden"}
	}
	return entry, n, nil
}
