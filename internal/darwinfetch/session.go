package darwinfetch

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// session holds the collaborators one CLI invocation works with. Settings
// are not kept here; each operation loads them fresh.
type session struct {
	ctx        context.Context
	cfg        *Config
	paths      Paths
	store      *CatalogStore
	fetcher    Fetcher
	checker    *FreshnessChecker
	dispatcher Dispatcher
}

func newSession(ctx context.Context, cfg *Config, paths Paths) *session {
	store := NewCatalogStore(paths.DataDir)
	fetcher := NewHTTPFetcher(cfg)
	return &session{
		ctx:     ctx,
		cfg:     cfg,
		paths:   paths,
		store:   store,
		fetcher: fetcher,
		checker: &FreshnessChecker{
			Store:   store,
			Fetcher: fetcher,
			Remotes: cfg.Remotes(),
		},
		dispatcher: &ToolDispatcher{Tool: recoveryTool, Interactive: true},
	}
}

// prepareDirs creates the data and downloads roots. Failure here is the
// only fatal condition: nothing can work without them.
func (s *session) prepareDirs() error {
	for _, dir := range []string{s.paths.DataDir, s.paths.DownloadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// loadView loads settings and the catalog for kind and returns the visible listing.
func (s *session) loadView(kind Kind) (*Settings, Catalog, []ListedEntry, error) {
	settings, err := LoadSettings(s.paths.SettingsFile)
	if err != nil {
		return nil, nil, nil, err
	}
	cat, err := s.store.Load(kind)
	if err != nil {
		return nil, nil, nil, err
	}
	return settings, cat, Listing(cat, settings.ShowBetaInstallers), nil
}

// listSources prints the visible entries of kind.
func (s *session) listSources(kind Kind) error {
	settings, _, listed, err := s.loadView(kind)
	if err != nil {
		return err
	}
	printListing(os.Stdout, kind, listed, settings)
	return nil
}

// acquireFrom resolves input against the kind's catalog and runs the
// matching action: package download, or the recovery tool for entries that
// only carry a command. An empty input prompts after listing.
func (s *session) acquireFrom(kind Kind, input string) error {
	settings, cat, listed, err := s.loadView(kind)
	if err != nil {
		return err
	}
	if input == "" {
		printListing(os.Stdout, kind, listed, settings)
		if len(listed) == 0 {
			return nil
		}
		input, err = readLine(nil, "Enter the number of the source to download (or 'c' to cancel): ")
		if err != nil {
			return ErrCanceled
		}
	}

	entry, _, err := SelectEntry(cat, input, settings.ShowBetaInstallers)
	if err != nil {
		return err
	}
	return s.acquireEntry(kind, entry)
}

func (s *session) acquireEntry(kind Kind, entry SourceEntry) error {
	colArrow.Print("-> ")
	colSuccess.Printf("Selected Source: %s %s (%s) - %s (%s)\n",
		orUnknown(entry.Name), orUnknown(entry.Version), orUnknown(entry.Build),
		orUnknown(entry.Identifier), orUnknown(entry.Date))

	if entry.Command != "" && (kind == KindRecovery || len(entry.Packages) == 0) {
		return s.recover(entry)
	}

	acq := &Acquirer{
		Fetcher: s.fetcher,
		Root:    s.paths.DownloadsDir,
		Events:  &consoleObserver{},
	}
	return reportAcquisition(acq.Acquire(s.ctx, entry))
}

func (s *session) recover(entry SourceEntry) error {
	colArrow.Print("-> ")
	colSuccess.Printf("Handing recovery command to %s\n", recoveryTool)
	if err := RunRecovery(s.ctx, s.dispatcher, entry); err != nil {
		return err
	}
	colSuccess.Println("Recovery tool finished successfully.")
	return nil
}

// browse opens the TUI picker and acquires the chosen entry.
func (s *session) browse(kind Kind) error {
	_, cat, listed, err := s.loadView(kind)
	if err != nil {
		return err
	}
	if len(listed) == 0 {
		cPrintf(colNote, "No %s sources available. Run 'darwinfetch update' first.\n", kind)
		return nil
	}
	idx, err := runBrowser(kind, listed)
	if err != nil {
		return err
	}
	if idx == 0 {
		return ErrCanceled
	}
	return s.acquireEntry(kind, cat[idx-1])
}

// runAction is the per-operation error boundary: every failure is reported
// and the session carries on.
func runAction(name string, fn func() error) bool {
	err := fn()
	if err == nil {
		return true
	}

	var (
		parseErr    *ParseError
		notFoundErr *NotFoundError
		choiceErr   *ChoiceError
		downloadErr *DownloadError
		toolErr     *ExternalToolError
	)
	switch {
	case errors.Is(err, ErrCanceled):
		cPrintln(colNote, "Canceled.")
		return true
	case errors.As(err, &choiceErr):
		cPrintf(colWarn, "%v. Please enter a valid source number or 'c' to cancel.\n", choiceErr)
	case errors.As(err, &downloadErr):
		cPrintf(colError, "Error downloading file: %v\n", downloadErr)
	case errors.As(err, &parseErr):
		cPrintf(colError, "Catalog error: %v\n", parseErr)
	case errors.As(err, &notFoundErr):
		cPrintf(colWarn, "%v\n", notFoundErr)
	case errors.As(err, &toolErr):
		cPrintf(colError, "%v\n", toolErr)
	default:
		cPrintf(colError, "%s failed: %v\n", name, err)
	}
	return false
}
