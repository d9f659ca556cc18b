package darwinfetch

import (
	"fmt"
	"io"

	"github.com/gookit/color"
)

// printListing writes the numbered entries of a catalog. With full info the
// build line and the size-ordered package list follow each entry.
func printListing(w io.Writer, kind Kind, listed []ListedEntry, s *Settings) {
	if len(listed) == 0 {
		fmt.Fprintf(w, "No %s sources available.\n", kind)
		return
	}

	fmt.Fprintf(w, "Available %s sources:\n", kind)
	for _, le := range listed {
		e := le.Entry
		fmt.Fprintf(w, "%s %s %s", color.Bold.Sprintf("%d.", le.Index), e.Name, e.Version)
		if e.IsBeta() {
			fmt.Fprint(w, color.Yellow.Sprint(" (beta)"))
		}
		fmt.Fprintln(w)

		if !s.ShowFullSourceInfo {
			continue
		}

		fmt.Fprintf(w, "    Build: %s  Released: %s  Identifier: %s\n", orUnknown(e.Build), orUnknown(e.Date), orUnknown(e.Identifier))
		if len(e.Packages) > 0 {
			fmt.Fprintf(w, "    Packages (%s total):\n", humanBytes(e.TotalSize()))
			for _, p := range OrderPackages(e.Packages) {
				fmt.Fprintf(w, "        - %s - %d bytes\n", p.Filename(), p.Size)
			}
		}
		if e.Command != "" {
			fmt.Fprintf(w, "    Command: %s\n", e.Command)
		}
		fmt.Fprintln(w)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// consoleObserver renders acquisition events for an interactive session.
type consoleObserver struct {
	finish func()
}

func (o *consoleObserver) PackageStarted(i, n int, pkg Package, dest string) {
	colArrow.Print("-> ")
	colSuccess.Printf("Downloading (%d/%d): %s\n", i+1, n, pkg.Filename())
	debugf("URL: %s\n", pkg.URL)
}

func (o *consoleObserver) Progress(pkg Package) ProgressFunc {
	progress, finish := newProgressReporter(pkg.Filename())
	o.finish = finish
	return progress
}

func (o *consoleObserver) PackageDone(i, n int, pkg Package, err error) {
	if o.finish != nil {
		o.finish()
		o.finish = nil
	}
	if err != nil {
		colError.Printf("Failed: %s\n", pkg.Filename())
	}
}

// reportAcquisition prints the final state of an acquisition.
func reportAcquisition(res AcquisitionResult) error {
	switch res.State {
	case Completed:
		if res.Transferred == 0 {
			cPrintln(colNote, "No packages available for this source.")
		}
		colArrow.Print("-> ")
		colSuccess.Printf("Download completed: %d file(s) in %s\n", res.Transferred, res.Dir)
		return nil
	default:
		if res.Transferred > 0 {
			cPrintf(colWarn, "%d file(s) already downloaded were kept in %s\n", res.Transferred, res.Dir)
		}
		return res.Err
	}
}
