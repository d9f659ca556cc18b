package darwinfetch

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// runBrowser shows a full-screen picker over the visible entries of a
// catalog. It returns the 1-based catalog index of the chosen entry, or 0
// when the user quits without choosing.
func runBrowser(kind Kind, listed []ListedEntry) (int, error) {
	app := tview.NewApplication()
	chosen := 0

	details := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	details.SetBorder(true)
	details.SetTitle("Details")

	list := tview.NewList().ShowSecondaryText(true)
	list.SetBorder(true)
	list.SetTitle(fmt.Sprintf("DarwinFetch %s sources", kind))

	for _, le := range listed {
		le := le
		secondary := fmt.Sprintf("build %s  %s", orUnknown(le.Entry.Build), orUnknown(le.Entry.Date))
		if le.Entry.IsBeta() {
			secondary += "  [yellow]beta"
		}
		list.AddItem(fmt.Sprintf("%d. %s %s", le.Index, le.Entry.Name, le.Entry.Version), secondary, 0, func() {
			chosen = le.Index
			app.Stop()
		})
	}

	showDetails := func(i int) {
		if i < 0 || i >= len(listed) {
			details.SetText("")
			return
		}
		details.SetText(entryDetails(listed[i].Entry))
		details.ScrollToBeginning()
	}
	list.SetChangedFunc(func(i int, _, _ string, _ rune) {
		showDetails(i)
	})
	showDetails(0)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Enter[white] select  [yellow]Up/Down[white] move  [yellow]Esc/q[white] quit")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(list, 0, 1, true).
			AddItem(details, 0, 1, false), 0, 1, true).
		AddItem(footer, 1, 0, false)

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlQ:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	if err := app.SetRoot(flex, true).Run(); err != nil {
		return 0, fmt.Errorf("browser failed: %w", err)
	}
	return chosen, nil
}

func entryDetails(e SourceEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]%s %s[::-]\n\n", tview.Escape(e.Name), tview.Escape(e.Version))
	fmt.Fprintf(&b, "Build:      %s\n", tview.Escape(orUnknown(e.Build)))
	fmt.Fprintf(&b, "Identifier: %s\n", tview.Escape(orUnknown(e.Identifier)))
	fmt.Fprintf(&b, "Released:   %s\n", tview.Escape(orUnknown(e.Date)))
	switch {
	case e.Beta == nil:
		b.WriteString("Beta:       unknown\n")
	default:
		fmt.Fprintf(&b, "Beta:       %t\n", *e.Beta)
	}
	if len(e.Packages) > 0 {
		fmt.Fprintf(&b, "\n[::b]Packages[::-] (%s)\n", humanBytes(e.TotalSize()))
		for _, p := range OrderPackages(e.Packages) {
			fmt.Fprintf(&b, "  %s  %s\n", tview.Escape(p.Filename()), humanBytes(p.Size))
		}
	}
	if e.Command != "" {
		fmt.Fprintf(&b, "\n[::b]Command[::-]\n  %s\n", tview.Escape(e.Command))
	}
	return b.String()
}
