package darwinfetch

import (
	"fmt"

	"github.com/gookit/color"
)

type menuItem struct {
	label  string
	action func(s *session) error
}

var mainMenu = []menuItem{
	{"Download Full Installer", func(s *session) error { return s.acquireFrom(KindOffline, "") }},
	{"Download RecoveryOS Installer", func(s *session) error { return s.acquireFrom(KindRecovery, "") }},
	{"Download From Generic Sources", func(s *session) error { return s.acquireFrom(KindGeneric, "") }},
	{"Browse Sources", func(s *session) error { return s.browseMenu() }},
	{"Update Sources", func(s *session) error { return handleUpdateCommand(s.ctx, s.checker, AllKinds) }},
	{"Settings", func(s *session) error { return handleSettingsCommand(s.paths.SettingsFile) }},
}

// runMenu is the interactive main loop. It returns when the user exits or
// stdin closes.
func (s *session) runMenu() {
	for {
		if s.ctx.Err() != nil {
			return
		}
		clearScreen()
		colSuccess.Println("Welcome to DarwinFetch!")
		fmt.Printf("Version %s (%s) built %s\n\n", version, arch, buildDate)
		color.Info.Println("Menu:")
		for i, item := range mainMenu {
			fmt.Printf("%s %s\n", color.Bold.Sprintf("%d.", i+1), item.label)
		}
		exitChoice := len(mainMenu) + 1
		fmt.Printf("%s Exit\n", color.Bold.Sprintf("%d.", exitChoice))

		input, err := readLine(nil, "Enter your choice: ")
		if err != nil {
			fmt.Println()
			return
		}

		var choice int
		if _, err := fmt.Sscanf(input, "%d", &choice); err != nil || choice < 1 || choice > exitChoice {
			cPrintln(colWarn, "Invalid choice. Please enter a valid option.")
			pause()
			continue
		}
		if choice == exitChoice {
			fmt.Println("Exiting. Goodbye!")
			return
		}

		item := mainMenu[choice-1]
		clearScreen()
		runAction(item.label, func() error { return item.action(s) })
		pause()
	}
}

func (s *session) browseMenu() error {
	input, err := readLine(nil, "Catalog to browse (generic, offline, recovery): ")
	if err != nil {
		return ErrCanceled
	}
	kind, err := ParseKind(input)
	if err != nil {
		return err
	}
	return s.browse(kind)
}
