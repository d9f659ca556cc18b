package darwinfetch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: darwinfetch [command] [arguments]")
	colSuccess.Println("Run without a command for the interactive menu")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"version, --version", "", "Version information"},
		{"list, ls", "<kind>", "List sources of a catalog (generic, offline, recovery)"},
		{"get, g", "<kind> <n>", "Download the packages of source n"},
		{"recover", "<n>", "Run the recovery tool for recovery source n"},
		{"browse", "<kind>", "Pick a source in a full-screen browser"},
		{"check", "[kind...]", "Compare local catalogs with their remote copies"},
		{"update, u", "[kind...]", "Re-fetch catalogs that are out of date"},
		{"settings", "", "Toggle display settings interactively"},
		{"toggle", "<key>", "Toggle show_full_source_info or show_beta_installers"},
		{"publish", "[kind...]", "Upload local catalogs to the configured R2 bucket"},
	}

	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++ // Account for the space
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		color.Info.Println(c.Desc)
	}
	fmt.Println()
}

// parseKinds maps arguments to kinds; no arguments means every kind.
func parseKinds(args []string) ([]Kind, error) {
	if len(args) == 0 {
		return AllKinds, nil
	}
	kinds := make([]Kind, 0, len(args))
	for _, a := range args {
		k, err := ParseKind(a)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: darwinfetch %s", usage)
	}
	return nil
}

// Main is the CLI entrypoint, called from the root main package.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First Ctrl+C cancels the running operation, a second one exits now.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			colArrow.Print("\n-> ")
			color.Danger.Printf("Received %v. Cancelling process gracefully\n", sig)
			cancel()
			select {
			case <-sigs:
				colArrow.Print("\n-> ")
				color.Danger.Printf("Second interrupt received. Forcing immediate exit.\n")
				os.Exit(130)
			case <-time.After(2 * time.Second):
				colArrow.Print("\n-> ")
				color.Danger.Printf("Graceful shutdown timeout. Exiting.\n")
				os.Exit(130)
			}
		case <-ctx.Done():
		}
	}()

	configPath := ConfigFile
	if p := os.Getenv("DARWINFETCH_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	paths := initConfig(cfg)

	s := newSession(ctx, cfg, paths)
	if err := s.prepareDirs(); err != nil {
		colError.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(s, os.Args[1:]))
}

// run dispatches one command line and returns the process exit code.
func run(s *session, args []string) int {
	if len(args) == 0 {
		s.runMenu()
		return 0
	}

	cmd, rest := args[0], args[1:]
	var action func() error

	switch cmd {
	case "version", "--version":
		fmt.Printf("darwinfetch %s (%s) built %s\n", version, arch, buildDate)
		return 0

	case "help", "--help", "-h":
		printHelp()
		return 0

	case "list", "ls":
		action = func() error {
			if err := needArgs(rest, 1, "list <kind>"); err != nil {
				return err
			}
			kind, err := ParseKind(rest[0])
			if err != nil {
				return err
			}
			return s.listSources(kind)
		}

	case "get", "g":
		action = func() error {
			if err := needArgs(rest, 2, "get <kind> <n>"); err != nil {
				return err
			}
			kind, err := ParseKind(rest[0])
			if err != nil {
				return err
			}
			return s.acquireFrom(kind, rest[1])
		}

	case "recover":
		action = func() error {
			if err := needArgs(rest, 1, "recover <n>"); err != nil {
				return err
			}
			return s.acquireFrom(KindRecovery, rest[0])
		}

	case "browse":
		action = func() error {
			if err := needArgs(rest, 1, "browse <kind>"); err != nil {
				return err
			}
			kind, err := ParseKind(rest[0])
			if err != nil {
				return err
			}
			return s.browse(kind)
		}

	case "check":
		action = func() error {
			kinds, err := parseKinds(rest)
			if err != nil {
				return err
			}
			return handleCheckCommand(s.ctx, s.checker, kinds)
		}

	case "update", "u":
		action = func() error {
			kinds, err := parseKinds(rest)
			if err != nil {
				return err
			}
			return handleUpdateCommand(s.ctx, s.checker, kinds)
		}

	case "settings":
		action = func() error { return handleSettingsCommand(s.paths.SettingsFile) }

	case "toggle":
		action = func() error {
			if err := needArgs(rest, 1, "toggle <key>"); err != nil {
				return err
			}
			v, err := ToggleSetting(s.paths.SettingsFile, rest[0])
			if err != nil {
				return err
			}
			colSuccess.Printf("%s set to: %t\n", rest[0], v)
			return nil
		}

	case "publish":
		action = func() error {
			kinds, err := parseKinds(rest)
			if err != nil {
				return err
			}
			return handlePublishCommand(s.ctx, s.cfg, s.store, kinds)
		}

	default:
		colError.Printf("Unknown command: %s\n", cmd)
		printHelp()
		return 1
	}

	if !runAction(cmd, action) {
		return 1
	}
	return 0
}
