package darwinfetch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// stdinReader is shared by every prompt so buffered input is never lost
// between the menu and its sub-prompts.
var stdinReader = bufio.NewReader(os.Stdin)

// readLine prints a prompt and returns the trimmed answer.
func readLine(p colorPrinter, format string, a ...any) (string, error) {
	cPrintf(p, format, a...)
	response, err := stdinReader.ReadString('\n')
	if err != nil && response == "" {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// pause waits for Enter so the result stays visible before the screen clears.
func pause() {
	if !isTerminal(os.Stdin) {
		return
	}
	fmt.Print("Press Enter to continue...")
	_, _ = stdinReader.ReadString('\n')
}
