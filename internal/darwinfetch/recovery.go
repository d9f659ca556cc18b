package darwinfetch

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Dispatcher hands a recovery command to the external provisioning tool
// and reports whether it succeeded.
type Dispatcher interface {
	Invoke(ctx context.Context, command string) error
}

// ToolDispatcher runs Tool with the command's words as arguments. The words
// are split shell-style but never interpreted. Interactive keeps the tool in
// the foreground process group so it can prompt on the terminal.
type ToolDispatcher struct {
	Tool        string
	Interactive bool
}

// Invoke runs the tool once; a non-zero exit is an ExternalToolError.
func (d *ToolDispatcher) Invoke(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return &ExternalToolError{Command: command, Err: errors.New("empty recovery command")}
	}
	args, err := shlex.Split(command)
	if err != nil {
		return &ExternalToolError{Command: command, Err: err}
	}

	path, err := exec.LookPath(d.Tool)
	if err != nil {
		return &ExternalToolError{Command: command, Err: err}
	}

	ex := NewExecutor(ctx)
	ex.Interactive = d.Interactive
	debugf("Running %s %v\n", path, args)
	if err := ex.Run(exec.Command(path, args...)); err != nil {
		toolErr := &ExternalToolError{Command: command, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return toolErr
	}
	return nil
}

// RunRecovery forwards the entry's command to the dispatcher.
func RunRecovery(ctx context.Context, d Dispatcher, entry SourceEntry) error {
	if entry.Command == "" {
		return &ExternalToolError{Command: "", Err: errors.New("entry " + entry.Name + " " + entry.Version + " has no recovery command")}
	}
	return d.Invoke(ctx, entry.Command)
}
