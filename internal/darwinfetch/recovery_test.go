package darwinfetch

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

type fakeDispatcher struct {
	commands []string
	err      error
}

func (d *fakeDispatcher) Invoke(ctx context.Context, command string) error {
	d.commands = append(d.commands, command)
	return d.err
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestToolDispatcherSuccess(t *testing.T) {
	requireShell(t)
	d := &ToolDispatcher{Tool: "sh"}
	if err := d.Invoke(context.Background(), `-c 'exit 0'`); err != nil {
		t.Errorf("Invoke failed: %v", err)
	}
}

func TestToolDispatcherExitCode(t *testing.T) {
	requireShell(t)
	d := &ToolDispatcher{Tool: "sh"}
	err := d.Invoke(context.Background(), `-c 'exit 3'`)
	var te *ExternalToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ExternalToolError, got %v", err)
	}
	if te.ExitCode != 3 {
		t.Errorf("ExitCode = %d, expected 3", te.ExitCode)
	}
	if te.Command != `-c 'exit 3'` {
		t.Errorf("Command = %q", te.Command)
	}
}

func TestToolDispatcherQuotedWordsStayWhole(t *testing.T) {
	requireShell(t)
	d := &ToolDispatcher{Tool: "sh"}
	// the script only succeeds when "$1" arrives as a single word
	err := d.Invoke(context.Background(), `-c '[ "$1" = "two words" ]' sh "two words"`)
	if err != nil {
		t.Errorf("quoted argument was split: %v", err)
	}
}

func TestToolDispatcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		command string
	}{
		{"empty command", "sh", "   "},
		{"missing tool", "darwinfetch-no-such-tool", "-b board download"},
		{"unterminated quote", "sh", `-c "exit 0`},
	}
	for _, test := range tests {
		d := &ToolDispatcher{Tool: test.tool}
		err := d.Invoke(context.Background(), test.command)
		var te *ExternalToolError
		if !errors.As(err, &te) {
			t.Errorf("%s: expected ExternalToolError, got %v", test.name, err)
		}
	}
}

func TestRunRecovery(t *testing.T) {
	d := &fakeDispatcher{}
	entry := SourceEntry{Name: "RecoveryOS", Version: "13.6", Command: "-b Mac-827FAC58A8FDFA22 download"}
	if err := RunRecovery(context.Background(), d, entry); err != nil {
		t.Fatalf("RunRecovery failed: %v", err)
	}
	if len(d.commands) != 1 || d.commands[0] != entry.Command {
		t.Errorf("dispatcher got %v, expected the entry command", d.commands)
	}

	d.err = &ExternalToolError{Command: entry.Command, ExitCode: 1, Err: errors.New("exit status 1")}
	var te *ExternalToolError
	if err := RunRecovery(context.Background(), d, entry); !errors.As(err, &te) {
		t.Errorf("tool failure not propagated: %v", err)
	}

	err := RunRecovery(context.Background(), &fakeDispatcher{}, SourceEntry{Name: "Generic"})
	if !errors.As(err, &te) {
		t.Errorf("entry without command: expected ExternalToolError, got %v", err)
	}
}
