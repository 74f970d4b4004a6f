package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes a command with a test context, wrapping it in a parent
// application the way the real CLI does.
func RunCommand(t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()

	return RunCommandWithContext(context.Background(), t, command, args...)
}

// RunCommandWithContext executes a command with a custom context.
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "test",
		Commands: []*cli.Command{command},
	}

	fullArgs := append([]string{"test", command.Name}, args...)
	return app.Run(ctx, fullArgs)
}

// RunCommandCapture executes a command and returns everything it wrote to its
// output writer. The writer is set on both the wrapper application and the
// command itself so output lands in the buffer regardless of nesting.
func RunCommandCapture(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	command.Writer = &buf

	app := &cli.Command{
		Name:     "test",
		Writer:   &buf,
		Commands: []*cli.Command{command},
	}

	fullArgs := append([]string{"test", command.Name}, args...)
	err := app.Run(context.Background(), fullArgs)

	return buf.String(), err
}
