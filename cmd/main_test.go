// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/snakepilot/internal/observability"
)

// executeCommand runs a fresh command tree with args and returns its combined output.
func executeCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("SNAKEPILOT_LOGGER_LEVEL", "fatal")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// noopCmd is a leaf that captures the context the root hands to subcommands.
func noopCmd(capture *context.Context) *cobra.Command {
	return &cobra.Command{
		Use: "noop",
		RunE: func(cmd *cobra.Command, args []string) error {
			*capture = cmd.Context()
			return nil
		},
	}
}
