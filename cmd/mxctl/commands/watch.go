package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
	"github.com/openmx/mxnet/internal/cli/prompt"
	"github.com/openmx/mxnet/pkg/mxnet"
)

var watchCmd = &cobra.Command{
	Use:   "watch <[host[@args]:]record.field>",
	Short: "Stream value-changed callbacks for a field until interrupted",
	Long: `Register a callback on a field via ADD_CALLBACK and print every
change as it arrives. Runs until Ctrl-C, then asks whether to remove the
callback before exiting (the server keeps firing it for the life of the
connection otherwise).`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	identifier := args[0]

	// Connecting uses the command timeout; the watch itself runs until
	// interrupted, so it is not bound by that same deadline.
	connectCtx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	srv, err := cmdutil.OpenServer(connectCtx, identifier)
	cancel()
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	field := srv.Address().RecordField()
	out := cmd.OutOrStdout()

	cb, err := srv.AddCallback(cmd.Context(), field, mxnet.CallbackTypeValueChanged, func(_ context.Context, f *mxnet.NetworkField, value *mxnet.Value) {
		fmt.Fprintf(out, "%s = %s\n", f.Name(), formatValue(value))
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", identifier, err)
	}

	fmt.Fprintf(out, "watching %s (callback %d), press Ctrl-C to stop\n", identifier, cb.ID())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)

	remove, err := prompt.Confirm("Delete callback before exiting?", true)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if !remove {
		return nil
	}

	deleteCtx, cancel := context.WithTimeout(context.Background(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()
	if err := srv.DeleteCallback(deleteCtx, cb); err != nil {
		return fmt.Errorf("deleting callback: %w", err)
	}
	return nil
}
