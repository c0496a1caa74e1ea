package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
)

var putType string

var putCmd = &cobra.Command{
	Use:   "put <[host[@args]:]record.field> <value>",
	Short: "Write a field's array value",
	Long: `Write value to a remote field via PUT_ARRAY_BY_NAME.

value may be a comma-separated list to write a one-dimensional array
(string, double, long and ulong only; hex and bool use the first element).
--type selects how value is interpreted (default: string).

Examples:
  mxctl put sample_x.position 12.5 --type double
  mxctl put sample_x.position 1,2,3 --type long`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putType, "type", "string", "Value type: string, double, long, ulong, hex, bool")
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier, raw := args[0], args[1]

	value, err := parseValue(putType, raw)
	if err != nil {
		return err
	}

	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	if err := srv.PutArray(ctx, srv.Address().RecordField(), value); err != nil {
		return fmt.Errorf("put %s: %w", identifier, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("wrote %s to %s", raw, identifier))
	return nil
}
