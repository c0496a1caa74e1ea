package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
)

var getCmd = &cobra.Command{
	Use:   "get <[host[@args]:]record.field>",
	Short: "Read a field's current array value",
	Long: `Fetch the current value of a remote field via GET_ARRAY_BY_NAME.

Examples:
  mxctl get mx1@9727:sample_x.position
  mxctl get -o json sample_x.position`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier := args[0]
	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	addr := srv.Address()
	value, err := srv.GetArray(ctx, addr.RecordField())
	if err != nil {
		return fmt.Errorf("get %s: %w", identifier, err)
	}

	result := fieldValue{
		Field:    addr.RecordField(),
		Datatype: value.Datatype.String(),
		Dims:     value.Dims,
		Value:    formatValue(value),
	}

	return cmdutil.PrintResource(cmd.OutOrStdout(), result, result)
}

// fieldValue is the JSON/table shape of a `get` result.
type fieldValue struct {
	Field    string `json:"field" yaml:"field"`
	Datatype string `json:"datatype" yaml:"datatype"`
	Dims     []int  `json:"dims,omitempty" yaml:"dims,omitempty"`
	Value    string `json:"value" yaml:"value"`
}

func (f fieldValue) Headers() []string { return []string{"Field", "Datatype", "Dims", "Value"} }

func (f fieldValue) Rows() [][]string {
	return [][]string{{f.Field, f.Datatype, dimsString(f.Dims), f.Value}}
}

// dimsString renders an array shape as "3x4", or "-" for a scalar.
func dimsString(dims []int) string {
	if len(dims) == 0 {
		return "-"
	}
	s := fmt.Sprintf("%d", dims[0])
	for _, d := range dims[1:] {
		s += fmt.Sprintf("x%d", d)
	}
	return s
}
