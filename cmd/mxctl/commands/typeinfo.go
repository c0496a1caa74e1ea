package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
)

var typeCmd = &cobra.Command{
	Use:   "type <[host[@args]:]record.field>",
	Short: "Report a field's datatype and dimensions",
	Long:  `Query a remote field's datatype and array shape via GET_FIELD_TYPE.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runType,
}

func runType(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier := args[0]
	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	addr := srv.Address()
	dt, dims, err := srv.GetFieldType(ctx, addr.RecordField())
	if err != nil {
		return fmt.Errorf("type %s: %w", identifier, err)
	}

	result := typeInfo{Field: addr.RecordField(), Datatype: dt.String(), Dims: dims}
	return cmdutil.PrintResource(cmd.OutOrStdout(), result, result)
}

type typeInfo struct {
	Field    string `json:"field" yaml:"field"`
	Datatype string `json:"datatype" yaml:"datatype"`
	Dims     []int  `json:"dims,omitempty" yaml:"dims,omitempty"`
}

func (t typeInfo) Headers() []string { return []string{"Field", "Datatype", "Dims"} }

func (t typeInfo) Rows() [][]string {
	return [][]string{{t.Field, t.Datatype, dimsString(t.Dims)}}
}
