package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
	"github.com/openmx/mxnet/pkg/mxnet"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Inspect or change a field's per-field attributes",
}

var attributeGetCmd = &cobra.Command{
	Use:   "get <[host[@args]:]record.field> <attribute>",
	Short: "Read a field attribute via GET_ATTRIBUTE",
	Long: `Read a field attribute. attribute is either a name
(valueChangeThreshold, pollPeriod, readOnly, noAccess) or a raw numeric
attribute ID.`,
	Args: cobra.ExactArgs(2),
	RunE: runAttributeGet,
}

var attributeSetCmd = &cobra.Command{
	Use:   "set <[host[@args]:]record.field> <attribute> <value>",
	Short: "Change a field attribute via SET_ATTRIBUTE",
	Args:  cobra.ExactArgs(3),
	RunE:  runAttributeSet,
}

func init() {
	attributeCmd.AddCommand(attributeGetCmd, attributeSetCmd)
}

var attributeIDs = map[string]uint32{
	"valuechangethreshold": mxnet.AttributeValueChangeThreshold,
	"pollperiod":           mxnet.AttributePollPeriod,
	"readonly":             mxnet.AttributeReadOnly,
	"noaccess":             mxnet.AttributeNoAccess,
}

func resolveAttributeID(name string) (uint32, error) {
	if id, ok := attributeIDs[strings.ToLower(name)]; ok {
		return id, nil
	}
	if id, err := strconv.ParseUint(name, 10, 32); err == nil {
		return uint32(id), nil
	}
	return 0, fmt.Errorf("unknown attribute %q", name)
}

func runAttributeGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier, name := args[0], args[1]
	attributeID, err := resolveAttributeID(name)
	if err != nil {
		return err
	}

	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	value, err := srv.GetAttribute(ctx, srv.Address().RecordField(), attributeID)
	if err != nil {
		return fmt.Errorf("attribute get %s: %w", name, err)
	}

	result := attributeValue{Field: srv.Address().RecordField(), Attribute: name, Value: value}
	return cmdutil.PrintResource(cmd.OutOrStdout(), result, result)
}

func runAttributeSet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier, name, raw := args[0], args[1], args[2]
	attributeID, err := resolveAttributeID(name)
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid attribute value %q: %w", raw, err)
	}

	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	if err := srv.SetAttribute(ctx, srv.Address().RecordField(), attributeID, value); err != nil {
		return fmt.Errorf("attribute set %s: %w", name, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("set attribute %s to %g on %s", name, value, identifier))
	return nil
}

type attributeValue struct {
	Field     string  `json:"field" yaml:"field"`
	Attribute string  `json:"attribute" yaml:"attribute"`
	Value     float64 `json:"value" yaml:"value"`
}

func (a attributeValue) Headers() []string { return []string{"Field", "Attribute", "Value"} }

func (a attributeValue) Rows() [][]string {
	return [][]string{{a.Field, a.Attribute, strconv.FormatFloat(a.Value, 'g', -1, 64)}}
}
