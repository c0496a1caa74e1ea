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

var optionCmd = &cobra.Command{
	Use:   "option",
	Short: "Inspect or change a server's connection-scoped options",
}

var optionGetCmd = &cobra.Command{
	Use:   "get <[host[@args]:]record.field> <option>",
	Short: "Read a connection option via GET_OPTION",
	Long: `Read a server option via GET_OPTION. option is either a name
(dataFormat, nativeDataFormat, use64BitLongs, wordSize, clientVersion,
clientVersionTime) or a raw numeric option ID.

The record.field portion of the address is only used to pick a
connection; options are connection-scoped, not field-scoped.`,
	Args: cobra.ExactArgs(2),
	RunE: runOptionGet,
}

var optionSetCmd = &cobra.Command{
	Use:   "set <[host[@args]:]record.field> <option> <value>",
	Short: "Change a connection option via SET_OPTION",
	Args:  cobra.ExactArgs(3),
	RunE:  runOptionSet,
}

func init() {
	optionCmd.AddCommand(optionGetCmd, optionSetCmd)
}

var optionIDs = map[string]uint32{
	"dataformat":       mxnet.OptionDataFormat,
	"nativedataformat": mxnet.OptionNativeDataFormat,
	"use64bitlongs":    mxnet.OptionUse64BitLongs,
	"wordsize":         mxnet.OptionWordSize,
	"clientversion":    mxnet.OptionClientVersion,
	"clientversiontime": mxnet.OptionClientVersionTime,
}

// resolveOptionID accepts either a known option name or a raw numeric ID.
func resolveOptionID(name string) (uint32, error) {
	if id, ok := optionIDs[strings.ToLower(name)]; ok {
		return id, nil
	}
	if id, err := strconv.ParseUint(name, 10, 32); err == nil {
		return uint32(id), nil
	}
	return 0, fmt.Errorf("unknown option %q", name)
}

func runOptionGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier, name := args[0], args[1]
	optionID, err := resolveOptionID(name)
	if err != nil {
		return err
	}

	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	value, err := srv.GetOption(ctx, optionID)
	if err != nil {
		return fmt.Errorf("option get %s: %w", name, err)
	}

	result := optionValue{Option: name, Value: value}
	return cmdutil.PrintResource(cmd.OutOrStdout(), result, result)
}

func runOptionSet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
	defer cancel()

	identifier, name, raw := args[0], args[1], args[2]
	optionID, err := resolveOptionID(name)
	if err != nil {
		return err
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid option value %q: %w", raw, err)
	}

	srv, err := cmdutil.OpenServer(ctx, identifier)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	if err := srv.SetOption(ctx, optionID, uint32(value)); err != nil {
		return fmt.Errorf("option set %s: %w", name, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("set option %s to %d on %s", name, value, identifier))
	return nil
}

type optionValue struct {
	Option string `json:"option" yaml:"option"`
	Value  uint32 `json:"value" yaml:"value"`
}

func (o optionValue) Headers() []string { return []string{"Option", "Value"} }

func (o optionValue) Rows() [][]string {
	return [][]string{{o.Option, strconv.FormatUint(uint64(o.Value), 10)}}
}
