package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
	"github.com/openmx/mxnet/pkg/mxnet"
)

var serversCmd = &cobra.Command{
	Use:   "servers <[host[@args]:]record.field>...",
	Short: "Connect to one or more servers and summarize their state",
	Long: `Open a connection to each given address (or reuse one already
open in this process) and print its status, negotiated data format, and
callback count.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServers,
}

func runServers(cmd *cobra.Command, args []string) error {
	summaries := make([]serverSummary, 0, len(args))

	for _, identifier := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOr(cmdutil.Flags.Timeout))
		srv, err := cmdutil.OpenServer(ctx, identifier)
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", identifier, err)
		}
		summaries = append(summaries, summarizeServer(srv))
	}

	return cmdutil.PrintResource(cmd.OutOrStdout(), summaries, serverSummaryList(summaries))
}

type serverSummary struct {
	Address       string `json:"address" yaml:"address"`
	Status        string `json:"status" yaml:"status"`
	DataFormat    string `json:"dataFormat" yaml:"dataFormat"`
	Use64BitLongs bool   `json:"use64BitLongs" yaml:"use64BitLongs"`
	RemoteVersion int    `json:"remoteVersion" yaml:"remoteVersion"`
	Generation    uint64 `json:"generation" yaml:"generation"`
	CallbackCount int    `json:"callbackCount" yaml:"callbackCount"`
}

func summarizeServer(s *mxnet.Server) serverSummary {
	return serverSummary{
		Address:       s.Address().Raw,
		Status:        s.Status().String(),
		DataFormat:    s.DataFormat().String(),
		Use64BitLongs: s.Use64BitLongs(),
		RemoteVersion: s.RemoteVersion(),
		Generation:    s.Generation(),
		CallbackCount: s.CallbackCount(),
	}
}

type serverSummaryList []serverSummary

func (l serverSummaryList) Headers() []string {
	return []string{"Address", "Status", "Format", "64bit", "Remote Version", "Generation", "Callbacks"}
}

func (l serverSummaryList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{
			s.Address, s.Status, s.DataFormat,
			fmt.Sprintf("%v", s.Use64BitLongs),
			fmt.Sprintf("%d", s.RemoteVersion),
			fmt.Sprintf("%d", s.Generation),
			fmt.Sprintf("%d", s.CallbackCount),
		}
	}
	return rows
}
