// Package cmdutil provides shared utilities for mxctl commands: global
// flag state, config loading, and connecting to an MX server with the
// observability hooks wired in.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/openmx/mxnet/internal/cli/output"
	"github.com/openmx/mxnet/internal/cli/prompt"
	"github.com/openmx/mxnet/internal/telemetry"
	"github.com/openmx/mxnet/pkg/config"
	"github.com/openmx/mxnet/pkg/mxnet"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values shared across commands.
type GlobalFlags struct {
	ConfigPath    string
	Timeout       time.Duration
	DataFormat    string
	Use64BitLongs bool
	Output        string
	NoColor       bool
	Verbose       bool
}

// dir is the process-wide Server Directory: within one mxctl invocation,
// repeated identifiers naming the same server share a connection.
var dir = mxnet.NewDirectory()

// Directory returns the process-wide Server Directory.
func Directory() *mxnet.Directory { return dir }

// LoadConfig loads pkg/config using the --config flag if given, falling
// back to the default search path.
func LoadConfig() (*config.Config, error) {
	return config.Load(Flags.ConfigPath)
}

// ServerOptions builds mxnet.ServerOptions from the loaded config,
// overridden by any global flags the user set explicitly.
func ServerOptions(cfg *config.Config, metricsEnabled, tracingEnabled bool) (mxnet.ServerOptions, error) {
	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = cfg.DefaultPort
	opts.Timeout = cfg.DefaultTimeout
	opts.Use64BitLongs = cfg.Use64BitLongs
	opts.Username = cfg.Username
	opts.ProgramName = cfg.ProgramName
	opts.ReconnectPollInterval = cfg.Reconnect.PollInterval
	opts.MaxReconnectAttempts = cfg.Reconnect.MaxReconnectAttempts

	dataFormat := cfg.DataFormat
	if Flags.DataFormat != "" {
		dataFormat = Flags.DataFormat
	}
	switch strings.ToLower(dataFormat) {
	case "ascii":
		opts.RequestedFormat = mxnet.FormatASCII
	case "raw":
		opts.RequestedFormat = mxnet.FormatRaw
	case "xdr":
		opts.RequestedFormat = mxnet.FormatXDR
	case "negotiate", "":
		opts.RequestedFormat = mxnet.FormatUnknown
	default:
		return opts, fmt.Errorf("unknown data format %q", dataFormat)
	}

	if Flags.Timeout > 0 {
		opts.Timeout = Flags.Timeout
	}
	if Flags.Use64BitLongs {
		opts.Use64BitLongs = true
	}

	if metricsEnabled {
		opts.Metrics = telemetry.PrometheusMetrics{}
	}
	if tracingEnabled {
		opts.Tracer = telemetry.MXTracer{}
	}

	return opts, nil
}

// OpenServer loads config and opens a connection for identifier,
// returning the Server.
func OpenServer(ctx context.Context, identifier string) (*mxnet.Server, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	opts, err := ServerOptions(cfg, cfg.Metrics.Enabled, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, err
	}

	return mxnet.Open(ctx, dir, identifier, opts)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// PrintResource prints a resource in the configured format. For table
// format, it uses the provided tableRenderer. For JSON/YAML, it outputs
// the resource directly.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !Flags.NoColor)
	printer.Success(msg)
}

// HandleAbort checks if err is a prompt abort (Ctrl+C) and prints a
// message. Returns nil for abort, otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
