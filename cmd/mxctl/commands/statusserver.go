package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
	"github.com/openmx/mxnet/internal/logger"
	"github.com/openmx/mxnet/internal/statusapi"
)

var statusServerCmd = &cobra.Command{
	Use:   "status-server",
	Short: "Run the read-only HTTP introspection API",
	Long: `Start internal/statusapi's HTTP server, exposing GET /healthz,
GET /servers, GET /servers/{address} and GET /metrics over the
connections held in this process's Directory. status-server opens no
connections of its own, and connections opened by other mxctl
invocations are not visible to it. Runs until interrupted.`,
	RunE: runStatusServer,
}

func init() {
	rootCmd.AddCommand(statusServerCmd)
}

func runStatusServer(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	statusCfg := statusapi.Config{
		Enabled:      true,
		Addr:         cfg.StatusAPI.Addr,
		ReadTimeout:  cfg.StatusAPI.ReadTimeout,
		WriteTimeout: cfg.StatusAPI.WriteTimeout,
		IdleTimeout:  cfg.StatusAPI.IdleTimeout,
	}

	srv := statusapi.NewServer(statusCfg, cmdutil.Directory())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Start(ctx) }()

	logger.Info("status API listening", "addr", srv.Addr())
	fmt.Printf("status API listening on %s, press Ctrl-C to stop\n", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		signal.Stop(sigCh)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := srv.Stop(stopCtx); err != nil {
			return fmt.Errorf("stopping status API: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("status API: %w", err)
		}
		return nil
	}
}
