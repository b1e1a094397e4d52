// Command edgescan scans a list of CDN edge IP candidates for TCP/HTTP
// reachability and, optionally, download throughput (spec.md §1).
//
// Grounded on the teacher's github.com/nabbar/golib/cobra RunE-based command
// style, trimmed to a single root command with spf13/cobra directly instead
// of the teacher's Cobra wrapper type (NewCommand/SetVersion/Init/component
// registry): this tool has one pipeline and no sub-command tree, so the
// wrapper's multi-command bookkeeping has nothing to manage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charSLee013/edgescan/internal/config"
	"github.com/charSLee013/edgescan/internal/errkit"
	"github.com/charSLee013/edgescan/internal/logging"
	"github.com/charSLee013/edgescan/internal/orchestrator"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edgescan [candidate-files-or-IPs...]",
		Short: "Scan CDN edge IP candidates for latency, routing, and throughput",
		Long: "edgescan probes a list of candidate IPs (files of one IP/CIDR per line, or " +
			"inline literals) for TCP-connect latency, HTTP routing consistency, or both, " +
			"then optionally measures download throughput on the survivors.",
		Args: cobra.ArbitraryArgs,
		RunE: runRoot,
	}
	config.BindFlags(cmd)
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return reportAndExit(err)
	}

	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warning("signal received, stopping after in-flight probes drain", nil)
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := orchestrator.Run(ctx, cfg, log); err != nil {
		return reportAndExit(err)
	}
	return nil
}

// reportAndExit prints a user-facing message for configuration errors
// distinctly from unexpected internal ones, per spec.md §7.
func reportAndExit(err error) error {
	if errkit.Is(err, errkit.CodeConfig) {
		fmt.Fprintf(os.Stderr, "edgescan: configuration error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "edgescan: %v\n", err)
	}
	return err
}
