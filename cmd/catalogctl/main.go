// Command catalogctl operates the catalog service: it runs the server,
// seeds the listing repository and queries bundled fixtures offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Operate the Abuja e-mall catalog",
		Long: `catalogctl runs and maintains the catalog service.

Available commands:
  serve  - Run the HTTP catalog service
  seed   - Write the bundled fixtures to the listing repository
  search - Run the filter pipeline over fixtures and print JSON
  assist - Ask the shopping assistant a question over fixtures
  token  - Mint a bearer token for the write endpoints`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for command output (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(),
		newSeedCmd(opts),
		newSearchCmd(opts),
		newAssistCmd(opts),
		newTokenCmd(),
	)
	return cmd
}
