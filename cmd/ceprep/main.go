package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/holydocs/ceprep/cmd/ceprep/commands/convert"
	"github.com/holydocs/ceprep/cmd/ceprep/commands/forimport"
	"github.com/holydocs/ceprep/cmd/ceprep/commands/inspect"
	"github.com/holydocs/ceprep/cmd/ceprep/commands/version"
	"github.com/holydocs/ceprep/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ceprep",
		Short: "Prepare AsyncAPI documents for a CloudEvents event catalog",
		Long: `ceprep rewrites AsyncAPI JSON documents so they can be imported into an event
catalog that expects CloudEvents shaped messages.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		convert.NewCommand().GetCommand(),
		forimport.NewCommand().GetCommand(),
		inspect.NewCommand().GetCommand(),
		version.NewCommand().GetCommand(),
	)

	return rootCmd
}
