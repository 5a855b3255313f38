package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/holydocs/ceprep/cmd/ceprep/commands/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

type Command struct {
	cmd *cobra.Command
}

// NewCommand creates a new version command
func NewCommand() *Command {
	c := &Command{}

	c.cmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ceprep",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ceprep %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:    %s\n", Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:     %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Arch:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	return c
}

// GetCommand returns the cobra command
func (c *Command) GetCommand() *cobra.Command {
	return c.cmd
}
