package inspect

import (
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/holydocs/ceprep/pkg/inspect"
)

type Command struct {
	cmd *cobra.Command
}

// NewCommand creates a new inspect command
func NewCommand() *Command {
	c := &Command{}

	c.cmd = &cobra.Command{
		Use:   "inspect",
		Short: "Summarize operations, channels and messages of AsyncAPI files",
		Long: `Summarize AsyncAPI files the way the catalog sees them.

Example:
  ceprep inspect --asyncapi-files out/shop.json,out/billing.json`,
		RunE: c.run,
	}

	c.cmd.Flags().String("asyncapi-files", "", "Paths to asyncapi files separated by comma")
	c.cmd.Flags().Bool("json", false, "Print the summary as JSON")

	if err := c.cmd.MarkFlagRequired("asyncapi-files"); err != nil {
		logrus.Fatalf("error marking asyncapi-files flag as required: %v", err)
	}

	return c
}

// GetCommand returns the cobra command
func (c *Command) GetCommand() *cobra.Command {
	return c.cmd
}

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	asyncAPIFilesPath, err := cmd.Flags().GetString("asyncapi-files")
	if err != nil {
		return fmt.Errorf("error getting asyncapi-files flag: %w", err)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("error getting json flag: %w", err)
	}

	summaries, err := inspect.Load(cmd.Context(), strings.Split(asyncAPIFilesPath, ","))
	if err != nil {
		return fmt.Errorf("error loading asyncapi files: %w", err)
	}

	if asJSON {
		enc := j.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	printSummaries(cmd.OutOrStdout(), summaries)

	return nil
}

func printSummaries(w io.Writer, summaries []inspect.Summary) {
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%s (%s)\n", s.Title, s.Path)
		if s.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Description)
		}

		for _, op := range s.Operations {
			fmt.Fprintf(w, "  %-7s %s [%s]\n", op.Action, op.Channel.Address, op.Channel.Message)
			if op.Reply != nil {
				fmt.Fprintf(w, "  %-7s %s [%s]\n", "reply", op.Reply.Address, op.Reply.Message)
			}
		}
	}
}
