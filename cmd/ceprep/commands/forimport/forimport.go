package forimport

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/holydocs/ceprep/internal/cli"
	"github.com/holydocs/ceprep/internal/fileio"
	"github.com/holydocs/ceprep/pkg/document"
	"github.com/holydocs/ceprep/pkg/pipeline"
)

type Command struct {
	cmd *cobra.Command
}

// NewCommand creates a new for-import command
func NewCommand() *Command {
	c := &Command{}

	c.cmd = &cobra.Command{
		Use:   "for-import",
		Short: "Prepare an AsyncAPI 2.0.0 document for the catalog import",
		Long: `Name the messages after their payload type, attach the CloudEventContext trait,
unwrap the data envelope of every schema and split nested objects into named schemas.

Example:
  ceprep for-import --input asyncapi.json --output out/asyncapi.json --description "Shop events"`,
		RunE: c.run,
	}

	c.cmd.Flags().String("input", "", "Path to the AsyncAPI specification file")
	c.cmd.Flags().String("output", "", "Path to the output file (including filename)")
	c.cmd.Flags().String("description", "", "Description for the AsyncAPI document")
	c.cmd.Flags().Bool("changelog", false, "Print the schema changes after writing")
	c.cmd.Flags().SetNormalizeFunc(cli.Aliases(map[string]string{
		"in":   "input",
		"out":  "output",
		"desc": "description",
	}))

	for _, name := range []string{"input", "output"} {
		if err := c.cmd.MarkFlagRequired(name); err != nil {
			logrus.Fatalf("error marking %s flag as required: %v", name, err)
		}
	}

	return c
}

// GetCommand returns the cobra command
func (c *Command) GetCommand() *cobra.Command {
	return c.cmd
}

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd)
	if err != nil {
		return err
	}

	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("error getting input flag: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("error getting output flag: %w", err)
	}

	description, err := cli.StringOr(cmd, "description", env.Config.Description)
	if err != nil {
		return err
	}

	if description == "" {
		return errors.New("description must be given with --description or in the config file")
	}

	showChangelog, err := cmd.Flags().GetBool("changelog")
	if err != nil {
		return fmt.Errorf("error getting changelog flag: %w", err)
	}

	content, err := fileio.ReadInput(input)
	if err != nil {
		return err
	}

	doc, err := document.Parse(content)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", input, err)
	}

	report, err := pipeline.PrepareForImport(doc, pipeline.ImportOptions{
		Description: description,
	}, env.Logger.WithField("command", "for-import"))
	if err != nil {
		return fmt.Errorf("error preparing %s for import: %w", input, err)
	}

	data, err := document.Marshal(doc)
	if err != nil {
		return err
	}

	env.Logger.Info("Writing modified JSON file...")

	if err := fileio.WriteOutput(output, data); err != nil {
		return err
	}

	cli.LogSummary(env.Logger, report)
	env.Logger.Info("Prepared the AsyncAPI document for the import!")

	if showChangelog {
		cli.PrintChangelog(cmd.OutOrStdout(), report.Changelog, true)
	}

	return nil
}
