package convert

import (
	"fmt"
	"regexp"

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

// NewCommand creates a new convert command
func NewCommand() *Command {
	c := &Command{}

	c.cmd = &cobra.Command{
		Use:   "convert",
		Short: "Wrap schema payloads in a CloudEvents envelope",
		Long: `Wrap the properties of every schema in components.schemas below a "data" property
and merge the CloudEventContext trait headers into it.

Example:
  ceprep convert --input asyncapi.json --output out/asyncapi.json --namespace shop --ignore-schema '^Internal'`,
		RunE: c.run,
	}

	c.cmd.Flags().String("input", "", "Path to the AsyncAPI specification file")
	c.cmd.Flags().String("output", "", "Path to the output file (including filename)")
	c.cmd.Flags().String("namespace", "", "Namespace to prefix channel names with")
	c.cmd.Flags().String("ignore-schema", "", "Regular expression of schema names to leave untouched")
	c.cmd.Flags().Bool("changelog", false, "Print the schema and channel changes after writing")
	c.cmd.Flags().SetNormalizeFunc(cli.Aliases(map[string]string{
		"in":  "input",
		"out": "output",
		"is":  "ignore-schema",
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

	namespace, err := cli.StringOr(cmd, "namespace", env.Config.Namespace)
	if err != nil {
		return err
	}

	ignoreSchema, err := cli.StringOr(cmd, "ignore-schema", env.Config.IgnoreSchema)
	if err != nil {
		return err
	}

	showChangelog, err := cmd.Flags().GetBool("changelog")
	if err != nil {
		return fmt.Errorf("error getting changelog flag: %w", err)
	}

	opts := pipeline.ConvertOptions{
		Namespace: namespace,
	}

	if ignoreSchema != "" {
		opts.IgnoreSchema, err = regexp.Compile(ignoreSchema)
		if err != nil {
			return fmt.Errorf("error compiling ignore-schema pattern: %w", err)
		}
	}

	content, err := fileio.ReadInput(input)
	if err != nil {
		return err
	}

	doc, err := document.Parse(content)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", input, err)
	}

	report, err := pipeline.Convert(doc, opts, env.Logger.WithField("command", "convert"))
	if err != nil {
		return fmt.Errorf("error converting %s: %w", input, err)
	}

	data, err := document.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	env.Logger.Info("Writing modified JSON file...")

	if err := fileio.WriteOutput(output, data); err != nil {
		return err
	}

	cli.LogSummary(env.Logger, report)
	env.Logger.Info("Applied the necessary modifications to the JSON schema for an import into the event catalog!")

	if showChangelog {
		cli.PrintChangelog(cmd.OutOrStdout(), report.Changelog, false)
	}

	return nil
}
