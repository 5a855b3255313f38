// Package cli holds the flag, config and logger plumbing shared by the ceprep commands.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/internal/config"
	"github.com/holydocs/ceprep/internal/logging"
)

// Env is what a command needs besides its own flags.
type Env struct {
	Config *config.Config
	Logger *logrus.Logger
}

// AddGlobalFlags registers the flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("silent", false, "Disable all logging, overrides --verbose")
	cmd.PersistentFlags().String("log-format", "", "Log format (text or json)")
	cmd.PersistentFlags().String("config", "", "Path to a ceprep.yml file with flag defaults")
}

// Setup loads the config file and builds the logger from the global flags.
func Setup(cmd *cobra.Command) (*Env, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error getting config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("error getting verbose flag: %w", err)
	}

	silent, err := cmd.Flags().GetBool("silent")
	if err != nil {
		return nil, fmt.Errorf("error getting silent flag: %w", err)
	}

	logFormat, err := StringOr(cmd, "log-format", cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  logging.Format(logFormat),
		Verbose: verbose,
		Silent:  silent,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	return &Env{
		Config: cfg,
		Logger: logger,
	}, nil
}

// StringOr returns the flag value when it was set on the command line, fallback otherwise.
func StringOr(cmd *cobra.Command, name, fallback string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("error getting %s flag: %w", name, err)
	}

	if !cmd.Flags().Changed(name) && fallback != "" {
		return fallback, nil
	}

	return value, nil
}

// Aliases returns a flag normalization func accepting the short names as aliases.
func Aliases(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if full, ok := aliases[name]; ok {
			name = full
		}
		return pflag.NormalizedName(name)
	}
}

// PrintChangelog writes the changes of a run in a human readable form.
func PrintChangelog(w io.Writer, changelog ceprep.Changelog, withDiff bool) {
	if len(changelog.Changes) == 0 {
		fmt.Fprintln(w, "No changes.")
		return
	}

	fmt.Fprintf(w, "Changes:\n")
	for _, change := range changelog.Changes {
		fmt.Fprintf(w, "• %s %s: %s\n", change.Type, change.Category, change.Details)
		if withDiff && change.Diff != "" {
			fmt.Fprintln(w, change.Diff)
		}
	}
}

// LogSummary logs how many items were skipped and which schemas were created.
func LogSummary(logger logrus.FieldLogger, report *ceprep.Report) {
	fields := logrus.Fields{
		"skipped":  len(report.Skipped()),
		"created":  len(report.Created),
		"warnings": len(report.Warnings),
	}
	logger.WithFields(fields).Info("Run summary")
}
