// Package pipeline composes the rewriting steps into the convert and for-import pipelines.
//
// A pipeline mutates the parsed document in place. Errors returned by a pipeline are fatal
// and the document must not be written; items that could not be rewritten are reported as
// skipped outcomes instead.
package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/internal/verify"
	"github.com/holydocs/ceprep/pkg/asyncapi"
	"github.com/holydocs/ceprep/pkg/cloudevents"
	"github.com/holydocs/ceprep/pkg/document"
	"github.com/holydocs/ceprep/pkg/schema"
)

const schemasPath = "components.schemas."

var errIgnored = errors.New("schema name matches the ignore pattern")

// ConvertOptions configures Convert.
type ConvertOptions struct {
	// Namespace is prepended to every channel key when set.
	Namespace string
	// IgnoreSchema leaves schemas with a matching name untouched.
	IgnoreSchema *regexp.Regexp
}

// ImportOptions configures PrepareForImport.
type ImportOptions struct {
	Description string
	// Clock stamps the names of split schemas, time.Now when nil.
	Clock func() time.Time
}

// Convert wraps every schema payload in a data envelope and merges the CloudEventContext
// headers into it. Channels are prefixed with the namespace, if any.
func Convert(doc document.Object, opts ConvertOptions, logger logrus.FieldLogger) (*ceprep.Report, error) {
	report := &ceprep.Report{}

	if version, err := asyncapi.Version(doc); err != nil {
		logger.Warnf("%v, continuing", err)
	} else {
		logger.Debugf("Detected AsyncAPI v%d document", version)
	}

	schemas, err := asyncapi.Schemas(doc)
	if err != nil {
		return nil, err
	}

	beforeSchemas, beforeChannels := snapshot(schemas), snapshotChannels(doc)

	outcomes, err := asyncapi.PrefixChannels(doc, opts.Namespace)
	if err != nil {
		return nil, fmt.Errorf("error prefixing channels: %w", err)
	}
	report.Add(outcomes...)

	headers, err := cloudevents.ContextHeaders(doc)
	if err != nil {
		return nil, err
	}

	logger.Info("Processing schemas...")

	for _, name := range document.Keys(schemas) {
		path := schemasPath + name

		if opts.IgnoreSchema != nil && opts.IgnoreSchema.MatchString(name) {
			logger.WithField("path", path).Debugf("Skipping schema: %s", name)
			report.Add(ceprep.Skip(ceprep.StepWrap, path, errIgnored))
			continue
		}

		logger.WithField("path", path).Debugf("Processing schema: %s", name)

		v, _ := schemas.Get(name)

		node := schema.Classify(v)

		wrapped, ok := schema.Wrap(node)
		if !ok {
			outcome := ceprep.Skip(ceprep.StepWrap, path, fmt.Errorf("schema %s is not an object schema with properties", name))
			logSkipped(logger, outcome)
			report.Add(outcome)

			// the headers still apply to an unwrapped schema
			if node.Kind() != schema.KindInvalid {
				cloudevents.MergeContext(node.Raw(), headers)
			}
			continue
		}

		cloudevents.MergeContext(wrapped, headers)
		schemas.Set(name, wrapped)
		report.Add(ceprep.Done(ceprep.StepWrap, path))
	}

	logger.Info("Modifying of schemas completed!")

	report.Changelog = ceprep.CompareSchemas(beforeSchemas, snapshot(schemas)).
		Merge(ceprep.CompareChannels(beforeChannels, snapshotChannels(doc)))

	return report, nil
}

// PrepareForImport rewrites an AsyncAPI 2.0.0 document for the catalog import: messages are
// named and decorated with CloudEvents headers and traits, schemas are unwrapped from their
// data envelope, split into flat named schemas and annotated with numeric formats.
func PrepareForImport(doc document.Object, opts ImportOptions, logger logrus.FieldLogger) (*ceprep.Report, error) {
	report := &ceprep.Report{}

	if err := asyncapi.RequireVersion(doc, asyncapi.ImportVersion); err != nil {
		return nil, err
	}

	beforeSchemas := map[string]any{}
	if schemas, err := asyncapi.Schemas(doc); err == nil {
		beforeSchemas = snapshot(schemas)
	}

	assigner, err := asyncapi.NewAssigner(doc, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Retrieving and setting 'name' for messages...")
	report.Add(logOutcomes(logger, assigner.AssignNames())...)

	logger.Info("Setting 'headers' for messages...")
	report.Add(logOutcomes(logger, assigner.AssignHeaders())...)

	logger.Info("Setting 'traits' for messages...")
	report.Add(logOutcomes(logger, assigner.AssignTraits())...)

	logger.Info("Setting 'messageTraits' for components...")
	if err := cloudevents.SetContextTrait(doc); err != nil {
		return nil, err
	}

	logger.Info("Setting description for the AsyncAPI document...")
	if err := asyncapi.AssignDescription(doc, opts.Description); err != nil {
		return nil, err
	}
	report.Add(ceprep.Done(ceprep.StepDescription, "info.description"))

	schemas, err := asyncapi.Schemas(doc)
	if err != nil {
		return nil, err
	}

	logger.Info("Removing CloudEvent context around the message payload...")
	report.Add(logOutcomes(logger, unwrapAll(schemas))...)

	logger.Info("Splitting nested schemas...")
	var nameOpts []schema.NameOption
	if opts.Clock != nil {
		nameOpts = append(nameOpts, schema.WithClock(opts.Clock))
	}

	splitter := schema.NewSplitter(schemas, schema.NewNameAllocator(schemas, nameOpts...))
	splitter.SplitAll()

	report.Created = splitter.Created()
	for _, name := range report.Created {
		logger.WithField("path", schemasPath+name).Debug("Created schema")
		report.Add(ceprep.Done(ceprep.StepSplit, schemasPath+name))
	}

	logger.Info("Annotating number formats...")
	schema.AnnotateAll(schemas)
	for _, name := range document.Keys(schemas) {
		report.Add(ceprep.Done(ceprep.StepAnnotate, schemasPath+name))
	}

	verifyReferences(doc, report, logger)

	report.Changelog = ceprep.CompareSchemas(beforeSchemas, snapshot(schemas))

	return report, nil
}

func unwrapAll(schemas document.Object) []ceprep.Outcome {
	outcomes := make([]ceprep.Outcome, 0, schemas.Len())

	for pair := schemas.Oldest(); pair != nil; pair = pair.Next() {
		path := schemasPath + pair.Key

		if err := schema.Unwrap(pair.Value, "components", "schemas", pair.Key); err != nil {
			outcomes = append(outcomes, ceprep.Skip(ceprep.StepUnwrap, path, err))
			continue
		}

		outcomes = append(outcomes, ceprep.Done(ceprep.StepUnwrap, path))
	}

	return outcomes
}

func verifyReferences(doc document.Object, report *ceprep.Report, logger logrus.FieldLogger) {
	problems := verify.References(doc)

	compiled, err := verify.Compile(doc)
	if err != nil {
		logger.WithError(err).Warn("Could not compile schemas")
	}
	problems = append(problems, compiled...)

	for _, p := range problems {
		logger.WithField("path", p.Path).Warn(p.Reason)
		report.Warn(p.String())
	}
}

func logOutcomes(logger logrus.FieldLogger, outcomes []ceprep.Outcome) []ceprep.Outcome {
	for _, o := range outcomes {
		if o.Skipped() {
			logSkipped(logger, o)
		}
	}
	return outcomes
}

func logSkipped(logger logrus.FieldLogger, o ceprep.Outcome) {
	entry := logger.WithField("path", o.Path)
	if errors.Is(o.Reason, schema.ErrNoProperties) {
		entry.Warnf("Schema %s doesn't contain any properties. Skipping...", o.Path)
		return
	}
	entry.Warnf("%v Skipping...", o.Reason)
}

func snapshot(obj document.Object) map[string]any {
	plain, _ := document.ToPlain(obj).(map[string]any)
	if plain == nil {
		return map[string]any{}
	}
	return plain
}

func snapshotChannels(doc document.Object) map[string]any {
	channels, _ := document.GetObject(doc, "channels")
	return snapshot(channels)
}
