package asyncapi

import (
	"errors"
	"fmt"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/pkg/cloudevents"
	"github.com/holydocs/ceprep/pkg/document"
	"github.com/holydocs/ceprep/pkg/schema"
)

const (
	keyName     = "name"
	keyPayload  = "payload"
	keyHeaders  = "headers"
	keyTraits   = "traits"
	keyRef      = "$ref"
	keyProps    = "properties"
	keyType     = "type"
	keyConst    = "const"
	keyDataType = "datacontenttype"
)

var errNotNamed = errors.New("message did not get a name")

// MessageName derives the name of the message stored under key from the type const of
// its payload schema: components.schemas[<payload ref>].properties.type.const.
func MessageName(doc document.Object, message any, key string) (string, error) {
	path := []string{keyComponents, keyMessages, key}

	msg, ok := document.AsObject(message)
	if !ok {
		return "", fmt.Errorf("message %s is not an object", key)
	}

	if document.Has(msg, keyRef) {
		return "", ceprep.NewReferenceNotSupportedError(path...)
	}

	payload, _ := document.GetObject(msg, keyPayload)
	ref, ok := document.GetString(payload, keyRef)
	if !ok || ref == "" {
		return "", fmt.Errorf("message %s has no reference to a payload defined", key)
	}

	schemaName := refSegment(ref)

	schemas, err := Schemas(doc)
	if err != nil {
		return "", err
	}

	v, ok := schemas.Get(schemaName)
	if !ok || v == nil {
		return "", fmt.Errorf("schema %s not found in components.schemas", schemaName)
	}

	node := schema.Classify(v)
	if node.Kind() == schema.KindReference {
		return "", ceprep.NewReferenceNotSupportedError(keyComponents, keySchemas, schemaName)
	}

	value, _ := document.Lookup(node.Raw(), keyProps, keyType, keyConst)

	name, ok := constName(value)
	if !ok {
		return "", fmt.Errorf("schema %s has no type defined", schemaName)
	}

	return name, nil
}

// constName renders a scalar type const as a message name. Empty strings, zero, false,
// null and structured values give no name.
func constName(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, c != ""
	case j.Number:
		f, err := c.Float64()
		if err != nil || f == 0 {
			return "", false
		}
		return c.String(), true
	case bool:
		return "true", c
	default:
		return "", false
	}
}

// refSegment returns the fourth slash separated segment of a reference,
// the schema name of "#/components/schemas/<name>".
func refSegment(ref string) string {
	segments := strings.Split(ref, "/")
	if len(segments) < 4 {
		return ""
	}
	return segments[3]
}

// Assigner decorates the messages of components.messages for the catalog import.
// Headers are only written for messages that were named by AssignNames.
type Assigner struct {
	doc      document.Object
	messages document.Object
	names    map[string]string
	logger   logrus.FieldLogger
}

// NewAssigner creates an Assigner over the messages of doc.
func NewAssigner(doc document.Object, logger logrus.FieldLogger) (*Assigner, error) {
	messages, err := Messages(doc)
	if err != nil {
		return nil, err
	}

	return &Assigner{
		doc:      doc,
		messages: messages,
		names:    make(map[string]string),
		logger:   logger,
	}, nil
}

// AssignNames sets the name of every message derived by MessageName.
func (a *Assigner) AssignNames() []ceprep.Outcome {
	return a.each(ceprep.StepName, func(key string, msg document.Object) error {
		name, err := MessageName(a.doc, msg, key)
		if err != nil {
			return err
		}

		msg.Set(keyName, name)
		a.names[key] = name

		return nil
	})
}

// AssignHeaders sets the CloudEvents type and content type headers of every named message.
func (a *Assigner) AssignHeaders() []ceprep.Outcome {
	return a.each(ceprep.StepHeaders, func(key string, msg document.Object) error {
		name, ok := a.names[key]
		if !ok {
			return errNotNamed
		}

		msg.Set(keyHeaders, Headers(name))

		return nil
	})
}

// AssignTraits makes every message inherit the CloudEventContext trait.
func (a *Assigner) AssignTraits() []ceprep.Outcome {
	return a.each(ceprep.StepTraits, func(_ string, msg document.Object) error {
		msg.Set(keyTraits, []any{
			document.ObjectOf(document.Entry{Key: keyRef, Value: cloudevents.TraitRef}),
		})
		return nil
	})
}

// Names returns the message names assigned so far, keyed by message key.
func (a *Assigner) Names() map[string]string {
	return a.names
}

func (a *Assigner) each(step ceprep.Step, fn func(key string, msg document.Object) error) []ceprep.Outcome {
	outcomes := make([]ceprep.Outcome, 0, a.messages.Len())

	for pair := a.messages.Oldest(); pair != nil; pair = pair.Next() {
		path := strings.Join([]string{keyComponents, keyMessages, pair.Key}, ".")
		a.logger.WithField("path", path).Debugf("Processing message: %s", pair.Key)

		msg, ok := document.AsObject(pair.Value)
		if !ok {
			outcomes = append(outcomes, ceprep.Skip(step, path, fmt.Errorf("message %s is not an object", pair.Key)))
			continue
		}

		if document.Has(msg, keyRef) {
			outcomes = append(outcomes, ceprep.Skip(step, path, ceprep.NewReferenceNotSupportedError(keyComponents, keyMessages, pair.Key)))
			continue
		}

		if err := fn(pair.Key, msg); err != nil {
			outcomes = append(outcomes, ceprep.Skip(step, path, err))
			continue
		}

		outcomes = append(outcomes, ceprep.Done(step, path))
	}

	return outcomes
}

// Headers returns the message headers schema for a message named name.
func Headers(name string) document.Object {
	return document.ObjectOf(
		document.Entry{Key: keyProps, Value: document.ObjectOf(
			document.Entry{Key: keyType, Value: document.ObjectOf(
				document.Entry{Key: keyConst, Value: name},
			)},
			document.Entry{Key: keyDataType, Value: document.ObjectOf(
				document.Entry{Key: keyConst, Value: cloudevents.ContentTypeJSON},
			)},
		)},
	)
}
