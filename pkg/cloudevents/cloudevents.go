// Package cloudevents builds the CloudEventContext message trait and merges its header
// schema into payload schemas.
package cloudevents

import (
	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/pkg/document"
	"github.com/holydocs/ceprep/pkg/schema"
)

const (
	// TraitName is the key of the trait under components.messageTraits.
	TraitName = "CloudEventContext"
	// TraitRef references the trait from a message.
	TraitRef = "#/components/messageTraits/" + TraitName

	// SpecVersion is the CloudEvents specification version the trait describes.
	SpecVersion = "1.0"
	// ContentTypeJSON is the only data content type produced.
	ContentTypeJSON = "application/json"

	keyComponents    = "components"
	keyMessageTraits = "messageTraits"
	keyHeaders       = "headers"
	keyProperties    = "properties"
	keyRequired      = "required"
)

func property(entries ...document.Entry) document.Object {
	return document.ObjectOf(entries...)
}

func entry(key string, value any) document.Entry {
	return document.Entry{Key: key, Value: value}
}

// ContextTrait returns a fresh copy of the canonical CloudEventContext trait.
func ContextTrait() document.Object {
	properties := document.ObjectOf(
		entry("specversion", property(
			entry("description", "The version of the CloudEvents specification which the event uses. "+
				"This enables the interpretation of the context."),
			entry("type", "string"),
			entry("const", SpecVersion),
		)),
		entry("type", property(
			entry("description", "Type of occurrence which has happened. "+
				"Often this property is used for routing, observability, policy enforcement, etc."),
			entry("type", "string"),
			entry("minLength", 1),
		)),
		entry("source", property(
			entry("description", "This describes the event producer."),
			entry("type", "string"),
			entry("format", "uri-reference"),
		)),
		entry("subject", property(
			entry("description", "The subject of the event in the context of the event producer (identified by source)."),
			entry("type", "string"),
			entry("minLength", 1),
		)),
		entry("id", property(
			entry("description", "ID of the event."),
			entry("type", "string"),
			entry("minLength", 1),
			entry("examples", []any{"6925d08e-bc19-4ad7-902e-bd29721cc69b"}),
		)),
		entry("time", property(
			entry("description", "Timestamp of when the occurrence happened. Must adhere to RFC 3339."),
			entry("type", "string"),
			entry("format", "date-time"),
			entry("examples", []any{"2018-04-05T17:31:00Z"}),
		)),
		entry("datacontenttype", property(
			entry("description", "Describe the data encoding format"),
			entry("type", "string"),
			entry("const", ContentTypeJSON),
		)),
	)

	return document.ObjectOf(
		entry(keyHeaders, document.ObjectOf(
			entry("type", "object"),
			entry(keyProperties, properties),
			entry(keyRequired, []any{"id", "specversion", "source", "type", schema.DataProperty}),
		)),
	)
}

// SetContextTrait writes the canonical trait to components.messageTraits, creating the
// map when needed. An existing CloudEventContext trait is replaced.
func SetContextTrait(doc document.Object) error {
	components, ok := document.GetObject(doc, keyComponents)
	if !ok {
		return ceprep.NewComponentNotFoundError(keyComponents, ceprep.ComponentKindDocument)
	}

	traits, ok := document.GetObject(components, keyMessageTraits)
	if !ok {
		traits = document.NewObject()
		components.Set(keyMessageTraits, traits)
	}

	traits.Set(TraitName, ContextTrait())

	return nil
}

// ContextHeaders returns the headers schema of the document's CloudEventContext trait.
func ContextHeaders(doc document.Object) (document.Object, error) {
	components, ok := document.GetObject(doc, keyComponents)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keyComponents, ceprep.ComponentKindDocument)
	}

	traits, ok := document.GetObject(components, keyMessageTraits)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keyMessageTraits, ceprep.ComponentKindComponents)
	}

	trait, ok := document.GetObject(traits, TraitName)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(TraitName, ceprep.ComponentKindMessageTraits)
	}

	headers, ok := document.GetObject(trait, keyHeaders)
	if !ok {
		return document.NewObject(), nil
	}

	return headers, nil
}

// MergeContext merges the header schema into a wrapped schema. The header properties come
// first, in header order, followed by the schema's own properties. Required is the header
// required list followed by "data", without duplicates. Header values are copied, so the
// trait and the schema never share nodes.
func MergeContext(target, headers document.Object) {
	merged := document.NewObject()

	if props, ok := document.GetObject(headers, keyProperties); ok {
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, document.Clone(pair.Value))
		}
	}

	if props, ok := document.GetObject(target, keyProperties); ok {
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}

	target.Set(keyProperties, merged)

	required := append(schema.Classify(headers).Required(), schema.DataProperty)
	schema.Classify(target).SetRequired(dedupe(required))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
