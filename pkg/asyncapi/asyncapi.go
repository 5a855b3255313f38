// Package asyncapi implements the document level rewriting steps of AsyncAPI documents:
// version detection, channel namespacing, message naming, headers, traits and the info
// description.
package asyncapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/pkg/document"
)

// MajorVersion is the major version of the AsyncAPI specification a document follows.
type MajorVersion int

const (
	V2 MajorVersion = 2
	V3 MajorVersion = 3
)

// ImportVersion is the only AsyncAPI version accepted by the catalog import.
const ImportVersion = "2.0.0"

const (
	keyAsyncAPI    = "asyncapi"
	keyInfo        = "info"
	keyDescription = "description"
	keyChannels    = "channels"
	keyComponents  = "components"
	keySchemas     = "schemas"
	keyMessages    = "messages"
)

// RawVersion returns the asyncapi field of the document.
func RawVersion(doc document.Object) string {
	v, _ := document.GetString(doc, keyAsyncAPI)
	return v
}

// Version detects the major AsyncAPI version of the document.
func Version(doc document.Object) (MajorVersion, error) {
	v := RawVersion(doc)

	switch {
	case strings.HasPrefix(v, "2"):
		return V2, nil
	case strings.HasPrefix(v, "3"):
		return V3, nil
	default:
		return 0, fmt.Errorf("unknown AsyncAPI version: %q", v)
	}
}

// RequireVersion fails unless the document declares exactly the expected version.
func RequireVersion(doc document.Object, expected string) error {
	if v := RawVersion(doc); v != expected {
		return ceprep.NewUnsupportedVersionError(v, expected)
	}
	return nil
}

// Components returns the components object of the document.
func Components(doc document.Object) (document.Object, error) {
	components, ok := document.GetObject(doc, keyComponents)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keyComponents, ceprep.ComponentKindDocument)
	}
	return components, nil
}

// Schemas returns components.schemas.
func Schemas(doc document.Object) (document.Object, error) {
	components, err := Components(doc)
	if err != nil {
		return nil, err
	}

	schemas, ok := document.GetObject(components, keySchemas)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keySchemas, ceprep.ComponentKindComponents)
	}

	return schemas, nil
}

// Messages returns components.messages.
func Messages(doc document.Object) (document.Object, error) {
	components, err := Components(doc)
	if err != nil {
		return nil, err
	}

	messages, ok := document.GetObject(components, keyMessages)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keyMessages, ceprep.ComponentKindComponents)
	}

	return messages, nil
}

// NormalizeNamespace makes sure a non-empty namespace ends with a slash.
func NormalizeNamespace(namespace string) string {
	if namespace == "" || strings.HasSuffix(namespace, "/") {
		return namespace
	}
	return namespace + "/"
}

// PrefixChannels prepends the namespace to every channel key, keeping channel order and
// values. An empty namespace leaves the document untouched.
func PrefixChannels(doc document.Object, namespace string) ([]ceprep.Outcome, error) {
	if namespace == "" {
		return nil, nil
	}

	channels, ok := document.GetObject(doc, keyChannels)
	if !ok {
		return nil, ceprep.NewComponentNotFoundError(keyChannels, ceprep.ComponentKindChannel)
	}

	prefix := NormalizeNamespace(namespace)
	prefixed := document.NewObject()
	outcomes := make([]ceprep.Outcome, 0, channels.Len())

	for pair := channels.Oldest(); pair != nil; pair = pair.Next() {
		key := prefix + pair.Key
		prefixed.Set(key, pair.Value)
		outcomes = append(outcomes, ceprep.Done(ceprep.StepNamespace, keyChannels+"."+key))
	}

	doc.Set(keyChannels, prefixed)

	return outcomes, nil
}

// AssignDescription sets info.description, leaving the rest of info as is.
func AssignDescription(doc document.Object, description string) error {
	info, ok := document.GetObject(doc, keyInfo)
	if !ok {
		return errors.New("AsyncAPI object does not contain an info object. Cannot assign description")
	}

	info.Set(keyDescription, description)

	return nil
}
