package schema

import (
	"errors"
	"fmt"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/pkg/document"
)

// DataProperty is the envelope property that carries the business payload.
const DataProperty = "data"

// ErrNoProperties is returned by Unwrap for schemas without properties.
var ErrNoProperties = errors.New("schema doesn't contain any properties")

// Wrap moves the properties of an object schema below a "data" object property.
// The second return value is false, and the node is returned unchanged, when the
// node is not an object schema with properties.
func Wrap(n Node) (document.Object, bool) {
	props, ok := n.Properties()
	if !ok || n.Kind() != KindObject {
		return n.Raw(), false
	}

	data := document.ObjectOf(
		document.Entry{Key: keyType, Value: typeObject},
		document.Entry{Key: keyProperties, Value: props},
	)

	return document.ObjectOf(
		document.Entry{Key: keyType, Value: typeObject},
		document.Entry{Key: keyProperties, Value: document.ObjectOf(
			document.Entry{Key: DataProperty, Value: data},
		)},
	), true
}

// Unwrap replaces the properties and required list of the schema stored at path with
// those of its "data" property, discarding every other envelope property.
func Unwrap(v any, path ...string) error {
	n := Classify(v)

	switch n.Kind() {
	case KindInvalid:
		return fmt.Errorf("schema %s is not an object", lastSegment(path))
	case KindReference:
		return ceprep.NewReferenceNotSupportedError(path...)
	case KindObject, KindArray, KindPrimitive, KindUntyped:
	}

	props, ok := n.Properties()
	if !ok {
		return ErrNoProperties
	}

	data := Classify(valueOf(props, DataProperty))
	if data.Kind() == KindInvalid {
		return errors.New("node data of the schema properties is not an object")
	}

	dataProps, _ := data.Properties()
	n.SetProperties(dataProps)
	n.SetRequired(data.Required())

	return nil
}

func valueOf(obj document.Object, key string) any {
	v, _ := obj.Get(key)
	return v
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
