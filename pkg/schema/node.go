// Package schema rewrites JSON-Schema nodes of AsyncAPI components: the CloudEvents data
// envelope, splitting of nested objects into named schemas and numeric format annotation.
package schema

import (
	"github.com/holydocs/ceprep/pkg/document"
)

// Kind classifies a schema node.
type Kind int

const (
	// KindInvalid is any value that is not a JSON object.
	KindInvalid Kind = iota
	// KindReference is an object carrying a $ref.
	KindReference
	// KindObject is a node with type "object".
	KindObject
	// KindArray is a node with type "array".
	KindArray
	// KindPrimitive is a node with any other type.
	KindPrimitive
	// KindUntyped is an object without type and without $ref.
	KindUntyped
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindUntyped:
		return "untyped"
	default:
		return "invalid"
	}
}

const (
	keyRef        = "$ref"
	keyType       = "type"
	keyProperties = "properties"
	keyItems      = "items"
	keyRequired   = "required"
	keyFormat     = "format"
	keyConst      = "const"

	typeObject  = "object"
	typeArray   = "array"
	typeInteger = "integer"
	typeNumber  = "number"
)

// Node is a typed view over a schema value of a document. It never copies the
// underlying object: setters mutate the document.
type Node struct {
	raw document.Object
}

// Classify wraps a document value as a Node.
func Classify(v any) Node {
	obj, _ := document.AsObject(v)
	return Node{raw: obj}
}

// Kind returns the variant of the node.
func (n Node) Kind() Kind {
	if n.raw == nil {
		return KindInvalid
	}

	if document.Has(n.raw, keyRef) {
		return KindReference
	}

	v, ok := n.raw.Get(keyType)
	if !ok {
		return KindUntyped
	}

	switch v {
	case typeObject:
		return KindObject
	case typeArray:
		return KindArray
	default:
		return KindPrimitive
	}
}

// Raw returns the underlying object, nil for KindInvalid.
func (n Node) Raw() document.Object {
	return n.raw
}

// Ref returns the $ref value.
func (n Node) Ref() string {
	ref, _ := document.GetString(n.raw, keyRef)
	return ref
}

// Type returns the type keyword when it is a string.
func (n Node) Type() string {
	t, _ := document.GetString(n.raw, keyType)
	return t
}

// Properties returns the properties object.
func (n Node) Properties() (document.Object, bool) {
	return document.GetObject(n.raw, keyProperties)
}

// HasProperties reports whether the node is an object schema with a properties object.
func (n Node) HasProperties() bool {
	_, ok := n.Properties()
	return ok && n.Kind() == KindObject
}

// Items returns the items schema.
func (n Node) Items() (Node, bool) {
	items, ok := document.GetObject(n.raw, keyItems)
	if !ok {
		return Node{}, false
	}
	return Node{raw: items}, true
}

// Required returns the string entries of the required list.
func (n Node) Required() []string {
	arr, _ := document.GetArray(n.raw, keyRequired)

	required := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			required = append(required, s)
		}
	}

	return required
}

// Const returns the const keyword.
func (n Node) Const() (any, bool) {
	if n.raw == nil {
		return nil, false
	}
	return n.raw.Get(keyConst)
}

// SetProperties replaces the properties object, removing it when props is nil.
func (n Node) SetProperties(props document.Object) {
	if props == nil {
		n.raw.Delete(keyProperties)
		return
	}
	n.raw.Set(keyProperties, props)
}

// SetRequired replaces the required list.
func (n Node) SetRequired(required []string) {
	arr := make([]any, 0, len(required))
	for _, r := range required {
		arr = append(arr, r)
	}
	n.raw.Set(keyRequired, arr)
}
