package schema

import (
	"github.com/holydocs/ceprep/pkg/document"
)

const (
	formatInt32   = "int32"
	formatDecimal = "decimal"
)

var combinators = []string{"allOf", "oneOf", "anyOf"}

// Annotate sets format "int32" on integer and "decimal" on number nodes, walking
// properties, items and allOf/oneOf/anyOf members. References are not followed.
// The node is modified in place and returned.
func Annotate(v any) any {
	n := Classify(v)

	switch n.Kind() {
	case KindInvalid, KindReference:
		return v
	case KindObject:
		if props, ok := n.Properties(); ok {
			for pair := props.Oldest(); pair != nil; pair = pair.Next() {
				Annotate(pair.Value)
			}
		}
	case KindArray:
		if items, ok := n.Items(); ok {
			Annotate(items.Raw())
		}
	case KindPrimitive:
		switch n.Type() {
		case typeInteger:
			n.Raw().Set(keyFormat, formatInt32)
		case typeNumber:
			n.Raw().Set(keyFormat, formatDecimal)
		}
	case KindUntyped:
	}

	for _, key := range combinators {
		members, ok := document.GetArray(n.Raw(), key)
		if !ok {
			continue
		}
		for _, member := range members {
			Annotate(member)
		}
	}

	return v
}

// AnnotateAll annotates every schema of a components.schemas map.
func AnnotateAll(schemas document.Object) {
	for pair := schemas.Oldest(); pair != nil; pair = pair.Next() {
		Annotate(pair.Value)
	}
}
