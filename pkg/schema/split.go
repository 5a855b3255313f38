package schema

import (
	"github.com/holydocs/ceprep/pkg/document"
)

// Splitter moves nested object schemas out of their parents into named entries of
// components.schemas and replaces them with references.
type Splitter struct {
	schemas document.Object
	names   *NameAllocator
	created []string
}

// NewSplitter creates a Splitter writing new schemas into schemas.
func NewSplitter(schemas document.Object, names *NameAllocator) *Splitter {
	return &Splitter{
		schemas: schemas,
		names:   names,
	}
}

// SplitAll splits every schema present in the map when called, in document order.
// Schemas created along the way are already split and are not visited again.
func (s *Splitter) SplitAll() {
	for _, name := range document.Keys(s.schemas) {
		s.Split(name)
	}
}

// Split splits the named top-level schema.
func (s *Splitter) Split(name string) {
	v, ok := s.schemas.Get(name)
	if !ok {
		return
	}
	s.schemas.Set(name, s.extract(v, name))
}

// Created returns the names of the schemas added so far, in creation order.
func (s *Splitter) Created() []string {
	return s.created
}

func (s *Splitter) extract(v any, prefix string) any {
	n := Classify(v)

	switch n.Kind() {
	case KindInvalid, KindReference, KindPrimitive, KindUntyped:
		return v
	case KindObject:
		props, ok := n.Properties()
		if !ok {
			return v
		}
		return withEntry(n.Raw(), keyProperties, s.extractProperties(props, prefix))
	case KindArray:
		items, ok := n.Items()
		if !ok || items.HasProperties() {
			return v
		}
		return withEntry(n.Raw(), keyItems, s.extract(items.Raw(), prefix+"_Item"))
	}

	return v
}

func (s *Splitter) extractProperties(props document.Object, prefix string) document.Object {
	out := document.NewObject()

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		key, value := pair.Key, pair.Value
		prop := Classify(value)

		switch {
		case prop.Kind() == KindInvalid:
			out.Set(key, value)
		case prop.HasProperties():
			name := s.store(prefix+"_"+key, prop.Raw())
			out.Set(key, RefFor(name))
		case prop.Kind() == KindArray && isObjectItems(prop):
			items, _ := prop.Items()
			name := s.store(prefix+"_"+key, items.Raw())
			out.Set(key, withEntry(prop.Raw(), keyItems, RefFor(name)))
		default:
			out.Set(key, s.extract(value, s.names.Prefix(prefix+"_"+key)))
		}
	}

	return out
}

// store extracts sub recursively and saves it under a fresh name derived from base.
func (s *Splitter) store(base string, sub document.Object) string {
	name := s.names.Next(base)
	extracted := s.extract(sub, name)
	s.schemas.Set(name, extracted)
	s.created = append(s.created, name)
	return name
}

func isObjectItems(n Node) bool {
	items, ok := n.Items()
	return ok && items.Kind() == KindObject
}

// withEntry returns a shallow copy of obj with key set to value, keeping key order.
func withEntry(obj document.Object, key string, value any) document.Object {
	out := document.NewObject()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	out.Set(key, value)
	return out
}
