// Package document provides an order-preserving in-memory model of JSON documents.
//
// AsyncAPI documents are rewritten in place and written back out, so key order of every
// object is kept from parse to serialization.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers the insertion order of its keys.
type Object = *orderedmap.OrderedMap[string, any]

// Entry is a key/value pair used to build objects literally.
type Entry = orderedmap.Pair[string, any]

// NewObject returns an empty Object.
func NewObject() Object {
	return orderedmap.New[string, any]()
}

// ObjectOf builds an Object holding entries in the given order.
func ObjectOf(entries ...Entry) Object {
	return orderedmap.New[string, any](orderedmap.WithInitialData[string, any](entries...))
}

// Parse decodes a JSON document whose root value is an object.
// Numbers are kept as json.Number so they are written back verbatim.
func Parse(data []byte) (Object, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("error reading document: %w", err)
	}

	if delim, ok := tok.(j.Delim); !ok || delim != '{' {
		return nil, errors.New("error reading document: root value is not an object")
	}

	root, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("error reading document: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("error reading document: unexpected content after root object")
	}

	return root, nil
}

func decodeValue(dec *j.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case j.Number:
		// the decoder's number token aliases its read buffer
		return j.Number(strings.Clone(string(v))), nil
	case string:
		return validString(v), nil
	default:
		return v, nil
	}
}

// validString replaces invalid UTF-8 sequences with U+FFFD.
func validString(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func decodeObject(dec *j.Decoder) (Object, error) {
	obj := NewObject()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		key = validString(key)

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		obj.Set(key, value)
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

func decodeArray(dec *j.Decoder) ([]any, error) {
	arr := make([]any, 0)

	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return arr, nil
}

// Marshal encodes obj as compact JSON. Strings are written without HTML escaping.
func Marshal(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, obj); err != nil {
		return nil, fmt.Errorf("error marshaling document: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes obj as indented JSON.
func MarshalIndent(obj Object, prefix, indent string) ([]byte, error) {
	data, err := Marshal(obj)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := j.Indent(&buf, data, prefix, indent); err != nil {
		return nil, fmt.Errorf("error marshaling document: %w", err)
	}

	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case Object:
		if t == nil {
			buf.WriteString("null")
			return nil
		}

		buf.WriteByte('{')
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			if pair != t.Oldest() {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, pair.Value); err != nil {
				return fmt.Errorf("%s: %w", pair.Key, err)
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := j.MarshalNoEscape(t)
		if err != nil {
			return err
		}
		buf.Write(data)
	}

	return nil
}

// AsObject reports whether v is a JSON object.
func AsObject(v any) (Object, bool) {
	obj, ok := v.(Object)
	return obj, ok && obj != nil
}

// GetObject returns the object stored under key.
func GetObject(obj Object, key string) (Object, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// GetString returns the string stored under key.
func GetString(obj Object, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetArray returns the array stored under key.
func GetArray(obj Object, key string) ([]any, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Has reports whether key is present in obj.
func Has(obj Object, key string) bool {
	if obj == nil {
		return false
	}
	_, ok := obj.Get(key)
	return ok
}

// Lookup follows path through nested objects.
func Lookup(obj Object, path ...string) (any, bool) {
	var cur any = obj
	for _, key := range path {
		o, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = o.Get(key)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Keys returns the keys of obj in document order.
func Keys(obj Object) []string {
	if obj == nil {
		return nil
	}
	keys := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a deep copy of a document value.
func Clone(v any) any {
	switch t := v.(type) {
	case Object:
		if t == nil {
			return t
		}
		out := orderedmap.New[string, any](t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, Clone(pair.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneObject is Clone for objects.
func CloneObject(obj Object) Object {
	out, _ := AsObject(Clone(obj))
	return out
}

// ToPlain converts a document value into map[string]any and []any trees.
func ToPlain(v any) any {
	switch t := v.(type) {
	case Object:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = ToPlain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToPlain(item)
		}
		return out
	default:
		return v
	}
}

// FromPlain converts map[string]any trees into document values. Keys of plain maps
// have no order, so they are sorted.
func FromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := orderedmap.New[string, any](len(t))
		for _, k := range keys {
			out.Set(k, FromPlain(t[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromPlain(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return v
	}
}
