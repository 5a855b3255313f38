// Package verify checks the reference integrity of a rewritten AsyncAPI document.
package verify

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/holydocs/ceprep/pkg/document"
	"github.com/holydocs/ceprep/pkg/schema"
)

const resourceURL = "asyncapi.json"

// Problem describes a reference or schema the catalog would fail to load.
type Problem struct {
	Path   string
	Ref    string
	Reason string
}

func (p Problem) String() string {
	if p.Ref == "" {
		return fmt.Sprintf("%s: %s", p.Path, p.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", p.Path, p.Reason, p.Ref)
}

// References collects every $ref below components.schemas and components.messages and
// reports the ones that do not resolve inside the document.
func References(doc document.Object) []Problem {
	problems := []Problem{}

	for _, section := range []string{"schemas", "messages"} {
		v, ok := document.Lookup(doc, "components", section)
		if !ok {
			continue
		}
		walk(v, []string{"components", section}, func(path []string, ref string) {
			if reason := resolve(doc, ref); reason != "" {
				problems = append(problems, Problem{
					Path:   strings.Join(path, "."),
					Ref:    ref,
					Reason: reason,
				})
			}
		})
	}

	return problems
}

func walk(v any, path []string, visit func(path []string, ref string)) {
	switch t := v.(type) {
	case document.Object:
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			if ref, ok := pair.Value.(string); ok && pair.Key == "$ref" {
				visit(path, ref)
				continue
			}
			walk(pair.Value, append(path[:len(path):len(path)], pair.Key), visit)
		}
	case []any:
		for i, item := range t {
			walk(item, append(path[:len(path):len(path)], fmt.Sprint(i)), visit)
		}
	}
}

func resolve(doc document.Object, ref string) string {
	if !strings.HasPrefix(ref, "#/") {
		return "external reference is not supported"
	}

	segments := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	for i, s := range segments {
		segments[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
	}

	if _, ok := document.Lookup(doc, segments...); !ok {
		return "reference does not resolve"
	}

	return ""
}

// Compile compiles every schema of components.schemas with a JSON Schema compiler, the
// way a catalog importing the document would, and reports the schemas that fail.
func Compile(doc document.Object) ([]Problem, error) {
	schemas, ok := document.GetObject(doc, "components")
	if ok {
		schemas, ok = document.GetObject(schemas, "schemas")
	}
	if !ok {
		return nil, nil
	}

	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add document resource: %w", err)
	}

	names := document.Keys(schemas)
	sort.Strings(names)

	problems := []Problem{}
	for _, name := range names {
		ref := schema.RefPrefix + name
		if _, err := compiler.Compile(resourceURL + ref); err != nil {
			problems = append(problems, Problem{
				Path:   "components.schemas." + name,
				Ref:    ref,
				Reason: err.Error(),
			})
		}
	}

	return problems, nil
}
