package schema

import (
	"fmt"
	"strings"

	"github.com/holydocs/ceprep/pkg/document"
)

// RefPrefix is the JSON pointer prefix of schemas stored under components.schemas.
const RefPrefix = "#/components/schemas/"

// RefFor returns a reference node pointing at the named component schema.
func RefFor(name string) document.Object {
	return document.ObjectOf(document.Entry{Key: keyRef, Value: RefPrefix + name})
}

// ParseRef returns the schema name of a #/components/schemas/<name> reference.
func ParseRef(ref string) (string, error) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", fmt.Errorf("reference %q does not point into components.schemas", ref)
	}

	parts := strings.Split(ref, "/")
	if len(parts) < 4 || parts[3] == "" {
		return "", fmt.Errorf("reference %q has no schema name", ref)
	}

	return parts[3], nil
}

// IsLocalRef reports whether ref points into the same document.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#")
}
