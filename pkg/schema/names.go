package schema

import (
	"fmt"
	"time"

	"github.com/holydocs/ceprep/pkg/document"
)

const stampLayout = "20060102150405"

// NameAllocator issues schema names of the form <base>_<YYYYMMDDHHMMSS>. A name that is
// already used in the schema map, or was issued before, gets a counter suffix.
type NameAllocator struct {
	schemas document.Object
	now     func() time.Time
	issued  map[string]struct{}
}

// NameOption configures a NameAllocator.
type NameOption func(*NameAllocator)

// WithClock sets the time source used for name stamps.
func WithClock(now func() time.Time) NameOption {
	return func(a *NameAllocator) {
		a.now = now
	}
}

// NewNameAllocator creates an allocator that avoids every key of schemas.
func NewNameAllocator(schemas document.Object, opts ...NameOption) *NameAllocator {
	a := &NameAllocator{
		schemas: schemas,
		now:     time.Now,
		issued:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Stamp returns the current UTC time as YYYYMMDDHHMMSS.
func (a *NameAllocator) Stamp() string {
	return a.now().UTC().Format(stampLayout)
}

// Prefix returns base with a stamp appended without reserving it.
func (a *NameAllocator) Prefix(base string) string {
	return base + "_" + a.Stamp()
}

// Next reserves and returns a unique name derived from base.
func (a *NameAllocator) Next(base string) string {
	candidate := a.Prefix(base)

	name := candidate
	for n := 2; a.taken(name); n++ {
		name = fmt.Sprintf("%s_%d", candidate, n)
	}

	a.issued[name] = struct{}{}

	return name
}

func (a *NameAllocator) taken(name string) bool {
	if _, ok := a.issued[name]; ok {
		return true
	}
	return document.Has(a.schemas, name)
}
