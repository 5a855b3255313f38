// Package ceprep prepares AsyncAPI documents for import into a CloudEvents based event
// catalog. It holds the types shared by the rewriting steps: per-item outcomes, the run
// report with its schema changelog, and the typed errors.
package ceprep

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Step names a rewriting step of a pipeline.
type Step string

const (
	StepWrap        = Step("wrap")
	StepName        = Step("name")
	StepHeaders     = Step("headers")
	StepTraits      = Step("traits")
	StepUnwrap      = Step("unwrap")
	StepSplit       = Step("split")
	StepAnnotate    = Step("annotate")
	StepVerify      = Step("verify")
	StepNamespace   = Step("namespace")
	StepDescription = Step("description")
)

// Status is the result of applying a step to a single item.
type Status string

const (
	StatusOK      = Status("ok")
	StatusSkipped = Status("skipped")
)

// Outcome records what a step did to one item of the document, addressed by its dotted path.
type Outcome struct {
	Step   Step   `json:"step"`
	Path   string `json:"path"`
	Status Status `json:"status"`
	Reason error  `json:"-"`
}

// Done returns a successful outcome.
func Done(step Step, path string) Outcome {
	return Outcome{
		Step:   step,
		Path:   path,
		Status: StatusOK,
	}
}

// Skip returns an outcome for an item the step left untouched because of reason.
func Skip(step Step, path string, reason error) Outcome {
	return Outcome{
		Step:   step,
		Path:   path,
		Status: StatusSkipped,
		Reason: reason,
	}
}

// Skipped reports whether the item was left untouched.
func (o Outcome) Skipped() bool {
	return o.Status == StatusSkipped
}

// Report collects the outcomes of a pipeline run in the order they were produced.
type Report struct {
	Outcomes  []Outcome `json:"outcomes"`
	Created   []string  `json:"created,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Changelog Changelog `json:"changelog"`
}

// Add appends outcomes to the report.
func (r *Report) Add(outcomes ...Outcome) {
	r.Outcomes = append(r.Outcomes, outcomes...)
}

// Warn records a problem found in the result that did not stop the run.
func (r *Report) Warn(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// Skipped returns the outcomes of skipped items.
func (r *Report) Skipped() []Outcome {
	skipped := make([]Outcome, 0)
	for _, o := range r.Outcomes {
		if o.Skipped() {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

// Count returns the number of outcomes of step with the given status.
func (r *Report) Count(step Step, status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Step == step && o.Status == status {
			n++
		}
	}
	return n
}

// ChangeType represents the type of change that occurred.
type ChangeType string

const (
	ChangeTypeAdded   ChangeType = "added"
	ChangeTypeRemoved ChangeType = "removed"
	ChangeTypeChanged ChangeType = "changed"
)

// Change represents a single change of a named component.
type Change struct {
	Type      ChangeType `json:"type"`
	Category  string     `json:"category"` // "schema", "channel"
	Name      string     `json:"name"`
	Details   string     `json:"details,omitempty"`
	Diff      string     `json:"diff,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Changelog represents a collection of changes made by one run.
type Changelog struct {
	Date    time.Time `json:"date"`
	Changes []Change  `json:"changes"`
}

// Count returns the number of changes of the given type.
func (c Changelog) Count(t ChangeType) int {
	n := 0
	for _, change := range c.Changes {
		if change.Type == t {
			n++
		}
	}
	return n
}

// CompareSchemas compares two components.schemas maps, given as plain decoded JSON,
// and returns a changelog of differences ordered by schema name.
func CompareSchemas(oldSchemas, newSchemas map[string]any) Changelog {
	return compare("schema", oldSchemas, newSchemas)
}

// CompareChannels compares two channels maps the same way as CompareSchemas.
func CompareChannels(oldChannels, newChannels map[string]any) Changelog {
	return compare("channel", oldChannels, newChannels)
}

// Merge returns a changelog holding the changes of c followed by those of other.
func (c Changelog) Merge(other Changelog) Changelog {
	changes := make([]Change, 0, len(c.Changes)+len(other.Changes))
	changes = append(changes, c.Changes...)
	changes = append(changes, other.Changes...)

	date := c.Date
	if other.Date.After(date) {
		date = other.Date
	}

	return Changelog{
		Date:    date,
		Changes: changes,
	}
}

func compare(category string, oldItems, newItems map[string]any) Changelog {
	changes := []Change{}
	now := time.Now()

	for _, name := range sortedKeys(newItems) {
		if _, exists := oldItems[name]; !exists {
			changes = append(changes, Change{
				Type:      ChangeTypeAdded,
				Category:  category,
				Name:      name,
				Details:   fmt.Sprintf("%s '%s' was added", category, name),
				Timestamp: now,
			})
		}
	}

	for _, name := range sortedKeys(oldItems) {
		newItem, exists := newItems[name]
		if !exists {
			changes = append(changes, Change{
				Type:      ChangeTypeRemoved,
				Category:  category,
				Name:      name,
				Details:   fmt.Sprintf("%s '%s' was removed", category, name),
				Timestamp: now,
			})
			continue
		}

		if !cmp.Equal(oldItems[name], newItem) {
			changes = append(changes, Change{
				Type:      ChangeTypeChanged,
				Category:  category,
				Name:      name,
				Details:   fmt.Sprintf("%s '%s' was changed", category, name),
				Diff:      cmp.Diff(oldItems[name], newItem),
				Timestamp: now,
			})
		}
	}

	return Changelog{
		Date:    now,
		Changes: changes,
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
