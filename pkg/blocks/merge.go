package blocks

import (
	"strings"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

// MergeMode selects how a resource table and a reference table combine.
type MergeMode string

const (
	// MergeResource uses only the resource pack's own table.
	MergeResource MergeMode = "resource"
	// MergeReference uses only the reference table.
	MergeReference MergeMode = "reference"
	// MergeBoth keeps every resource entry and adds reference entries for
	// keys the resource table lacks.
	MergeBoth MergeMode = "both"
)

// MergeModes lists the valid modes in display order.
var MergeModes = []MergeMode{MergeBoth, MergeResource, MergeReference}

// Description returns a one-line explanation of the mode.
func (m MergeMode) Description() string {
	switch m {
	case MergeResource:
		return "Only the definitions shipped in the pack"
	case MergeReference:
		return "Only the reference definitions"
	case MergeBoth:
		return "Pack definitions first, reference fills the gaps"
	default:
		return ""
	}
}

// ParseMergeMode parses a mode name, case-insensitively.
func ParseMergeMode(s string) (MergeMode, error) {
	switch m := MergeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case MergeResource, MergeReference, MergeBoth:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMergeMode,
		"invalid merge mode %q: must be one of resource, reference, both", s)
}

// NeedsChoice reports whether both tables are present, which is the only
// situation where a merge mode has to be chosen.
func NeedsChoice(resource, reference *Table) bool {
	return resource != nil && reference != nil
}

// Merge combines resource and reference according to mode.
//
// When only one table is present, it is returned unchanged and mode is
// ignored. When neither is present, Merge returns nil: the caller falls back
// to flat texture mode. When both are present, an empty mode is an error.
func Merge(resource, reference *Table, mode MergeMode) (*Table, error) {
	switch {
	case resource == nil && reference == nil:
		return nil, nil
	case reference == nil:
		return resource, nil
	case resource == nil:
		return reference, nil
	}

	switch mode {
	case MergeResource:
		return resource, nil
	case MergeReference:
		return reference, nil
	case MergeBoth:
		out := NewTable()
		for _, def := range resource.Definitions() {
			out.Add(def)
		}
		for _, def := range reference.Definitions() {
			if !out.Has(def.Key) {
				out.Add(def)
			}
		}
		return out, nil
	case "":
		return nil, errors.New(errors.ErrCodeInvalidMergeMode,
			"both a resource and a reference table are present: a merge mode is required")
	default:
		return nil, errors.New(errors.ErrCodeInvalidMergeMode, "invalid merge mode %q", string(mode))
	}
}
