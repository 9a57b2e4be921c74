// Package directive parses the per-field edit mini-language used in bulk
// update rows ("add==X;delete==Y", "replace==Z", a bare value or "delete")
// and checks edits against the field vocabulary.
package directive

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/eykd/rorv/internal/domain"
)

// ErrMixedReplace is returned when replace is combined with add or delete on one field.
var ErrMixedReplace = errors.New("replace cannot be combined with add or delete")

// ErrStrayText is returned when text precedes the first action token.
var ErrStrayText = errors.New("text outside of an action")

// ClearValue is the replace value that asks for a field to be emptied.
const ClearValue = "delete"

// Edit maps each action found in an edit string to its values. A delete
// key with a nil slice means "delete the whole field".
type Edit map[domain.Action][]string

// Parse splits an edit string into actions and values in a single pass.
// Structural problems are reported through the error while the edit still
// carries everything that could be parsed.
func Parse(s string) (Edit, error) {
	s = strings.TrimSpace(s)
	edit := Edit{}

	locs := tokenRegex.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		switch {
		case s == "":
		case strings.EqualFold(s, ClearValue):
			edit[domain.ActionDelete] = nil
		default:
			edit[domain.ActionReplace] = []string{s}
		}
		return edit, nil
	}

	var errs []error
	if prefix := strings.Trim(s[:locs[0][0]], " ;"); prefix != "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrStrayText, prefix))
	}

	for i, loc := range locs {
		action := domain.Action(strings.ToLower(s[loc[2]:loc[3]]))
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		values := domain.SplitValues(s[loc[1]:end])
		if len(values) == 0 && action == domain.ActionDelete {
			if _, seen := edit[action]; !seen {
				edit[action] = nil
			}
			continue
		}
		edit[action] = append(edit[action], values...)
	}

	if edit.Has(domain.ActionReplace) && (edit.Has(domain.ActionAdd) || edit.Has(domain.ActionDelete)) {
		errs = append(errs, ErrMixedReplace)
	}
	return edit, errors.Join(errs...)
}

// Has reports whether the action appears in the edit.
func (e Edit) Has(a domain.Action) bool {
	_, ok := e[a]
	return ok
}

// Values returns the values given for an action.
func (e Edit) Values(a domain.Action) []string {
	return e[a]
}

// ClearsField reports whether the edit asks for the whole field to be
// emptied: a bare delete or replace==delete.
func (e Edit) ClearsField() bool {
	if vals, ok := e[domain.ActionDelete]; ok && vals == nil {
		return true
	}
	return slices.ContainsFunc(e[domain.ActionReplace], func(v string) bool {
		return strings.EqualFold(v, ClearValue)
	})
}

// Asserted returns the values the edit expects to be present afterwards:
// every add and replace value except the clear marker.
func (e Edit) Asserted() []string {
	var out []string
	for _, a := range []domain.Action{domain.ActionAdd, domain.ActionReplace} {
		for _, v := range e[a] {
			if !strings.EqualFold(v, ClearValue) {
				out = append(out, v)
			}
		}
	}
	return out
}

// Directives expands the edit into one directive per value, in action order.
func (e Edit) Directives(field string) []domain.Directive {
	var out []domain.Directive
	for _, a := range domain.Actions {
		vals, ok := e[a]
		if !ok {
			continue
		}
		if a == domain.ActionDelete && vals == nil {
			out = append(out, domain.Directive{Field: field, Action: a, Whole: true})
			continue
		}
		for _, v := range vals {
			out = append(out, domain.Directive{Field: field, Action: a, Value: v})
		}
	}
	return out
}

// String renders the edit back into the mini-language.
func (e Edit) String() string {
	var parts []string
	for _, a := range domain.Actions {
		vals, ok := e[a]
		if !ok {
			continue
		}
		if vals == nil {
			parts = append(parts, string(a))
			continue
		}
		parts = append(parts, string(a)+"=="+strings.Join(vals, ";"))
	}
	return strings.Join(parts, ";")
}
