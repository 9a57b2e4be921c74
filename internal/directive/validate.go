package directive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eykd/rorv/internal/domain"
)

// Structural validation errors.
var (
	ErrUnknownField     = errors.New("unknown field")
	ErrNotEditable      = errors.New("field cannot be edited")
	ErrActionNotAllowed = errors.New("action not allowed for field")
	ErrRequiredField    = errors.New("required field cannot be cleared")
	ErrMultipleValues   = errors.New("field accepts a single value")
	ErrNameLang         = errors.New("invalid name*lang value")
)

// Validate checks an edit against the field's allowed-action table and,
// for name fields, the name*lang shape of every value.
func Validate(field string, edit Edit) []error {
	spec, ok := domain.LookupField(field)
	if !ok {
		return []error{fmt.Errorf("%w: %s", ErrUnknownField, field)}
	}
	if spec.Meta || spec.Actions.Empty() {
		if len(edit) == 0 {
			return nil
		}
		return []error{fmt.Errorf("%w: %s", ErrNotEditable, field)}
	}

	var errs []error
	for _, a := range domain.Actions {
		if edit.Has(a) && !spec.Actions.Has(a) {
			errs = append(errs, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, a, field))
		}
	}
	if spec.Required && edit.ClearsField() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrRequiredField, field))
	}
	if !spec.Multi && len(edit.Values(domain.ActionReplace)) > 1 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMultipleValues, field))
	}

	if spec.Kind == domain.KindName {
		for _, d := range edit.Directives(field) {
			if d.Whole || strings.EqualFold(d.Value, ClearValue) {
				continue
			}
			if err := ValidateNameLang(d.Value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// ValidateNameLang checks the "name*lang" shape: at most one '*', a
// two-letter alphabetic language code when present, and a non-empty name.
func ValidateNameLang(value string) error {
	count := strings.Count(value, "*")
	if count == 0 {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: empty name", ErrNameLang)
		}
		return nil
	}
	if count > 1 {
		return fmt.Errorf("%w: %q has more than one '*'", ErrNameLang, value)
	}

	name, lang, _ := strings.Cut(value, "*")
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: %q has no name before '*'", ErrNameLang, value)
	case strings.TrimSpace(lang) == "":
		return fmt.Errorf("%w: %q ends with a bare '*'", ErrNameLang, value)
	case !langCodeRegex.MatchString(strings.TrimSpace(lang)):
		return fmt.Errorf("%w: %q language must be a two-letter code", ErrNameLang, value)
	}
	return nil
}
