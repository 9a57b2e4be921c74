package validate

import (
	"errors"
	"fmt"
)

// ErrDuplicateValidator is returned when two validators share a name.
var ErrDuplicateValidator = errors.New("duplicate validator name")

// Registry is an ordered table of validators keyed by name.
type Registry struct {
	validators []Validator
	byName     map[string]Validator
}

// NewRegistry builds a registry from validators in the given order.
func NewRegistry(validators ...Validator) (*Registry, error) {
	r := &Registry{byName: make(map[string]Validator, len(validators))}
	for _, v := range validators {
		name := v.Descriptor().Name
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateValidator, name)
		}
		r.byName[name] = v
		r.validators = append(r.validators, v)
	}
	return r, nil
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (Validator, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// All returns every validator in registration order.
func (r *Registry) All() []Validator {
	return append([]Validator(nil), r.validators...)
}

// Default returns the registry of built-in validators.
func Default() *Registry {
	r, err := NewRegistry(
		FieldsValidator{},
		EncodingValidator{},
		LeadingTrailingValidator{},
		DuplicateValuesValidator{},
		InReleaseDuplicatesValidator{},
		DuplicateURLsValidator{},
		DuplicateExternalIDsValidator{},
		AddressValidator{},
		ProductionDuplicatesValidator{},
		NewRecordIntegrityValidator{},
		UpdateRecordIntegrityValidator{},
	)
	if err != nil {
		panic(err)
	}
	return r
}
