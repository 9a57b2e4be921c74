package domain

// Action is an edit operation a contributor can request on a field.
type Action string

const (
	// ActionAdd appends values to a multi-value field.
	ActionAdd Action = "add"
	// ActionDelete removes values, or the whole field when no value is given.
	ActionDelete Action = "delete"
	// ActionReplace overwrites the field with the given values.
	ActionReplace Action = "replace"
)

// Actions lists every action in the order they are reported.
var Actions = []Action{ActionAdd, ActionDelete, ActionReplace}

// ActionSet is an immutable set of actions permitted on a field.
type ActionSet uint8

const (
	allowAdd ActionSet = 1 << iota
	allowDelete
	allowReplace
)

// NewActionSet builds a set from the given actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s |= a.bit()
	}
	return s
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	bit := a.bit()
	return bit != 0 && s&bit != 0
}

// Empty reports whether no action is allowed.
func (s ActionSet) Empty() bool { return s == 0 }

// List returns the allowed actions in canonical order.
func (s ActionSet) List() []Action {
	var out []Action
	for _, a := range Actions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (a Action) bit() ActionSet {
	switch a {
	case ActionAdd:
		return allowAdd
	case ActionDelete:
		return allowDelete
	case ActionReplace:
		return allowReplace
	}
	return 0
}

// Directive is a single parsed edit on one field.
type Directive struct {
	Field  string
	Action Action
	Value  string
	// Whole is set for a value-less delete that clears the entire field.
	Whole bool
}
