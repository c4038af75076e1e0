// Package form validates submitted form values against declarative field rules.
package form

import (
	"github.com/go-playground/validator/v10"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

// Kind is the kind of input a Rule applies to.
type Kind int

const (
	Text          Kind = iota // text, email, tel, number, date, select, textarea
	Checkbox                  // single checkbox, e.g. terms acceptance
	CheckboxGroup             // several checkboxes sharing a name
	RadioGroup                // radio buttons sharing a name
)

// Message keys reported in core.FieldError.Error, translated at the edge.
const (
	MsgRequired      = "validation.required"
	MsgCheckboxGroup = "validation.checkboxGroup"
	MsgRadio         = "validation.radio"
	MsgTerms         = "validation.terms"
)

// Rule declares how one field is validated.
type Rule struct {
	Field    string
	Kind     Kind
	Required bool
	Tag      string   // validator tag the trimmed value must satisfy when present, e.g. core.PhoneTag
	Message  string   // message key reported on failure; defaults per Kind
	Options  []string // allowed group values; any value when empty
}

func (r Rule) message() string {
	if r.Message != "" {
		return r.Message
	}
	switch r.Kind {
	case CheckboxGroup:
		return MsgCheckboxGroup
	case RadioGroup:
		return MsgRadio
	}
	return MsgRequired
}

func (r Rule) allows(val string) bool {
	if len(r.Options) == 0 {
		return true
	}
	for _, opt := range r.Options {
		if opt == val {
			return true
		}
	}
	return false
}

// Validator applies Rules to Values.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(validate *validator.Validate) *Validator {
	return &Validator{validate: validate}
}

// Validate checks every rule and returns one error per failing field, in rule order.
func (fv *Validator) Validate(values Values, rules ...Rule) []core.FieldError {
	var errs []core.FieldError
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Field] {
			continue
		}
		if msg, ok := fv.check(values, r); !ok {
			seen[r.Field] = true
			errs = append(errs, core.FieldError{Field: r.Field, Error: msg})
		}
	}
	return errs
}

func (fv *Validator) check(values Values, r Rule) (string, bool) {
	switch r.Kind {
	case Checkbox:
		if r.Required && !values.Checked(r.Field) {
			return r.message(), false
		}
	case CheckboxGroup:
		checked := values.All(r.Field)
		if r.Required && len(checked) == 0 {
			return r.message(), false
		}
		for _, val := range checked {
			if !r.allows(val) {
				return r.message(), false
			}
		}
	case RadioGroup:
		selected := values.All(r.Field)
		if len(selected) == 0 {
			if r.Required {
				return r.message(), false
			}
			return "", true
		}
		if len(selected) != 1 || !r.allows(selected[0]) {
			return r.message(), false
		}
	default:
		val := values.Get(r.Field)
		if val == "" {
			if r.Required {
				return r.message(), false
			}
			return "", true
		}
		if r.Tag != "" && fv.validate.Var(val, r.Tag) != nil {
			if r.Message != "" {
				return r.Message, false
			}
			return "validation." + r.Tag, false
		}
	}
	return "", true
}
