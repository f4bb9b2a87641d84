// Package validate checks decoded JSON objects and query strings against a
// declarative list of fields.
//
// A field whose rule does not hold is treated as absent. A schema fails when
// any required field is absent; optional fields never fail it.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"uk.co.dudmesh.checkup/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("dockey", func(fl validator.FieldLevel) bool {
		return model.IsDocumentKey(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("registering dockey validation: %v", err))
	}
	return v
}

// holds reports whether v satisfies the validator tag.
func holds(v interface{}, tag string) bool {
	return validate.Var(v, tag) == nil
}

// Rule normalizes v and reports whether it is acceptable.
type Rule func(v interface{}) (interface{}, bool)

type Field struct {
	Name     string
	Required bool
	Rule     Rule
}

type Schema []Field

func Required(name string, rule Rule) Field {
	return Field{Name: name, Required: true, Rule: rule}
}

func Optional(name string, rule Rule) Field {
	return Field{Name: name, Rule: rule}
}

// Apply evaluates every field of s against src.
func (s Schema) Apply(src map[string]interface{}) (Values, bool) {
	values := Values{}
	ok := true
	for _, field := range s {
		raw, present := src[field.Name]
		if present {
			if v, valid := field.Rule(raw); valid {
				values[field.Name] = v
				continue
			}
		}
		if field.Required {
			ok = false
		}
	}
	return values, ok
}

type Values map[string]interface{}

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Any reports whether at least one of names is present.
func (v Values) Any(names ...string) bool {
	for _, name := range names {
		if v.Has(name) {
			return true
		}
	}
	return false
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

func (v Values) Ints(name string) []int {
	i, _ := v[name].([]int)
	return i
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// NonEmptyString accepts strings that are not blank and trims them.
func NonEmptyString() Rule {
	return func(v interface{}) (interface{}, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if !holds(s, "required") {
			return nil, false
		}
		return s, true
	}
}

// Email accepts a non-empty string that can also name a user document.
func Email() Rule {
	return func(v interface{}) (interface{}, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		email := strings.TrimSpace(s)
		if !holds(email, "required,dockey") {
			return nil, false
		}
		return email, true
	}
}

// Length accepts trimmed strings of exactly n characters.
func Length(n int) Rule {
	tag := fmt.Sprintf("len=%d", n)
	return func(v interface{}) (interface{}, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if !holds(s, tag) {
			return nil, false
		}
		return s, true
	}
}

// True accepts only the boolean true.
func True() Rule {
	return func(v interface{}) (interface{}, bool) {
		b, ok := v.(bool)
		if !ok || !holds(b, "eq=true") {
			return nil, false
		}
		return b, true
	}
}

func OneOf(options ...string) Rule {
	tag := "oneof=" + strings.Join(options, " ")
	return func(v interface{}) (interface{}, bool) {
		s, ok := v.(string)
		if !ok || !holds(s, tag) {
			return nil, false
		}
		return s, true
	}
}

// IntBetween accepts whole JSON numbers in [min, max].
func IntBetween(min, max int) Rule {
	tag := fmt.Sprintf("min=%d,max=%d", min, max)
	return func(v interface{}) (interface{}, bool) {
		i, ok := toInt(v)
		if !ok || !holds(i, tag) {
			return nil, false
		}
		return i, true
	}
}

// NonEmptyInts accepts a non-empty array of whole numbers and returns them
// as a set, in first-seen order.
func NonEmptyInts() Rule {
	return func(v interface{}) (interface{}, bool) {
		items, ok := v.([]interface{})
		if !ok {
			return nil, false
		}
		seen := make(map[int]bool, len(items))
		ints := make([]int, 0, len(items))
		for _, item := range items {
			i, ok := toInt(item)
			if !ok {
				return nil, false
			}
			if seen[i] {
				continue
			}
			seen[i] = true
			ints = append(ints, i)
		}
		if !holds(ints, "min=1") {
			return nil, false
		}
		return ints, true
	}
}

// toInt accepts whole numbers only; JSON decodes every number as float64.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
