package validation

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	alphaRe     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Rules maps a field name to its pipe-separated rule list.
//
//	validation.Rules{"title": "required|string|max:200"}
type Rules map[string]string

// Errors maps a field name to its failure messages.
type Errors map[string][]string

// Has reports whether field failed.
func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Validator checks a decoded payload against Rules. Fields are checked in
// name order and each field stops at its first failing rule.
type Validator struct {
	data   map[string]any
	rules  Rules
	errors Errors
	ran    bool
}

// Make creates a validator. Nothing is checked until Fails or Passes.
func Make(data map[string]any, rules Rules) *Validator {
	if data == nil {
		data = map[string]any{}
	}
	return &Validator{data: data, rules: rules}
}

// Fails runs the rules once and reports whether any field failed.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.run()
		v.ran = true
	}
	return len(v.errors) > 0
}

// Passes is !Fails.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the failures; empty when the payload passed.
func (v *Validator) Errors() Errors {
	v.Fails()
	return v.errors
}

// rule is one parsed entry of a rule list, e.g. "between:1,5".
type rule struct {
	name string
	args []string
}

func parse(list string) []rule {
	var out []rule
	for _, part := range strings.Split(list, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, found := strings.Cut(part, ":")
		r := rule{name: name}
		if found {
			// regex patterns may contain commas.
			if name == "regex" {
				r.args = []string{arg}
			} else {
				r.args = strings.Split(arg, ",")
			}
		}
		out = append(out, r)
	}
	return out
}

func has(rules []rule, names ...string) bool {
	for _, r := range rules {
		for _, n := range names {
			if r.name == n {
				return true
			}
		}
	}
	return false
}

func (v *Validator) run() {
	v.errors = Errors{}

	fields := make([]string, 0, len(v.rules))
	for f := range v.rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rules := parse(v.rules[field])
		value, present := v.data[field]

		if has(rules, "sometimes") && !present {
			continue
		}
		if empty(value) {
			if has(rules, "required") {
				v.add(field, fmt.Sprintf("The %s field is required.", field))
			}
			// Non-required empty fields skip the remaining rules.
			continue
		}

		numeric := has(rules, "numeric", "integer")
		for _, r := range rules {
			if msg := v.check(field, value, numeric, r); msg != "" {
				v.add(field, msg)
				break
			}
		}
	}
}

func (v *Validator) add(field, msg string) {
	v.errors[field] = append(v.errors[field], msg)
}

// check returns the failure message for r, or "" when value satisfies it.
func (v *Validator) check(field string, value any, numeric bool, r rule) string {
	switch r.name {
	case "required", "nullable", "sometimes":
		return ""

	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("The %s field must be a string.", field)
		}

	case "numeric":
		if _, ok := number(value); !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}

	case "integer":
		if f, ok := number(value); !ok || f != float64(int64(f)) {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	case "boolean":
		switch b := value.(type) {
		case bool:
		case string:
			if _, err := strconv.ParseBool(b); err != nil {
				return fmt.Sprintf("The %s field must be true or false.", field)
			}
		default:
			if f, ok := number(value); !ok || (f != 0 && f != 1) {
				return fmt.Sprintf("The %s field must be true or false.", field)
			}
		}

	case "email":
		s, _ := value.(string)
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			return fmt.Sprintf("The %s field must be a valid email address.", field)
		}

	case "url":
		s, _ := value.(string)
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return fmt.Sprintf("The %s field must be a valid URL.", field)
		}

	case "alpha":
		if !matches(alphaRe, value) {
			return fmt.Sprintf("The %s field must only contain letters.", field)
		}

	case "alpha_num":
		if !matches(alphaNumRe, value) {
			return fmt.Sprintf("The %s field must only contain letters and numbers.", field)
		}

	case "alpha_dash":
		if !matches(alphaDashRe, value) {
			return fmt.Sprintf("The %s field must only contain letters, numbers, dashes and underscores.", field)
		}

	case "regex":
		if len(r.args) != 1 {
			return fmt.Sprintf("The %s field has a malformed regex rule.", field)
		}
		re, err := regexp.Compile(strings.Trim(r.args[0], "/"))
		if err != nil || !matches(re, value) {
			return fmt.Sprintf("The %s field format is invalid.", field)
		}

	case "min", "max", "size":
		limit, ok := floatArg(r, 0)
		if !ok {
			return fmt.Sprintf("The %s field has a malformed %s rule.", field, r.name)
		}
		n, unit := measure(value, numeric)
		switch {
		case r.name == "min" && n < limit:
			return fmt.Sprintf("The %s field must be at least %s%s.", field, r.args[0], unit)
		case r.name == "max" && n > limit:
			return fmt.Sprintf("The %s field must not be greater than %s%s.", field, r.args[0], unit)
		case r.name == "size" && n != limit:
			return fmt.Sprintf("The %s field must be %s%s.", field, r.args[0], unit)
		}

	case "between":
		lo, ok1 := floatArg(r, 0)
		hi, ok2 := floatArg(r, 1)
		if !ok1 || !ok2 {
			return fmt.Sprintf("The %s field has a malformed between rule.", field)
		}
		if n, unit := measure(value, numeric); n < lo || n > hi {
			return fmt.Sprintf("The %s field must be between %s and %s%s.", field, r.args[0], r.args[1], unit)
		}

	case "in", "not_in":
		found := false
		s := fmt.Sprint(value)
		for _, a := range r.args {
			if a == s {
				found = true
				break
			}
		}
		if found == (r.name == "not_in") {
			return fmt.Sprintf("The selected %s is invalid.", field)
		}

	case "confirmed":
		if other, ok := v.data[field+"_confirmation"]; !ok || !reflect.DeepEqual(other, value) {
			return fmt.Sprintf("The %s field confirmation does not match.", field)
		}

	case "same", "different":
		if len(r.args) != 1 {
			return fmt.Sprintf("The %s field has a malformed %s rule.", field, r.name)
		}
		equal := reflect.DeepEqual(v.data[r.args[0]], value)
		if r.name == "same" && !equal {
			return fmt.Sprintf("The %s field must match %s.", field, r.args[0])
		}
		if r.name == "different" && equal {
			return fmt.Sprintf("The %s field and %s must be different.", field, r.args[0])
		}

	default:
		return fmt.Sprintf("The %s field has an unknown rule %q.", field, r.name)
	}
	return ""
}

// empty reports whether value counts as missing for "required".
func empty(value any) bool {
	switch x := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// number accepts decoded JSON numbers, Go numeric kinds and numeric strings.
func number(value any) (float64, bool) {
	switch x := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// measure is the quantity min/max/size/between compare: the value itself
// for numeric fields, the rune count for strings and the length for lists.
func measure(value any, numeric bool) (float64, string) {
	if numeric {
		f, _ := number(value)
		return f, ""
	}
	switch x := value.(type) {
	case string:
		return float64(utf8.RuneCountInString(x)), " characters"
	case []any:
		return float64(len(x)), " items"
	}
	if f, ok := number(value); ok {
		return f, ""
	}
	return 0, ""
}

func floatArg(r rule, i int) (float64, bool) {
	if i >= len(r.args) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.args[i]), 64)
	return f, err == nil
}

func matches(re *regexp.Regexp, value any) bool {
	s, ok := value.(string)
	return ok && re.MatchString(s)
}
