package validation_test

import (
	"testing"

	"github.com/km-arc/go-activation/framework/http/validation"
)

func pass(t *testing.T, label string, data map[string]any, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		if v := validation.Make(data, rules); v.Fails() {
			t.Errorf("expected pass, got %v", v.Errors())
		}
	})
}

func fail(t *testing.T, label, field string, data map[string]any, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Passes() {
			t.Fatalf("expected %q to fail", field)
		}
		if !v.Errors().Has(field) {
			t.Errorf("no error for %q: %v", field, v.Errors())
		}
	})
}

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"title": "required"}

	pass(t, "value", map[string]any{"title": "jammed"}, r)
	fail(t, "empty", "title", map[string]any{"title": ""}, r)
	fail(t, "blank", "title", map[string]any{"title": "   "}, r)
	fail(t, "null", "title", map[string]any{"title": nil}, r)
	fail(t, "missing", "title", map[string]any{}, r)
	fail(t, "nil data", "title", nil, r)
	fail(t, "empty list", "title", map[string]any{"title": []any{}}, r)
}

func TestValidation_RequiredMessage(t *testing.T) {
	v := validation.Make(map[string]any{}, validation.Rules{"title": "required"})
	if got := v.Errors().First("title"); got != "The title field is required." {
		t.Errorf("message: got %q", got)
	}
	if got := v.Errors().First("other"); got != "" {
		t.Errorf("First on a passing field: got %q", got)
	}
}

func TestValidation_OptionalEmptySkipsRules(t *testing.T) {
	r := validation.Rules{"note": "nullable|string|min:5"}

	pass(t, "missing", map[string]any{}, r)
	pass(t, "null", map[string]any{"note": nil}, r)
	fail(t, "short", "note", map[string]any{"note": "abc"}, r)
}

func TestValidation_Sometimes(t *testing.T) {
	r := validation.Rules{"priority": "sometimes|required|integer"}

	pass(t, "absent", map[string]any{}, r)
	fail(t, "present but empty", "priority", map[string]any{"priority": ""}, r)
	pass(t, "present", map[string]any{"priority": float64(2)}, r)
}

func TestValidation_Types(t *testing.T) {
	pass(t, "string", map[string]any{"f": "x"}, validation.Rules{"f": "string"})
	fail(t, "string from number", "f", map[string]any{"f": float64(1)}, validation.Rules{"f": "string"})

	pass(t, "numeric json", map[string]any{"f": 1.5}, validation.Rules{"f": "numeric"})
	pass(t, "numeric string", map[string]any{"f": "2.5"}, validation.Rules{"f": "numeric"})
	pass(t, "numeric int", map[string]any{"f": 7}, validation.Rules{"f": "numeric"})
	fail(t, "numeric word", "f", map[string]any{"f": "two"}, validation.Rules{"f": "numeric"})
	fail(t, "numeric bool", "f", map[string]any{"f": true}, validation.Rules{"f": "numeric"})

	pass(t, "integer", map[string]any{"f": float64(3)}, validation.Rules{"f": "integer"})
	fail(t, "integer fraction", "f", map[string]any{"f": 3.2}, validation.Rules{"f": "integer"})

	for _, ok := range []any{true, false, "true", "0", float64(1), 0} {
		pass(t, "boolean", map[string]any{"f": ok}, validation.Rules{"f": "boolean"})
	}
	fail(t, "boolean word", "f", map[string]any{"f": "yes"}, validation.Rules{"f": "boolean"})
	fail(t, "boolean two", "f", map[string]any{"f": float64(2)}, validation.Rules{"f": "boolean"})
}

func TestValidation_Formats(t *testing.T) {
	r := validation.Rules{"email": "email"}
	pass(t, "email", map[string]any{"email": "ops@example.com"}, r)
	fail(t, "email no at", "email", map[string]any{"email": "ops.example.com"}, r)
	fail(t, "email display name", "email", map[string]any{"email": "Ops <ops@example.com>"}, r)

	r = validation.Rules{"hook": "url"}
	pass(t, "url", map[string]any{"hook": "https://example.com/hook"}, r)
	fail(t, "url scheme", "hook", map[string]any{"hook": "ftp://example.com"}, r)

	pass(t, "alpha", map[string]any{"f": "abc"}, validation.Rules{"f": "alpha"})
	fail(t, "alpha digits", "f", map[string]any{"f": "abc1"}, validation.Rules{"f": "alpha"})
	pass(t, "alpha_num", map[string]any{"f": "abc1"}, validation.Rules{"f": "alpha_num"})
	fail(t, "alpha_num dash", "f", map[string]any{"f": "a-1"}, validation.Rules{"f": "alpha_num"})
	pass(t, "alpha_dash", map[string]any{"f": "a-1_b"}, validation.Rules{"f": "alpha_dash"})
	fail(t, "alpha_dash space", "f", map[string]any{"f": "a b"}, validation.Rules{"f": "alpha_dash"})

	r = validation.Rules{"code": `regex:/^T-\d{2,4}$/`}
	pass(t, "regex", map[string]any{"code": "T-123"}, r)
	fail(t, "regex miss", "code", map[string]any{"code": "X-1"}, r)
	fail(t, "regex bad pattern", "code", map[string]any{"code": "T-1"}, validation.Rules{"code": "regex:("})
}

func TestValidation_Sizes(t *testing.T) {
	r := validation.Rules{"title": "string|min:3|max:5"}
	pass(t, "length in range", map[string]any{"title": "héllo"}, r)
	fail(t, "too short", "title", map[string]any{"title": "ab"}, r)
	fail(t, "too long", "title", map[string]any{"title": "abcdef"}, r)

	r = validation.Rules{"priority": "integer|between:1,5"}
	pass(t, "value in range", map[string]any{"priority": float64(5)}, r)
	fail(t, "value above", "priority", map[string]any{"priority": float64(6)}, r)

	// Without numeric the digits are counted.
	pass(t, "string digits", map[string]any{"zip": "12345"}, validation.Rules{"zip": "size:5"})
	pass(t, "list size", map[string]any{"tags": []any{"a", "b"}}, validation.Rules{"tags": "size:2"})
	fail(t, "list max", "tags", map[string]any{"tags": []any{"a", "b", "c"}}, validation.Rules{"tags": "max:2"})

	fail(t, "malformed limit", "title", map[string]any{"title": "abc"}, validation.Rules{"title": "max:lots"})
}

func TestValidation_SizeMessageUnits(t *testing.T) {
	v := validation.Make(map[string]any{"title": "abcdef"}, validation.Rules{"title": "max:5"})
	if got := v.Errors().First("title"); got != "The title field must not be greater than 5 characters." {
		t.Errorf("message: got %q", got)
	}
	v = validation.Make(map[string]any{"n": float64(9)}, validation.Rules{"n": "numeric|max:5"})
	if got := v.Errors().First("n"); got != "The n field must not be greater than 5." {
		t.Errorf("message: got %q", got)
	}
}

func TestValidation_InNotIn(t *testing.T) {
	r := validation.Rules{"status": "in:open,closed"}
	pass(t, "in", map[string]any{"status": "open"}, r)
	fail(t, "not listed", "status", map[string]any{"status": "pending"}, r)

	pass(t, "in number", map[string]any{"n": float64(3)}, validation.Rules{"n": "in:1,2,3"})

	r = validation.Rules{"status": "not_in:deleted"}
	pass(t, "not_in", map[string]any{"status": "open"}, r)
	fail(t, "not_in listed", "status", map[string]any{"status": "deleted"}, r)
}

func TestValidation_CrossField(t *testing.T) {
	r := validation.Rules{"password": "confirmed"}
	pass(t, "confirmed", map[string]any{"password": "s3cret", "password_confirmation": "s3cret"}, r)
	fail(t, "confirmation differs", "password", map[string]any{"password": "s3cret", "password_confirmation": "other"}, r)
	fail(t, "confirmation missing", "password", map[string]any{"password": "s3cret"}, r)

	pass(t, "same", map[string]any{"a": "x", "b": "x"}, validation.Rules{"b": "same:a"})
	fail(t, "same differs", "b", map[string]any{"a": "x", "b": "y"}, validation.Rules{"b": "same:a"})
	pass(t, "different", map[string]any{"a": "x", "b": "y"}, validation.Rules{"b": "different:a"})
	fail(t, "different equal", "b", map[string]any{"a": "x", "b": "x"}, validation.Rules{"b": "different:a"})
}

func TestValidation_UnknownRuleFails(t *testing.T) {
	fail(t, "unknown", "title", map[string]any{"title": "x"}, validation.Rules{"title": "uppercase"})
}

func TestValidation_FirstFailureOnlyAndRunsOnce(t *testing.T) {
	v := validation.Make(map[string]any{"title": float64(1)}, validation.Rules{
		"title": "string|min:3",
		"body":  "required",
	})
	if !v.Fails() || !v.Fails() {
		t.Fatal("expected failure")
	}
	errs := v.Errors()
	if len(errs["title"]) != 1 || len(errs["body"]) != 1 {
		t.Errorf("want one message per field, got %v", errs)
	}
	if errs.First("title") != "The title field must be a string." {
		t.Errorf("title: got %q", errs.First("title"))
	}
}
