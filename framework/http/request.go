package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-activation/framework/http/validation"
)

// ErrEmptyBody is returned by Bind for a request without a body.
var ErrEmptyBody = errors.New("empty request body")

// Request wraps *http.Request with controller-side helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the request body into v. JSON bodies are decoded with
// encoding/json; form bodies are mapped onto v's `json` tags.
func (req *Request) Bind(v any) error {
	if strings.Contains(req.raw.Header.Get("Content-Type"), "application/json") {
		return req.bindJSON(v)
	}
	if err := req.raw.ParseForm(); err != nil {
		return err
	}
	return bindForm(req.raw.PostForm, v)
}

func (req *Request) bindJSON(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(req.raw.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// bindForm round-trips form values through JSON so v's json tags apply.
func bindForm(values map[string][]string, v any) error {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// RequestID returns the ID assigned by chi's RequestID middleware, if any.
func (req *Request) RequestID() string {
	return middleware.GetReqID(req.raw.Context())
}

// ── Validation ───────────────────────────────────────────────────────────────

// Validate binds the body into v and checks it against rules, keyed by v's
// json tags. Binding failures come back as err; rule failures as errs.
//
//	errs, err := t.Request(r).Validate(&body, validation.Rules{"title": "required"})
func (req *Request) Validate(v any, rules validation.Rules) (errs validation.Errors, err error) {
	if err := req.Bind(v); err != nil {
		return nil, err
	}
	data, err := fields(v)
	if err != nil {
		return nil, err
	}
	if val := validation.Make(data, rules); val.Fails() {
		return val.Errors(), nil
	}
	return nil, nil
}

// fields flattens a bound value into the map form the validator reads.
func fields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("validate: %T is not an object: %w", v, err)
	}
	return m, nil
}
