// Package validation checks decoded request payloads against pipe-separated
// rule lists.
//
//	v := validation.Make(map[string]any{"title": "Printer jammed"}, validation.Rules{
//	    "title":    "required|string|max:200",
//	    "priority": "sometimes|integer|between:1,5",
//	})
//	if v.Fails() {
//	    // v.Errors() is map[string][]string
//	}
//
// Data is expected in the shape encoding/json produces: strings, float64,
// bool, []any and map[string]any. Numeric strings satisfy numeric rules.
//
// Rules:
//   - required, nullable, sometimes
//   - string, numeric, integer, boolean
//   - email, url, alpha, alpha_num, alpha_dash, regex:pattern
//   - min:n, max:n, size:n, between:a,b
//   - in:a,b,c, not_in:a,b,c
//   - confirmed, same:field, different:field
//
// min, max, size and between compare the value for fields that also carry
// numeric or integer, the rune count for strings and the length for lists.
// An empty field that is not required skips its remaining rules.
package validation
