// Conversion between the native request/response model and the map-shaped
// values scripts see. Scripts work on plain maps; after a pre-request script
// completes, ApplyRequest validates the mutated view and writes it back.
// Responses are converted one way only, so scripts cannot alter them.

package scriptruntime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"apitest/internal/httpclient"
)

// TypeMismatchError reports a script assignment that cannot be written back
// to the native model without losing information.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   interface{}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("request.%s: expected %s, got %T", e.Field, e.Want, e.Got)
}

// RequestView builds the script-visible request object. The returned map is
// live inside the VM: the goja runtime proxies it, so script mutations land
// directly in these maps and ApplyRequest can read them back.
func RequestView(req *httpclient.Request) map[string]interface{} {
	params := make(map[string]string, len(req.Params))
	for k, v := range req.Params {
		params[k] = v
	}
	return map[string]interface{}{
		"url":     req.URL,
		"method":  req.Method,
		"headers": req.Header.Map(),
		"params":  params,
		"body":    req.Body,
	}
}

// ResponseView builds the read-only script view of a response. Nothing in
// it is written back.
func ResponseView(resp *httpclient.Response) map[string]interface{} {
	return map[string]interface{}{
		"status":   resp.StatusCode,
		"headers":  resp.Header.Map(),
		"body":     resp.BodyString(),
		"duration": resp.DurationMs(),
	}
}

// ApplyRequest validates the possibly mutated view and writes every field
// back into req. Scalar fields accept strings, numbers and booleans (the
// conversion is lossless); structured values where a string is expected, or
// scalars where a mapping is expected, fail with a TypeMismatchError and
// nothing is written back.
func ApplyRequest(view map[string]interface{}, req *httpclient.Request) error {
	url, err := scalarField(view, "url", req.URL)
	if err != nil {
		return err
	}
	method, err := scalarField(view, "method", req.Method)
	if err != nil {
		return err
	}
	body, err := scalarField(view, "body", req.Body)
	if err != nil {
		return err
	}

	headers, err := mapField(view, "headers")
	if err != nil {
		return err
	}
	params, err := mapField(view, "params")
	if err != nil {
		return err
	}

	req.URL = url
	req.Method = strings.ToUpper(method)
	req.Body = body
	applyHeaders(req.Header, headers)

	for k := range req.Params {
		delete(req.Params, k)
	}
	for k, v := range params {
		req.Params[k] = v
	}
	return nil
}

// applyHeaders reconciles the script's unordered header map with the ordered
// native header: existing entries keep their position (matched
// case-insensitively), removed entries are dropped, and new entries are
// appended in sorted name order for determinism.
func applyHeaders(dst *httpclient.Header, src map[string]string) {
	consumed := make(map[string]bool, len(src))
	for _, p := range dst.Pairs() {
		found := false
		for name, value := range src {
			if strings.EqualFold(name, p.Name) {
				dst.Set(p.Name, value)
				consumed[name] = true
				found = true
				break
			}
		}
		if !found {
			dst.Del(p.Name)
		}
	}

	added := make([]string, 0, len(src))
	for name := range src {
		if !consumed[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		dst.Set(name, src[name])
	}
}

func scalarField(view map[string]interface{}, field, current string) (string, error) {
	raw, ok := view[field]
	if !ok {
		return current, nil
	}
	s, ok := ScalarToString(raw)
	if !ok {
		return "", &TypeMismatchError{Field: field, Want: "string", Got: raw}
	}
	return s, nil
}

func mapField(view map[string]interface{}, field string) (map[string]string, error) {
	raw, ok := view[field]
	if !ok || raw == nil {
		return map[string]string{}, nil
	}
	out := make(map[string]string)
	switch m := raw.(type) {
	case map[string]string:
		for k, v := range m {
			out[k] = v
		}
	case map[string]interface{}:
		for k, v := range m {
			s, ok := ScalarToString(v)
			if !ok {
				return nil, &TypeMismatchError{Field: field + "." + k, Want: "string", Got: v}
			}
			out[k] = s
		}
	default:
		return nil, &TypeMismatchError{Field: field, Want: "mapping", Got: raw}
	}
	return out, nil
}

// ScalarToString converts script scalars to their string form. Structured
// values and nil report failure so callers can raise a type mismatch.
func ScalarToString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
