// Package templating substitutes {{...}} placeholders in item configuration
// before dispatch. Plain names come from the variable store; dotted names
// reach into earlier responses by item name, including JSON body paths.
// Unresolvable placeholders are left verbatim so the problem is visible in
// the outgoing request instead of silently becoming an empty string.
package templating

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"apitest/internal/httpclient"
)

var placeholderRegex = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolve expands every placeholder in input. Supported forms:
//
//	{{key}}                   variable store lookup
//	{{item.status}}           status code of a previous response
//	{{item.body}}             full body of a previous response
//	{{item.body.path.to.x}}   JSON path into a previous response body
//	{{item.headers.Name}}     header of a previous response
func Resolve(input string, vars map[string]string, responses map[string]*httpclient.Response) string {
	if input == "" || !strings.Contains(input, "{{") {
		return input
	}
	return placeholderRegex.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if expr == "" {
			return match
		}

		// Variables win over response references, so an item named like a
		// variable never shadows it.
		if val, ok := vars[expr]; ok {
			return val
		}

		name, rest, found := strings.Cut(expr, ".")
		if !found {
			return match
		}
		resp, ok := responses[name]
		if !ok || resp == nil {
			return match
		}

		switch {
		case rest == "status":
			return strconv.Itoa(resp.StatusCode)
		case rest == "body":
			return resp.BodyString()
		case strings.HasPrefix(rest, "body."):
			if result := gjson.Get(resp.BodyString(), strings.TrimPrefix(rest, "body.")); result.Exists() {
				return result.String()
			}
		case strings.HasPrefix(rest, "headers."):
			if val, ok := resp.Header.Lookup(strings.TrimPrefix(rest, "headers.")); ok {
				return val
			}
		}
		return match
	})
}

// ResolveMap expands placeholders in every value of a string map. Keys are
// left alone. A nil input yields an empty map so callers can assign freely.
func ResolveMap(in map[string]string, vars map[string]string, responses map[string]*httpclient.Response) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = Resolve(v, vars, responses)
	}
	return out
}
