// Package varcapture flattens JSON response bodies into the variable store
// so later items can reference fields without writing a post script.
package varcapture

import (
	"encoding/json"
	"strconv"

	"apitest/internal/envstore"
)

// Capture parses body as a JSON object and stores every scalar leaf under
// a dotted key ("prefix.path.to.field"). Non-object roots and malformed
// bodies are ignored; capture is a convenience, never a failure.
func Capture(vars *envstore.Store, prefix, body string) {
	if vars == nil {
		return
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return
	}
	captureMap(vars, prefix, data)
}

func captureMap(vars *envstore.Store, prefix string, data map[string]interface{}) {
	for key, value := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			vars.Set(full, v)
		case bool:
			vars.Set(full, strconv.FormatBool(v))
		case float64:
			vars.Set(full, strconv.FormatFloat(v, 'f', -1, 64))
		case map[string]interface{}:
			captureMap(vars, full, v)
		}
	}
}
