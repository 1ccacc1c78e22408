package scriptruntime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// ValueToString renders an exported script value for logging. Maps and
// arrays become JSON so console output of structured values stays readable.
func ValueToString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// BuildMessage joins console call arguments into one log line.
func BuildMessage(args []goja.Value) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, ValueToString(arg.Export()))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
