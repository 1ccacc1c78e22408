package hostfuncs

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

func registerJSON(vm *goja.Runtime, opts Options) {
	// parse_json never partially parses: invalid input yields null.
	_ = vm.Set("parse_json", func(call goja.FunctionCall) goja.Value {
		text, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			opts.warn(fmt.Sprintf("parse_json: %v", err))
			return goja.Null()
		}
		return vm.ToValue(parsed)
	})

	_ = vm.Set("to_json", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		data, err := json.Marshal(call.Arguments[0].Export())
		if err != nil {
			opts.warn(fmt.Sprintf("to_json: %v", err))
			return goja.Null()
		}
		return vm.ToValue(string(data))
	})

	_ = vm.Set("json_stringify", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		data, err := json.MarshalIndent(call.Arguments[0].Export(), "", "  ")
		if err != nil {
			opts.warn(fmt.Sprintf("json_stringify: %v", err))
			return goja.Null()
		}
		return vm.ToValue(string(data))
	})

	_ = vm.Set("is_valid_json", func(call goja.FunctionCall) goja.Value {
		text, ok := stringArg(call, 0)
		if !ok {
			return vm.ToValue(false)
		}
		return vm.ToValue(json.Valid([]byte(text)))
	})
}
