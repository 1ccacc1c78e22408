package hostfuncs

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/dop251/goja"
)

func registerEncoding(vm *goja.Runtime, opts Options) {
	_ = vm.Set("base64_encode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(base64.StdEncoding.EncodeToString([]byte(data)))
	})

	_ = vm.Set("base64_decode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			opts.warn(fmt.Sprintf("base64_decode: %v", err))
			return goja.Null()
		}
		return vm.ToValue(string(decoded))
	})

	_ = vm.Set("url_encode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(url.QueryEscape(data))
	})

	_ = vm.Set("url_decode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		decoded, err := url.QueryUnescape(data)
		if err != nil {
			opts.warn(fmt.Sprintf("url_decode: %v", err))
			return goja.Null()
		}
		return vm.ToValue(decoded)
	})

	_ = vm.Set("hex_encode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(hex.EncodeToString([]byte(data)))
	})

	_ = vm.Set("hex_decode", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		decoded, err := hex.DecodeString(data)
		if err != nil {
			opts.warn(fmt.Sprintf("hex_decode: %v", err))
			return goja.Null()
		}
		return vm.ToValue(string(decoded))
	})
}
