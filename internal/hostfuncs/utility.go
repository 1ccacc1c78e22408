package hostfuncs

import (
	"math/rand"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"apitest/internal/scriptruntime"
)

const randomStringCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func registerUtility(vm *goja.Runtime, opts Options) {
	_ = vm.Set("random", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(int64(rand.Intn(1000000)))
	})

	_ = vm.Set("random_string", func(call goja.FunctionCall) goja.Value {
		length := int64(0)
		if len(call.Arguments) > 0 {
			length = call.Arguments[0].ToInteger()
		}
		if length < 0 {
			length = 0
		}
		out := make([]byte, length)
		for i := range out {
			out[i] = randomStringCharset[rand.Intn(len(randomStringCharset))]
		}
		return vm.ToValue(string(out))
	})

	_ = vm.Set("timestamp", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(time.Now().Unix())
	})

	_ = vm.Set("timestamp_ms", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(time.Now().UnixMilli())
	})

	_ = vm.Set("uuid", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(uuid.NewString())
	})

	_ = vm.Set("console_log", func(call goja.FunctionCall) goja.Value {
		opts.log("info", scriptruntime.BuildMessage(call.Arguments))
		return goja.Undefined()
	})
}
