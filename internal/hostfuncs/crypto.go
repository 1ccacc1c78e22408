package hostfuncs

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/dop251/goja"
)

func registerCrypto(vm *goja.Runtime) {
	_ = vm.Set("md5", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		sum := md5.Sum([]byte(data))
		return vm.ToValue(hex.EncodeToString(sum[:]))
	})

	_ = vm.Set("sha256", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		sum := sha256.Sum256([]byte(data))
		return vm.ToValue(hex.EncodeToString(sum[:]))
	})

	_ = vm.Set("sha512", func(call goja.FunctionCall) goja.Value {
		data, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		sum := sha512.Sum512([]byte(data))
		return vm.ToValue(hex.EncodeToString(sum[:]))
	})

	_ = vm.Set("hmac_sha256", func(call goja.FunctionCall) goja.Value {
		key, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		data, ok := stringArg(call, 1)
		if !ok {
			return goja.Undefined()
		}
		mac := hmac.New(sha256.New, []byte(key))
		mac.Write([]byte(data))
		return vm.ToValue(hex.EncodeToString(mac.Sum(nil)))
	})
}
