package hostfuncs

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dop251/goja"

	"apitest/internal/httpclient"
	"apitest/internal/scriptruntime"
)

// The http_* functions are synchronous from the script's point of view: the
// call blocks until the sub-request completes or the timeout fires. Failures
// come back as error values so an unchecked result is the script's problem,
// not the host's.

func (o Options) subRequest(req *httpclient.Request) (*httpclient.Response, error) {
	if o.Client == nil {
		return nil, fmt.Errorf("networking is not available")
	}
	timeout := o.HTTPTimeout
	if timeout <= 0 {
		timeout = o.Client.Timeout()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return o.Client.Dispatch(ctx, req)
}

func registerNetwork(vm *goja.Runtime, opts Options) {
	_ = vm.Set("http_get", func(call goja.FunctionCall) goja.Value {
		rawURL, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		resp, err := opts.subRequest(httpclient.NewRequest("GET", rawURL))
		if err != nil {
			opts.warn(fmt.Sprintf("http_get %s: %v", rawURL, err))
			return vm.ToValue("")
		}
		return vm.ToValue(resp.BodyString())
	})

	_ = vm.Set("http_get_bytes", func(call goja.FunctionCall) goja.Value {
		rawURL, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		resp, err := opts.subRequest(httpclient.NewRequest("GET", rawURL))
		if err != nil {
			opts.warn(fmt.Sprintf("http_get_bytes %s: %v", rawURL, err))
			return vm.ToValue("")
		}
		return vm.ToValue(base64.StdEncoding.EncodeToString(resp.Body))
	})

	_ = vm.Set("http_post", func(call goja.FunctionCall) goja.Value {
		rawURL, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		body, _ := stringArg(call, 1)
		req := httpclient.NewRequest("POST", rawURL)
		req.Header.Set("Content-Type", "application/json")
		req.Body = body
		resp, err := opts.subRequest(req)
		if err != nil {
			opts.warn(fmt.Sprintf("http_post %s: %v", rawURL, err))
			return vm.ToValue("")
		}
		return vm.ToValue(resp.BodyString())
	})

	// http_request(url, method[, body[, headers]]) -> {status, headers, body[, error]}
	_ = vm.Set("http_request", func(call goja.FunctionCall) goja.Value {
		rawURL, ok := stringArg(call, 0)
		if !ok {
			return goja.Undefined()
		}
		method, ok := stringArg(call, 1)
		if !ok {
			method = "GET"
		}

		req := httpclient.NewRequest(method, rawURL)
		switch req.Method {
		case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS":
		default:
			req.Method = "GET"
		}

		if body, ok := stringArg(call, 2); ok && req.Method != "GET" {
			req.Body = body
		}
		if len(call.Arguments) > 3 {
			if headers, ok := call.Arguments[3].Export().(map[string]interface{}); ok {
				for name, value := range headers {
					if s, ok := scriptruntime.ScalarToString(value); ok {
						req.Header.Set(name, s)
					}
				}
			}
		}

		resp, err := opts.subRequest(req)
		if err != nil {
			opts.warn(fmt.Sprintf("http_request %s %s: %v", req.Method, rawURL, err))
			return vm.ToValue(map[string]interface{}{
				"status":  int64(0),
				"headers": map[string]string{},
				"body":    "",
				"error":   err.Error(),
			})
		}
		return vm.ToValue(map[string]interface{}{
			"status":  int64(resp.StatusCode),
			"headers": resp.Header.Map(),
			"body":    resp.BodyString(),
		})
	})
}
