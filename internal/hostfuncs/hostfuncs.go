// The host function catalog callable from scripts. Each function exposes one
// narrow effect; the set of names and signatures is a fixed contract with
// saved scripts. Failures inside a host function come back to the script as
// error values (null, "", false or an error field), never as a host fault.

package hostfuncs

import (
	"os"
	"time"

	"github.com/dop251/goja"

	"apitest/internal/httpclient"
)

// Options wires the capabilities host functions are allowed to touch.
type Options struct {
	// Client serves http_get/http_post/http_request. Required for the
	// networking functions; when nil they report an error value.
	Client *httpclient.Client

	// Log receives console output and host-function warnings. Nil drops it.
	Log func(level, message string)

	// WorkDir confines file functions; paths outside it are rejected.
	// Empty means the process working directory.
	WorkDir string

	// HTTPTimeout bounds each http_* sub-request. Zero falls back to the
	// client's own timeout.
	HTTPTimeout time.Duration
}

func (o Options) log(level, message string) {
	if o.Log != nil {
		o.Log(level, message)
	}
}

func (o Options) warn(message string) {
	o.log("warn", message)
}

func (o Options) workDir() string {
	if o.WorkDir != "" {
		return o.WorkDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Register installs the full catalog onto vm.
func Register(vm *goja.Runtime, opts Options) {
	registerCrypto(vm)
	registerEncoding(vm, opts)
	registerJSON(vm, opts)
	registerUtility(vm, opts)
	registerFile(vm, opts)
	registerNetwork(vm, opts)
}

// Names enumerates the catalog. Adding or renaming an entry is a breaking
// change for saved scripts.
func Names() []string {
	return []string{
		"md5", "sha256", "sha512", "hmac_sha256",
		"base64_encode", "base64_decode",
		"url_encode", "url_decode",
		"hex_encode", "hex_decode",
		"parse_json", "to_json", "json_stringify", "is_valid_json",
		"random", "random_string", "timestamp", "timestamp_ms", "uuid", "console_log",
		"read_file", "write_file", "append_file",
		"file_exists", "delete_file",
		"read_file_bytes", "write_file_bytes",
		"create_dir", "list_files",
		"http_get", "http_get_bytes", "http_post", "http_request",
	}
}

func stringArg(call goja.FunctionCall, i int) (string, bool) {
	if i >= len(call.Arguments) {
		return "", false
	}
	return call.Arguments[i].String(), true
}
