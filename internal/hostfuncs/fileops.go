package hostfuncs

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
)

// resolvePath confines a script-supplied path to the working directory.
// Relative paths resolve against it; anything escaping it is rejected.
func (o Options) resolvePath(path string) (string, bool) {
	root := o.workDir()
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

func registerFile(vm *goja.Runtime, opts Options) {
	resolve := func(call goja.FunctionCall, fn string) (string, bool) {
		raw, ok := stringArg(call, 0)
		if !ok {
			return "", false
		}
		path, ok := opts.resolvePath(raw)
		if !ok {
			opts.warn(fmt.Sprintf("%s: path %q escapes the working directory", fn, raw))
			return "", false
		}
		return path, true
	}

	_ = vm.Set("read_file", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "read_file")
		if !ok {
			return vm.ToValue("")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			opts.warn(fmt.Sprintf("read_file: %v", err))
			return vm.ToValue("")
		}
		return vm.ToValue(string(data))
	})

	_ = vm.Set("write_file", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "write_file")
		if !ok {
			return vm.ToValue(false)
		}
		content, _ := stringArg(call, 1)
		return vm.ToValue(writeFile(opts, path, []byte(content), false))
	})

	_ = vm.Set("append_file", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "append_file")
		if !ok {
			return vm.ToValue(false)
		}
		content, _ := stringArg(call, 1)
		return vm.ToValue(writeFile(opts, path, []byte(content), true))
	})

	_ = vm.Set("file_exists", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "file_exists")
		if !ok {
			return vm.ToValue(false)
		}
		_, err := os.Stat(path)
		return vm.ToValue(err == nil)
	})

	_ = vm.Set("delete_file", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "delete_file")
		if !ok {
			return vm.ToValue(false)
		}
		if err := os.Remove(path); err != nil {
			opts.warn(fmt.Sprintf("delete_file: %v", err))
			return vm.ToValue(false)
		}
		return vm.ToValue(true)
	})

	_ = vm.Set("read_file_bytes", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "read_file_bytes")
		if !ok {
			return vm.ToValue("")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			opts.warn(fmt.Sprintf("read_file_bytes: %v", err))
			return vm.ToValue("")
		}
		return vm.ToValue(base64.StdEncoding.EncodeToString(data))
	})

	_ = vm.Set("write_file_bytes", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "write_file_bytes")
		if !ok {
			return vm.ToValue(false)
		}
		encoded, _ := stringArg(call, 1)
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			opts.warn(fmt.Sprintf("write_file_bytes: %v", err))
			return vm.ToValue(false)
		}
		return vm.ToValue(writeFile(opts, path, data, false))
	})

	_ = vm.Set("create_dir", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "create_dir")
		if !ok {
			return vm.ToValue(false)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			opts.warn(fmt.Sprintf("create_dir: %v", err))
			return vm.ToValue(false)
		}
		return vm.ToValue(true)
	})

	_ = vm.Set("list_files", func(call goja.FunctionCall) goja.Value {
		path, ok := resolve(call, "list_files")
		if !ok {
			return vm.ToValue([]string{})
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			opts.warn(fmt.Sprintf("list_files: %v", err))
			return vm.ToValue([]string{})
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return vm.ToValue(names)
	})
}

// writeFile writes or appends content, creating parent directories first.
func writeFile(opts Options, path string, content []byte, appendMode bool) bool {
	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			opts.warn(fmt.Sprintf("creating %s: %v", parent, err))
			return false
		}
	}
	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		opts.warn(fmt.Sprintf("opening %s: %v", path, err))
		return false
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		opts.warn(fmt.Sprintf("writing %s: %v", path, err))
		return false
	}
	return true
}
