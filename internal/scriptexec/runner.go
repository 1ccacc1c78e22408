// Package scriptexec runs pre-request and post-response scripts in an
// embedded JavaScript engine. Every invocation gets a fresh runtime wired
// with the request/response views, the shared variable map and the host
// function catalog, so state never leaks between scripts except through
// the variable store.
package scriptexec

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"apitest/internal/envstore"
	"apitest/internal/hostfuncs"
	"apitest/internal/httpclient"
	"apitest/internal/scriptlog"
	"apitest/internal/scriptruntime"
)

// ErrorKind classifies how a script failed.
type ErrorKind string

const (
	ErrSyntax  ErrorKind = "syntax"
	ErrRuntime ErrorKind = "runtime"
	ErrType    ErrorKind = "type"
)

// ScriptError reports a failed script invocation. Kind separates scripts
// that never ran (syntax) from scripts that threw (runtime) and scripts
// whose request mutations could not be applied (type).
type ScriptError struct {
	Kind     ErrorKind
	Message  string
	Location string
}

func (e *ScriptError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s error at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Runner executes scripts against a shared client, log buffer and variable
// store. The zero value runs scripts without networking or logging.
type Runner struct {
	// Client serves the script's http_* calls.
	Client *httpclient.Client

	// Logs receives console output and host warnings. Nil drops them.
	Logs *scriptlog.Buffer

	// WorkDir confines the script's file access.
	WorkDir string

	// HTTPTimeout bounds each http_* sub-request a script makes.
	HTTPTimeout time.Duration
}

// Invocation describes one script execution.
type Invocation struct {
	Stage  scriptruntime.Stage
	Name   string
	Script string

	// Request is bound as the mutable request view. In the pre-request
	// stage its mutations are written back after a successful run.
	Request *httpclient.Request

	// Response is bound read-only in the post-response stage.
	Response *httpclient.Response

	// Vars is the shared variable store. Mutations the script made are
	// merged back even when it failed part way through.
	Vars *envstore.Store
}

// Run executes one script. An empty or whitespace-only script is a no-op.
func (r *Runner) Run(inv Invocation) *ScriptError {
	if strings.TrimSpace(inv.Script) == "" {
		return nil
	}

	source := r.sourceLabel(inv)

	prog, err := goja.Compile(string(inv.Stage), inv.Script, false)
	if err != nil {
		serr := &ScriptError{Kind: ErrSyntax, Message: err.Error(), Location: syntaxLocation(inv.Stage, err)}
		r.log("error", source, serr.Message)
		return serr
	}

	vm := goja.New()

	var seed, vars map[string]string
	if inv.Vars != nil {
		seed = inv.Vars.Snapshot()
		vars = inv.Vars.Snapshot()
	} else {
		seed = map[string]string{}
		vars = map[string]string{}
	}
	_ = vm.Set("vars", vars)

	_ = vm.Set("getVar", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		if val, ok := vars[call.Arguments[0].String()]; ok {
			return vm.ToValue(val)
		}
		return goja.Undefined()
	})

	_ = vm.Set("setVar", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		vars[call.Arguments[0].String()] = call.Arguments[1].String()
		return goja.Undefined()
	})

	var requestView map[string]interface{}
	if inv.Request != nil {
		requestView = scriptruntime.RequestView(inv.Request)
		_ = vm.Set("request", requestView)
	}
	if inv.Stage == scriptruntime.StagePostResponse && inv.Response != nil {
		_ = vm.Set("response", scriptruntime.ResponseView(inv.Response))
	}

	console := vm.NewObject()
	for _, pair := range [][2]string{{"log", "info"}, {"info", "info"}, {"warn", "warn"}, {"error", "error"}} {
		level := pair[1]
		_ = console.Set(pair[0], func(call goja.FunctionCall) goja.Value {
			r.log(level, source, scriptruntime.BuildMessage(call.Arguments))
			return goja.Undefined()
		})
	}
	_ = vm.Set("console", console)

	hostfuncs.Register(vm, hostfuncs.Options{
		Client:      r.Client,
		WorkDir:     r.WorkDir,
		HTTPTimeout: r.HTTPTimeout,
		Log: func(level, message string) {
			r.log(level, source, message)
		},
	})

	runErr := runProgram(vm, prog)

	// Variable writes made before a failure still count.
	if inv.Vars != nil {
		mergeVars(inv.Vars, seed, vars)
	}

	if runErr != nil {
		serr := &ScriptError{Kind: ErrRuntime, Message: runErr.Error()}
		if ex, ok := runErr.(*goja.Exception); ok {
			serr.Message = strings.TrimSpace(ex.Error())
		}
		r.log("error", source, serr.Message)
		return serr
	}

	if inv.Stage == scriptruntime.StagePreRequest && requestView != nil {
		if err := scriptruntime.ApplyRequest(requestView, inv.Request); err != nil {
			serr := &ScriptError{Kind: ErrType, Message: err.Error()}
			r.log("error", source, serr.Message)
			return serr
		}
	}
	return nil
}

func runProgram(vm *goja.Runtime, prog *goja.Program) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	_, err = vm.RunProgram(prog)
	return err
}

// mergeVars folds the script's changes back into the store without touching
// keys the script never wrote, so concurrent executions only clash on the
// keys they actually share.
func mergeVars(store *envstore.Store, before, after map[string]string) {
	for key, val := range after {
		if old, ok := before[key]; !ok || old != val {
			store.Set(key, val)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			store.Remove(key)
		}
	}
}

func (r *Runner) sourceLabel(inv Invocation) string {
	method, url := "", ""
	if inv.Request != nil {
		method, url = inv.Request.Method, inv.Request.URL
	}
	return scriptruntime.Source(inv.Stage, inv.Name, method, url)
}

func (r *Runner) log(level, source, message string) {
	if r.Logs != nil {
		r.Logs.Append(level, source, message)
	}
}

// syntaxLocation pulls the "Line N:M" marker out of a compile error so the
// caller can report where the script broke without reparsing the message.
func syntaxLocation(stage scriptruntime.Stage, err error) string {
	msg := err.Error()
	idx := strings.Index(msg, "Line ")
	if idx < 0 {
		return string(stage)
	}
	rest := msg[idx:]
	if end := strings.IndexByte(rest, ' '); end > 0 {
		if next := strings.IndexByte(rest[end+1:], ' '); next > 0 {
			rest = rest[:end+1+next]
		}
	}
	return fmt.Sprintf("%s: %s", stage, strings.TrimRight(rest, " ,"))
}
