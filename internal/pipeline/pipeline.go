// Package pipeline orchestrates one test item: build the request from its
// configuration, run the pre-request script, dispatch, run the post-response
// script and emit the item's result. A failure in one phase never bleeds
// into sibling items; only invalid configuration stops an item before
// anything is dispatched.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"apitest/internal/envstore"
	"apitest/internal/httpclient"
	"apitest/internal/scriptexec"
	"apitest/internal/scriptruntime"
	"apitest/internal/templating"
	"apitest/internal/varcapture"
)

// Item is the stored configuration of one request.
type Item struct {
	Name       string
	Method     string
	URL        string
	Headers    map[string]string
	Params     map[string]string
	Body       string
	PreScript  string
	PostScript string

	// Capture flattens a JSON response body into the variable store under
	// the item name before the post script runs.
	Capture bool

	// Timeout overrides the client default for this item only.
	Timeout time.Duration
}

// ConfigError reports an item that cannot be dispatched at all.
type ConfigError struct {
	Item  string
	Field string
}

func (e *ConfigError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("item %q: missing required field %q", e.Item, e.Field)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Validate reports the first missing required field.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Method) == "" {
		return &ConfigError{Item: it.Name, Field: "method"}
	}
	if strings.TrimSpace(it.URL) == "" {
		return &ConfigError{Item: it.Name, Field: "url"}
	}
	return nil
}

// Phases a diagnostic can point at.
const (
	PhasePre      = "pre-script"
	PhaseDispatch = "dispatch"
	PhasePost     = "post-script"
)

// Diagnostic records one phase failure with enough detail for a report even
// when the HTTP exchange never happened.
type Diagnostic struct {
	Phase    string
	Kind     string
	Message  string
	Location string
}

func (d Diagnostic) String() string {
	if d.Location != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", d.Phase, d.Kind, d.Message, d.Location)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Phase, d.Kind, d.Message)
}

// Result is the outcome of one item execution.
type Result struct {
	Item    string
	Request *httpclient.Request

	// Response is set when dispatch succeeded, even if the post script
	// later failed. Err is set when the pre script or dispatch failed.
	Response *httpclient.Response
	Err      error

	Vars        map[string]string
	Diagnostics []Diagnostic
}

// Failed reports whether the item needs attention: it never dispatched,
// transport failed, a script phase failed, or the server answered >= 400.
func (r *Result) Failed() bool {
	if r.Err != nil || len(r.Diagnostics) > 0 {
		return true
	}
	return r.Response != nil && r.Response.StatusCode >= 400
}

// Pipeline executes items against a shared client and variable store.
// Responses of named items are retained so later items can reference them
// in placeholders. Execute is safe for concurrent use only when items do
// not rely on the named response store.
type Pipeline struct {
	Client *httpclient.Client
	Runner *scriptexec.Runner
	Vars   *envstore.Store

	responses *responseStore
}

// New wires a pipeline. runner may share the client; vars may be pre-seeded.
func New(client *httpclient.Client, runner *scriptexec.Runner, vars *envstore.Store) *Pipeline {
	if client == nil {
		client = httpclient.New()
	}
	if runner == nil {
		runner = &scriptexec.Runner{Client: client}
	}
	if vars == nil {
		vars = envstore.New()
	}
	return &Pipeline{
		Client:    client,
		Runner:    runner,
		Vars:      vars,
		responses: newResponseStore(),
	}
}

// Execute runs one item through pre script, dispatch and post script.
// A ConfigError is returned directly; every other failure lands in the
// Result so sibling items keep running.
func (p *Pipeline) Execute(ctx context.Context, item Item) (*Result, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	vars := p.Vars.Snapshot()
	responses := p.responses.snapshot()

	req := httpclient.NewRequest(item.Method, templating.Resolve(item.URL, vars, responses))
	for name, value := range item.Headers {
		req.Header.Set(name, templating.Resolve(value, vars, responses))
	}
	req.Params = templating.ResolveMap(item.Params, vars, responses)
	req.Body = templating.Resolve(item.Body, vars, responses)

	result := &Result{Item: item.Name, Request: req}

	if serr := p.Runner.Run(scriptexec.Invocation{
		Stage:   scriptruntime.StagePreRequest,
		Name:    item.Name,
		Script:  item.PreScript,
		Request: req,
		Vars:    p.Vars,
	}); serr != nil {
		// Never send a request a failed script may have half-mutated.
		result.Err = serr
		result.Diagnostics = append(result.Diagnostics, scriptDiagnostic(PhasePre, serr))
		result.Vars = p.Vars.Snapshot()
		return result, nil
	}

	dispatchCtx := ctx
	if item.Timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, item.Timeout)
		defer cancel()
	}

	resp, err := p.Client.Dispatch(dispatchCtx, req)
	if err != nil {
		result.Err = err
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Phase:   PhaseDispatch,
			Kind:    "transport",
			Message: err.Error(),
		})
		result.Vars = p.Vars.Snapshot()
		return result, nil
	}
	result.Response = resp
	if item.Name != "" {
		p.responses.put(item.Name, resp)
	}
	if item.Capture {
		varcapture.Capture(p.Vars, item.Name, resp.BodyString())
	}

	if serr := p.Runner.Run(scriptexec.Invocation{
		Stage:    scriptruntime.StagePostResponse,
		Name:     item.Name,
		Script:   item.PostScript,
		Request:  req,
		Response: resp,
		Vars:     p.Vars,
	}); serr != nil {
		// The response already arrived; the failure is reported alongside it.
		result.Diagnostics = append(result.Diagnostics, scriptDiagnostic(PhasePost, serr))
	}

	result.Vars = p.Vars.Snapshot()
	return result, nil
}

// RunAll executes items in order. Configuration is checked up front so a
// broken collection fails before any request is sent. Cancellation is
// honored between items; results up to that point are returned.
func (p *Pipeline) RunAll(ctx context.Context, items []Item) ([]*Result, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	results := make([]*Result, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result, err := p.Execute(ctx, item)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func scriptDiagnostic(phase string, serr *scriptexec.ScriptError) Diagnostic {
	return Diagnostic{
		Phase:    phase,
		Kind:     string(serr.Kind),
		Message:  serr.Message,
		Location: serr.Location,
	}
}
