// Package execxtest provides a recording execx.Runner for tests.
package execxtest

import (
	"context"
	"sync"

	"github.com/go-ports/satelliz/internal/execx"
)

// Response is what the fake returns for a matching command.
type Response struct {
	Stdout string
	Err    error
}

// Runner records every command and answers from a table keyed by the
// rendered command line (execx.Cmd.String without Env).
type Runner struct {
	mu        sync.Mutex
	Calls     []execx.Cmd
	Responses map[string]Response
	// Fallback answers commands not present in Responses.
	Fallback func(execx.Cmd) Response
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{Responses: make(map[string]Response)}
}

// On registers a response for the given command line.
func (r *Runner) On(line string, resp Response) *Runner {
	r.Responses[line] = resp
	return r
}

// Run implements execx.Runner.
func (r *Runner) Run(_ context.Context, c execx.Cmd) error {
	return r.answer(c).Err
}

// Capture implements execx.Runner.
func (r *Runner) Capture(_ context.Context, c execx.Cmd) (string, error) {
	resp := r.answer(c)
	return resp.Stdout, resp.Err
}

// Lines returns the rendered command lines in call order.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}

func (r *Runner) answer(c execx.Cmd) Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
	if resp, ok := r.Responses[c.String()]; ok {
		return resp
	}
	if r.Fallback != nil {
		return r.Fallback(c)
	}
	return Response{}
}
