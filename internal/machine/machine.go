// Package machine resolves the docker environment of a (possibly remote)
// docker-machine host.
package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yalp/jsonpath"
	"mvdan.cc/sh/v3/shell"

	"github.com/go-ports/satelliz/internal/execx"
)

// Reset is the sentinel passed to `docker-machine env` to unset any
// previously selected host.
const Reset = "-u"

const swarmPrefix = "swarm@"

// Args turns a machine identifier into docker-machine env arguments.
// "swarm@<name>" becomes "--swarm <name>".
func Args(machine string) []string {
	if name, ok := strings.CutPrefix(machine, swarmPrefix); ok {
		return []string{"--swarm", name}
	}
	return []string{machine}
}

// Env is a set of environment changes produced by docker-machine.
type Env struct {
	Set   map[string]string
	Unset []string
}

// Merge applies next on top of e. A key set by next is no longer unset and a
// key unset by next is no longer set.
func (e Env) Merge(next Env) Env {
	out := Env{Set: make(map[string]string, len(e.Set)+len(next.Set))}
	for k, v := range e.Set {
		out.Set[k] = v
	}
	unset := make(map[string]struct{})
	for _, k := range e.Unset {
		unset[k] = struct{}{}
	}
	for _, k := range next.Unset {
		delete(out.Set, k)
		unset[k] = struct{}{}
	}
	for k, v := range next.Set {
		delete(unset, k)
		out.Set[k] = v
	}
	for k := range unset {
		out.Unset = append(out.Unset, k)
	}
	sort.Strings(out.Unset)
	return out
}

// Assignments returns the KEY=VALUE pairs of e sorted by key.
func (e Env) Assignments() []string {
	keys := make([]string, 0, len(e.Set))
	for k := range e.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.Set[k])
	}
	return out
}

// Apply returns base with unset keys removed and set keys added or replaced.
func (e Env) Apply(base []string) []string {
	drop := make(map[string]struct{}, len(e.Unset)+len(e.Set))
	for _, k := range e.Unset {
		drop[k] = struct{}{}
	}
	for k := range e.Set {
		drop[k] = struct{}{}
	}
	out := make([]string, 0, len(base)+len(e.Set))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := drop[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	return append(out, e.Assignments()...)
}

// ParseEnv reads docker-machine env output. Blank and comment lines are
// dropped. Each remaining line is split with POSIX shell quoting rules, so
// backslashes inside double quotes survive unless they escape $ ` " or \.
// export, unset, fish set -gx/-e and bare KEY=VALUE lines are understood;
// anything else, including lines that do not lex, is ignored.
func ParseEnv(out string) Env {
	env := Env{Set: make(map[string]string)}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words, err := shell.Fields(strings.TrimSuffix(line, ";"), noEnv)
		if err != nil || len(words) == 0 {
			continue
		}
		switch words[0] {
		case "unset":
			for _, k := range words[1:] {
				env.unset(k)
			}
		case "set":
			switch {
			case len(words) == 4 && words[1] == "-gx":
				env.Set[words[2]] = words[3]
			case len(words) == 3 && words[1] == "-e":
				env.unset(words[2])
			}
		case "export":
			env.assign(words[1:])
		default:
			env.assign(words)
		}
	}
	return env
}

// noEnv keeps the caller's environment out of the expansion of
// docker-machine output.
func noEnv(string) string { return "" }

func (e *Env) unset(k string) {
	delete(e.Set, k)
	e.Unset = append(e.Unset, k)
}

// assign applies words only when every word is a KEY=VALUE assignment.
func (e *Env) assign(words []string) {
	kvs := make([][2]string, 0, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		if !ok || k == "" {
			return
		}
		kvs = append(kvs, [2]string{k, v})
	}
	for _, kv := range kvs {
		e.Set[kv[0]] = kv[1]
	}
}

// Resolver queries docker-machine and docker.
type Resolver struct {
	Runner execx.Runner
	// Bin is the docker-machine binary.
	Bin string
	// DockerBin is the docker binary used by HostName.
	DockerBin string
}

// Env runs `docker-machine env` for a single machine identifier.
func (r *Resolver) Env(ctx context.Context, machine string) (Env, error) {
	args := append([]string{"env", "--shell", "bash"}, Args(machine)...)
	out, err := r.Runner.Capture(ctx, execx.Cmd{Name: r.Bin, Args: args})
	if err != nil {
		return Env{}, err
	}
	return ParseEnv(out), nil
}

// Resolve always resets the environment first, then layers the named
// machine's environment on top. An empty machine yields only the reset.
func (r *Resolver) Resolve(ctx context.Context, machine string) (Env, error) {
	env, err := r.Env(ctx, Reset)
	if err != nil {
		return Env{}, fmt.Errorf("reset docker environment: %w", err)
	}
	if machine == "" {
		return env, nil
	}
	next, err := r.Env(ctx, machine)
	if err != nil {
		return Env{}, fmt.Errorf("machine %s: %w", machine, err)
	}
	return env.Merge(next), nil
}

// HostName asks the docker daemon selected by environ for its name.
func (r *Resolver) HostName(ctx context.Context, environ []string) (string, error) {
	out, err := r.Runner.Capture(ctx, execx.Cmd{
		Name: r.DockerBin,
		Args: []string{"info", "--format", "{{json .}}"},
		Env:  environ,
	})
	if err != nil {
		return "", err
	}
	var info any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return "", fmt.Errorf("decode docker info: %w", err)
	}
	name, err := jsonpath.Read(info, "$.Name")
	if err != nil {
		return "", fmt.Errorf("docker info: %w", err)
	}
	s, _ := name.(string)
	return s, nil
}
