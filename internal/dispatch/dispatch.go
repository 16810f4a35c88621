// Package dispatch translates satelliz command aliases into docker and
// docker-compose invocations and runs them against the selected machine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-ports/satelliz/internal/composefile"
	"github.com/go-ports/satelliz/internal/config"
	"github.com/go-ports/satelliz/internal/directive"
	"github.com/go-ports/satelliz/internal/execx"
	"github.com/go-ports/satelliz/internal/machine"
)

// ConfigurationError reports a compose file that does not exist.
type ConfigurationError struct {
	Path string
}

func (e *ConfigurationError) Error() string {
	return "Compose file not found " + e.Path
}

// ErrUsage is returned for alias invocations with missing arguments.
var ErrUsage = errors.New("usage")

// Config is the call-time configuration of a Dispatcher.
type Config struct {
	ComposeFile string
	// Machine is the call-time machine; it beats the use-docker-machine
	// directive.
	Machine string
	// DefaultMachine applies only when neither Machine nor the directive
	// names one.
	DefaultMachine string
	DryRun         bool
	Settings       *config.Settings
}

// Plan is the resolved compose context of a single invocation.
type Plan struct {
	// Files is the compose chain in -f order.
	Files      []string
	Machine    string
	Directives directive.Directives
}

// ComposeFlags returns one "-f <file>" pair per compose file.
func (p Plan) ComposeFlags() []string {
	flags := make([]string, 0, 2*len(p.Files))
	for _, f := range p.Files {
		flags = append(flags, "-f", f)
	}
	return flags
}

// Dispatcher runs aliases.
type Dispatcher struct {
	cfg      Config
	runner   execx.Runner
	resolver *machine.Resolver
	log      zerolog.Logger
	// DryRunOut receives "+ <command>" lines in dry-run mode.
	DryRunOut io.Writer
	// Environ supplies the base child environment.
	Environ func() []string
}

// New returns a Dispatcher. A nil Settings in cfg means config.Default().
func New(cfg Config, runner execx.Runner, log zerolog.Logger) *Dispatcher {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	return &Dispatcher{
		cfg:    cfg,
		runner: runner,
		resolver: &machine.Resolver{
			Runner:    runner,
			Bin:       cfg.Settings.MachineBin,
			DockerBin: cfg.Settings.DockerBin,
		},
		log:       log,
		DryRunOut: os.Stderr,
		Environ:   os.Environ,
	}
}

// Resolve locates the compose file, reads its directives and settles the
// compose chain and machine.
func (d *Dispatcher) Resolve() (Plan, error) {
	target := d.cfg.ComposeFile
	if target == "" {
		target = config.DefaultComposeFile
	}
	if fi, err := os.Stat(target); err != nil || fi.IsDir() {
		return Plan{}, &ConfigurationError{Path: target}
	}

	res, err := directive.ScanFile(target)
	if err != nil {
		return Plan{}, err
	}
	for _, n := range res.Skipped {
		d.log.Debug().Str("file", target).Int("line", n).Msg("ignoring directive without value")
	}

	plan := Plan{Files: []string{target}, Machine: d.cfg.Machine, Directives: res.Directives}
	if plan.Machine == "" {
		plan.Machine = res.Directives.Machine()
	}
	if plan.Machine == "" {
		plan.Machine = d.cfg.DefaultMachine
	}
	if ov := res.Directives.Override(); ov != "" {
		plan.Files = append([]string{ov}, plan.Files...)
	}
	return plan, nil
}

// Do runs the alias in args[0] with the remaining words as its arguments.
// Commands run in order and the first failure aborts the rest.
func (d *Dispatcher) Do(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: an alias is required", ErrUsage)
	}
	plan, err := d.Resolve()
	if err != nil {
		return err
	}

	env, err := d.resolver.Resolve(ctx, plan.Machine)
	if err != nil {
		return err
	}
	environ := env.Apply(d.Environ())

	invs, err := d.commands(ctx, plan, environ, args)
	if err != nil {
		return err
	}

	if d.cfg.DryRun {
		for _, kv := range env.Assignments() {
			fmt.Fprintf(d.DryRunOut, "+ export %s\n", kv)
		}
		for _, inv := range invs {
			fmt.Fprintf(d.DryRunOut, "+ %s\n", d.cmd(plan, inv, environ))
		}
		return nil
	}

	d.banner(ctx, plan.Machine, environ)
	for _, inv := range invs {
		c := d.cmd(plan, inv, environ)
		d.log.Debug().Str("cmd", c.String()).Msg("run")
		if err := d.runner.Run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// commands expands the alias table, resolving getshell service names.
func (d *Dispatcher) commands(ctx context.Context, plan Plan, environ []string, args []string) ([]Invocation, error) {
	invs, err := Commands(args)
	if err != nil {
		return nil, err
	}
	if args[0] != AliasGetShell || d.cfg.DryRun {
		return invs, nil
	}

	target := args[1]
	ok, err := composefile.HasService(target, plan.Files...)
	if err != nil {
		d.log.Debug().Err(err).Str("target", target).Msg("compose service lookup failed, using it as a container id")
		return invs, nil
	}
	if !ok {
		return invs, nil
	}
	id, err := d.containerFor(ctx, plan, environ, target)
	if err != nil {
		return nil, err
	}
	return Commands([]string{AliasGetShell, id})
}

func (d *Dispatcher) containerFor(ctx context.Context, plan Plan, environ []string, service string) (string, error) {
	c := d.cmd(plan, Invocation{Args: []string{"ps", "-q", service}}, environ)
	out, err := d.runner.Capture(ctx, c)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("service %s has no running container", service)
}

// cmd turns an invocation into a concrete command for plan.
func (d *Dispatcher) cmd(plan Plan, inv Invocation, environ []string) execx.Cmd {
	if inv.Direct {
		return execx.Cmd{Name: d.cfg.Settings.DockerBin, Args: inv.Args, Env: environ}
	}
	name, lead := d.cfg.Settings.ComposeArgv()
	args := make([]string, 0, len(lead)+2*len(plan.Files)+len(inv.Args))
	args = append(args, lead...)
	args = append(args, plan.ComposeFlags()...)
	args = append(args, inv.Args...)
	return execx.Cmd{Name: name, Args: args, Env: environ}
}

func (d *Dispatcher) banner(ctx context.Context, machineName string, environ []string) {
	name, err := d.resolver.HostName(ctx, environ)
	if err != nil {
		d.log.Debug().Err(err).Msg("docker info failed")
	}
	d.log.Info().Msgf("working on %s (%s)", name, machineName)
}
