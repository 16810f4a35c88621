// Package shared holds the context passed to all CLI commands.
package shared

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/go-ports/satelliz/internal/config"
	"github.com/go-ports/satelliz/internal/dispatch"
	"github.com/go-ports/satelliz/internal/execx"
	"github.com/go-ports/satelliz/internal/logging"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// ComposeFile overrides the compose file (default: docker-compose.yml).
	ComposeFile string
	// Machine selects the docker-machine host; wins over the
	// use-docker-machine directive.
	Machine string
	// SettingsPath overrides the settings file location.
	SettingsPath string
	LogLevel     string
	DryRun       bool

	// Runner executes external commands. Nil means execx.NewExec().
	Runner execx.Runner
}

// Settings resolves the effective settings for this invocation.
func (c *Context) Settings() (*config.Settings, error) {
	path := c.SettingsPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Resolve(path, config.Overrides{
		ComposeFile: c.ComposeFile,
		Machine:     c.Machine,
		LogLevel:    c.LogLevel,
	})
}

// Logger returns the CLI logger writing to w.
func (c *Context) Logger(w io.Writer, s *config.Settings) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return logging.New(w, s.LogLevel)
}

// Dispatcher builds a dispatcher from the resolved settings.
// Diagnostics and dry-run output go to errOut.
func (c *Context) Dispatcher(errOut io.Writer) (*dispatch.Dispatcher, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	runner := c.Runner
	if runner == nil {
		runner = execx.NewExec()
	}
	d := dispatch.New(dispatch.Config{
		ComposeFile:    s.ComposeFile,
		Machine:        s.CallTimeMachine(),
		DefaultMachine: s.DefaultMachine(),
		DryRun:         c.DryRun,
		Settings:       s,
	}, runner, c.Logger(errOut, s))
	if errOut != nil {
		d.DryRunOut = errOut
	}
	return d, nil
}
