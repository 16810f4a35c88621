// End-to-end tests that drive the satelliz root command in-process. External
// programs are served by a recording runner so no docker tooling is needed.
package rootcmd_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	rootcmd "github.com/go-ports/satelliz/cmd/satelliz/root"
	"github.com/go-ports/satelliz/internal/config"
	"github.com/go-ports/satelliz/internal/dispatch"
	"github.com/go-ports/satelliz/internal/execx"
	"github.com/go-ports/satelliz/internal/execx/execxtest"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type result struct {
	stdout string
	stderr string
	err    error
}

// project creates a compose file in a temp dir and isolates settings.
func project(c *qt.C, compose string) (dir, file string) {
	c.Helper()
	dir = c.TempDir()
	file = filepath.Join(dir, "docker-compose.yml")
	c.Assert(os.WriteFile(file, []byte(compose), 0o600), qt.IsNil)
	c.Setenv(config.EnvHome, filepath.Join(dir, "home"))
	c.Setenv(config.EnvComposeFile, "")
	c.Setenv(config.EnvMachine, "")
	c.Setenv(config.EnvLogLevel, "")
	return dir, file
}

// writeHomeSettings writes the settings file that project points
// SATELLIZ_HOME at.
func writeHomeSettings(c *qt.C, dir, content string) {
	c.Helper()
	home := filepath.Join(dir, "home")
	c.Assert(os.MkdirAll(home, 0o755), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o600), qt.IsNil)
}

func runCmd(fake *execxtest.Runner, args ...string) result {
	var stdout, stderr bytes.Buffer
	var runner execx.Runner
	if fake != nil {
		runner = fake
	}
	root := rootcmd.NewWithRunner(runner)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// ---------------------------------------------------------------------------
// Help
// ---------------------------------------------------------------------------

func TestHelp_HappyPath(t *testing.T) {
	c := qt.New(t)

	res := runCmd(nil, "--help")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "satelliz")
	c.Assert(res.stdout, qt.Contains, "--machine")

	res = runCmd(nil, "do", "--help")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "pullup [services...]")
}

// ---------------------------------------------------------------------------
// do
// ---------------------------------------------------------------------------

func TestDo_DryRun(t *testing.T) {
	c := qt.New(t)
	_, file := project(c, "# @satelliz-use-override: ov.yml\n")

	fake := execxtest.New()
	res := runCmd(fake, "--dry-run", "-c", file, "do", "pullup", "web")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stderr, qt.Equals,
		"+ docker-compose -f ov.yml -f "+file+" pull web\n"+
			"+ docker-compose -f ov.yml -f "+file+" up -d web\n")
	c.Assert(fake.Lines(), qt.DeepEquals, []string{"docker-machine env --shell bash -u"})
}

func TestDo_PassesFlagsAfterAlias(t *testing.T) {
	c := qt.New(t)
	_, file := project(c, "")

	fake := execxtest.New()
	res := runCmd(fake, "-c", file, "--log-level", "off", "do", "logs", "-f", "--tail", "10", "web")
	c.Assert(res.err, qt.IsNil)
	lines := fake.Lines()
	c.Assert(lines[len(lines)-1], qt.Equals, "docker-compose -f "+file+" logs -f --tail 10 web")
}

func TestDo_MachineFlag(t *testing.T) {
	c := qt.New(t)
	_, file := project(c, "# @satelliz-use-docker-machine: host1\n")

	fake := execxtest.New()
	res := runCmd(fake, "--dry-run", "-c", file, "-m", "swarm@prod", "do", "ps")
	c.Assert(res.err, qt.IsNil)
	c.Assert(fake.Lines(), qt.DeepEquals, []string{
		"docker-machine env --shell bash -u",
		"docker-machine env --shell bash --swarm prod",
	})
}

func TestDo_SettingsMachineRanksBelowDirective(t *testing.T) {
	c := qt.New(t)

	c.Run("directive wins over settings file", func(c *qt.C) {
		dir, file := project(c, "# @satelliz-use-docker-machine: host1\n")
		writeHomeSettings(c, dir, "machine: host9\n")
		fake := execxtest.New()
		res := runCmd(fake, "--dry-run", "-c", file, "do", "ps")
		c.Assert(res.err, qt.IsNil)
		c.Assert(fake.Lines(), qt.DeepEquals, []string{
			"docker-machine env --shell bash -u",
			"docker-machine env --shell bash host1",
		})
	})

	c.Run("settings file applies without directive", func(c *qt.C) {
		dir, file := project(c, "services: {}\n")
		writeHomeSettings(c, dir, "machine: host9\n")
		fake := execxtest.New()
		res := runCmd(fake, "--dry-run", "-c", file, "do", "ps")
		c.Assert(res.err, qt.IsNil)
		c.Assert(fake.Lines()[1], qt.Equals, "docker-machine env --shell bash host9")
	})

	c.Run("env var wins over directive", func(c *qt.C) {
		_, file := project(c, "# @satelliz-use-docker-machine: host1\n")
		c.Setenv(config.EnvMachine, "host7")
		fake := execxtest.New()
		res := runCmd(fake, "--dry-run", "-c", file, "do", "ps")
		c.Assert(res.err, qt.IsNil)
		c.Assert(fake.Lines()[1], qt.Equals, "docker-machine env --shell bash host7")
	})
}

func TestDo_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("missing compose file", func(c *qt.C) {
		dir, _ := project(c, "")
		fake := execxtest.New()
		res := runCmd(fake, "-c", filepath.Join(dir, "missing.yml"), "do", "ps")
		var ce *dispatch.ConfigurationError
		c.Assert(errors.As(res.err, &ce), qt.IsTrue)
		c.Assert(fake.Calls, qt.HasLen, 0)
	})

	c.Run("alias is required", func(c *qt.C) {
		res := runCmd(execxtest.New(), "do")
		c.Assert(res.err, qt.ErrorMatches, ".*requires at least 1 arg.*")
	})

	c.Run("exit code of failing command is kept", func(c *qt.C) {
		_, file := project(c, "")
		fake := execxtest.New().On("docker-compose -f "+file+" up -d", execxtest.Response{
			Err: &execx.ExternalCommandError{Code: 2},
		})
		res := runCmd(fake, "--log-level", "off", "-c", file, "do", "up", "-d")
		c.Assert(execx.ExitCode(res.err), qt.Equals, 2)
	})
}

// ---------------------------------------------------------------------------
// docker
// ---------------------------------------------------------------------------

func TestDocker_HappyPath(t *testing.T) {
	c := qt.New(t)
	_, file := project(c, "")

	res := runCmd(execxtest.New(), "--dry-run", "-c", file, "docker", "system", "df", "-v")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stderr, qt.Equals, "+ docker system df -v\n")
}

// ---------------------------------------------------------------------------
// directives
// ---------------------------------------------------------------------------

func TestDirectives_HappyPath(t *testing.T) {
	c := qt.New(t)
	_, file := project(c, "# @satelliz-use-override: ov.yml\n# @satelliz-use-docker-machine: host1\n")

	res := runCmd(nil, "-c", file, "directives")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "use-override: ov.yml")
	c.Assert(res.stdout, qt.Contains, "use-docker-machine: host1")
	c.Assert(res.stdout, qt.Contains, "machine: host1")
	c.Assert(res.stdout, qt.Contains, "- ov.yml\n    - "+file)
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfig_InitAndShow(t *testing.T) {
	c := qt.New(t)
	dir, _ := project(c, "")
	settings := filepath.Join(dir, "home", "config.yaml")

	res := runCmd(nil, "config", "init")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "Created "+settings)

	res = runCmd(nil, "config", "init")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "Use --force to overwrite.")

	c.Assert(os.WriteFile(settings, []byte("machine: host9\ncompose_command: docker compose\n"), 0o600), qt.IsNil)
	res = runCmd(nil, "config")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "machine: host9")
	c.Assert(res.stdout, qt.Contains, "compose_command: docker compose")
	c.Assert(res.stdout, qt.Contains, "settings_file: "+settings)

	res = runCmd(nil, "-m", "host2", "config")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "machine: host2")
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func TestVersion_HappyPath(t *testing.T) {
	c := qt.New(t)
	res := runCmd(nil, "version")
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.stdout, qt.Contains, "satelliz dev")
}
