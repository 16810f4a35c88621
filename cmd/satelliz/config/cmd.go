// Package configcmd implements the `satelliz config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/satelliz/cmd/satelliz/shared"
	"github.com/go-ports/satelliz/internal/config"
)

const settingsTemplate = `# satelliz settings

# Compose file used when --config is not given.
compose_file: docker-compose.yml

# Fallback docker-machine host. Use swarm@<name> for a swarm master.
# A compose file's use-docker-machine directive wins over this value;
# --machine and SATELLIZ_MACHINE win over both.
# machine: host1

# Tools.
docker_bin: docker
compose_command: docker-compose   # or: docker compose
machine_bin: docker-machine

log_level: info                   # debug | info | warn | error | off
`

// Command implements `satelliz config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage settings",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(newConfigInit(ctx))
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	path, err := settingsPath(c.ctx)
	if err != nil {
		return err
	}
	s, err := c.ctx.Settings()
	if err != nil {
		return err
	}
	data := map[string]any{
		"compose_file":    s.ComposeFile,
		"machine":         s.Machine,
		"machine_source":  s.MachineSource,
		"docker_bin":      s.DockerBin,
		"compose_command": s.ComposeCommand,
		"machine_bin":     s.MachineBin,
		"log_level":       s.LogLevel,
		"settings_file":   path,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

func settingsPath(ctx *shared.Context) (string, error) {
	if ctx.SettingsPath != "" {
		return ctx.SettingsPath, nil
	}
	return config.Path()
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := settingsPath(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "Settings already exist at %s\n", path)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(settingsTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing settings")
	return cmd
}
