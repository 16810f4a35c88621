// Package docmd implements the `satelliz do` command.
package docmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/satelliz/cmd/satelliz/shared"
)

const long = `Run a command alias against the active compose file.

Aliases:
  info | images | exec ...   run as a plain docker subcommand
  getshell <id|service>      docker exec -it <container> /bin/sh
  docker ...                 run the arguments as docker
  pullup [services...]       pull, then up -d
  drop [services...]         kill, then rm -f
  anything else              passed to docker-compose as-is

Flags are only read before the alias; everything after it is passed through.`

// Command implements `satelliz do`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the do command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:     "do <alias> [args...]",
		Short:   "Run a docker-compose alias",
		Long:    long,
		Example: "  satelliz do pullup web db\n  satelliz -m swarm@prod do ps\n  satelliz do getshell web",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.run,
	}
	c.cmd.Flags().SetInterspersed(false)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	d, err := c.ctx.Dispatcher(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return d.Do(cmd.Context(), args...)
}
