// Package dockercmd implements the `satelliz docker` command.
package dockercmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/satelliz/cmd/satelliz/shared"
	"github.com/go-ports/satelliz/internal/dispatch"
)

// Command implements `satelliz docker`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the docker command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "docker [args...]",
		Short: "Run docker with the machine environment applied",
		RunE:  c.run,
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
	return d.Do(cmd.Context(), append([]string{dispatch.AliasDocker}, args...)...)
}
