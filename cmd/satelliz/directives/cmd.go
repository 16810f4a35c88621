// Package directivescmd implements the `satelliz directives` command.
package directivescmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/satelliz/cmd/satelliz/shared"
)

// Command implements `satelliz directives`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the directives command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "directives",
		Short: "Show the directives and compose chain of the active compose file",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	d, err := c.ctx.Dispatcher(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	plan, err := d.Resolve()
	if err != nil {
		return err
	}
	data := map[string]any{
		"directives":    map[string]string(plan.Directives),
		"compose_files": plan.Files,
		"machine":       plan.Machine,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}
