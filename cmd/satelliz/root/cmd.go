// Package rootcmd wires the root cobra.Command for the satelliz CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/go-ports/satelliz/cmd/satelliz/config"
	directivescmd "github.com/go-ports/satelliz/cmd/satelliz/directives"
	docmd "github.com/go-ports/satelliz/cmd/satelliz/do"
	dockercmd "github.com/go-ports/satelliz/cmd/satelliz/docker"
	"github.com/go-ports/satelliz/cmd/satelliz/shared"
	versioncmd "github.com/go-ports/satelliz/cmd/satelliz/version"
	"github.com/go-ports/satelliz/internal/execx"
)

// New creates and returns the root cobra.Command for the satelliz CLI.
func New() *cobra.Command {
	return NewWithRunner(nil)
}

// NewWithRunner is New with an explicit command runner. A nil runner
// executes real processes.
func NewWithRunner(r execx.Runner) *cobra.Command {
	ctx := &shared.Context{Runner: r}

	root := &cobra.Command{
		Use:           "satelliz",
		Short:         "Docker-compose shortcuts for local and docker-machine hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&ctx.ComposeFile, "config", "c", "",
		"Compose file (default: $SATELLIZ_COMPOSE_FILE → settings → docker-compose.yml)")
	flags.StringVarP(&ctx.Machine, "machine", "m", "",
		"docker-machine host, or swarm@<name> (default: $SATELLIZ_MACHINE → use-docker-machine directive → settings)")
	flags.StringVar(&ctx.SettingsPath, "settings", "",
		"Settings file (default: $SATELLIZ_HOME/config.yaml → ~/.config/satelliz/config.yaml)")
	flags.StringVar(&ctx.LogLevel, "log-level", "", "Log level: debug | info | warn | error | off")
	flags.BoolVar(&ctx.DryRun, "dry-run", false, "Print commands instead of running them")

	root.AddCommand(
		docmd.New(ctx).Cmd(),
		dockercmd.New(ctx).Cmd(),
		directivescmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
