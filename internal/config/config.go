// Package config handles satelliz settings loading and resolution.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Resolve.
const (
	EnvHome        = "SATELLIZ_HOME"
	EnvComposeFile = "SATELLIZ_COMPOSE_FILE"
	EnvMachine     = "SATELLIZ_MACHINE"
	EnvLogLevel    = "SATELLIZ_LOG_LEVEL"
)

// DefaultComposeFile is used when no compose file is configured.
const DefaultComposeFile = "docker-compose.yml"

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings is the content of the satelliz settings file.
type Settings struct {
	ComposeFile    string `yaml:"compose_file"`
	Machine        string `yaml:"machine"`
	DockerBin      string `yaml:"docker_bin"`
	ComposeCommand string `yaml:"compose_command"` // e.g. "docker-compose" or "docker compose"
	MachineBin     string `yaml:"machine_bin"`
	LogLevel       string `yaml:"log_level"`

	// MachineSource records where Machine came from: "flag", "env",
	// "settings", or "" when no machine is configured.
	MachineSource string `yaml:"-"`
}

// Default returns Settings populated with the stock tool names.
func Default() *Settings {
	return &Settings{
		ComposeFile:    DefaultComposeFile,
		DockerBin:      "docker",
		ComposeCommand: "docker-compose",
		MachineBin:     "docker-machine",
		LogLevel:       "info",
	}
}

// Load reads a settings file from path.
// If the file does not exist it returns Default() with no error.
// Missing or empty keys retain their default values.
func Load(path string) (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var raw Settings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	apply(&cfg.ComposeFile, raw.ComposeFile)
	if apply(&cfg.Machine, raw.Machine) {
		cfg.MachineSource = "settings"
	}
	apply(&cfg.DockerBin, raw.DockerBin)
	apply(&cfg.ComposeCommand, raw.ComposeCommand)
	apply(&cfg.MachineBin, raw.MachineBin)
	apply(&cfg.LogLevel, raw.LogLevel)
	return cfg, nil
}

func apply(dst *string, v string) bool {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
		return true
	}
	return false
}

// CallTimeMachine returns the machine chosen for this invocation by flag or
// env var. It takes precedence over a compose file's use-docker-machine
// directive.
func (s *Settings) CallTimeMachine() string {
	if s.MachineSource == "flag" || s.MachineSource == "env" {
		return s.Machine
	}
	return ""
}

// DefaultMachine returns the machine from the settings file. It only applies
// when the compose file has no use-docker-machine directive.
func (s *Settings) DefaultMachine() string {
	if s.MachineSource == "settings" {
		return s.Machine
	}
	return ""
}

// ComposeArgv splits ComposeCommand into a program name and leading args.
func (s *Settings) ComposeArgv() (string, []string) {
	fields := strings.Fields(s.ComposeCommand)
	if len(fields) == 0 {
		return "docker-compose", nil
	}
	return fields[0], fields[1:]
}

// ---------------------------------------------------------------------------
// Settings file location
// ---------------------------------------------------------------------------

// Path returns the settings file location.
// Priority: SATELLIZ_HOME env → ~/.config/satelliz.
func Path() (string, error) {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return filepath.Join(home, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "satelliz", "config.yaml"), nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Overrides are values supplied on the command line. Empty fields are unset.
type Overrides struct {
	ComposeFile string
	Machine     string
	LogLevel    string
}

// Resolve layers env vars and flags on top of the settings file.
// Priority: flag → env → settings file → default. For the machine, the
// settings file ranks below the compose file directive; see MachineSource.
func Resolve(path string, o Overrides) (*Settings, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	apply(&cfg.ComposeFile, os.Getenv(EnvComposeFile))
	if apply(&cfg.Machine, os.Getenv(EnvMachine)) {
		cfg.MachineSource = "env"
	}
	apply(&cfg.LogLevel, os.Getenv(EnvLogLevel))

	apply(&cfg.ComposeFile, o.ComposeFile)
	if apply(&cfg.Machine, o.Machine) {
		cfg.MachineSource = "flag"
	}
	apply(&cfg.LogLevel, o.LogLevel)
	return cfg, nil
}
