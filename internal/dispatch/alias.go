package dispatch

import "fmt"

// Aliases with dedicated handling. Any other word is passed to the compose
// command unchanged.
const (
	AliasInfo     = "info"
	AliasImages   = "images"
	AliasExec     = "exec"
	AliasGetShell = "getshell"
	AliasDocker   = "docker"
	AliasPullUp   = "pullup"
	AliasDrop     = "drop"
)

// Invocation is one command produced by an alias.
type Invocation struct {
	// Direct invocations run the docker binary and skip the compose chain.
	Direct bool
	Args   []string
}

// Commands expands args (alias first) into the invocations to run in order.
func Commands(args []string) ([]Invocation, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: an alias is required", ErrUsage)
	}
	alias, rest := args[0], args[1:]

	switch alias {
	case AliasInfo, AliasImages, AliasExec:
		return []Invocation{direct(args...)}, nil

	case AliasGetShell:
		if len(rest) == 0 || rest[0] == "" {
			return nil, fmt.Errorf("%w: getshell <container-or-service>", ErrUsage)
		}
		return []Invocation{direct("exec", "-it", rest[0], "/bin/sh")}, nil

	case AliasDocker:
		return []Invocation{direct(rest...)}, nil

	case AliasPullUp:
		return []Invocation{
			compose(prefixed(rest, "pull")...),
			compose(prefixed(rest, "up", "-d")...),
		}, nil

	case AliasDrop:
		// compose down only works for the whole project
		return []Invocation{
			compose(prefixed(rest, "kill")...),
			compose(prefixed(rest, "rm", "-f")...),
		}, nil

	default:
		return []Invocation{compose(args...)}, nil
	}
}

func direct(args ...string) Invocation {
	return Invocation{Direct: true, Args: append([]string(nil), args...)}
}

func compose(args ...string) Invocation {
	return Invocation{Args: append([]string(nil), args...)}
}

func prefixed(rest []string, head ...string) []string {
	out := make([]string, 0, len(head)+len(rest))
	out = append(out, head...)
	return append(out, rest...)
}
