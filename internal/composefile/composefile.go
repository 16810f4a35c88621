// Package composefile reads the parts of a compose file satelliz needs to
// know about beyond its directives.
package composefile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// document is the subset of the compose schema read here.
type document struct {
	Services map[string]yaml.Node `yaml:"services"`
}

// Services returns the sorted union of service names declared under the
// top-level services mapping of the given files.
// Files that do not exist are skipped so that an optional override does not
// have to be present.
func Services(paths ...string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		for name := range doc.Services {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// HasService reports whether name is declared in any of the given files.
func HasService(name string, paths ...string) (bool, error) {
	names, err := Services(paths...)
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(names, name)
	return i < len(names) && names[i] == name, nil
}
