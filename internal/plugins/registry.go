package plugins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/datatree"
)

var builtins = map[string]datatree.Plugin{
	ColorScaleName: ColorScale{},
}

// Names returns the built-in plugin names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves enabled plugin names in order. Duplicates are dropped.
func Lookup(names []string) ([]datatree.Plugin, error) {
	seen := make(map[string]bool, len(names))
	out := make([]datatree.Plugin, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		p, ok := builtins[key]
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		seen[key] = true
		out = append(out, p)
	}
	return out, nil
}
