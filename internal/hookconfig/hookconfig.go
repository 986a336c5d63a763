// Package hookconfig defines hookctl's batch hook-plan file format: a YAML
// document naming a target image and the set of symbols to redirect in it,
// so a whole set of hooks can be applied with one `hookctl batch` command
// instead of repeated `hookctl hook` invocations.
package hookconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is the top-level batch hook-plan document.
type Plan struct {
	// Image is the pathname of the shared object or executable the plan
	// applies to, matched against /proc/<pid>/maps (see internal/memmap).
	Image string `yaml:"image"`

	// PID, if nonzero, selects the process whose /proc/<pid>/maps locates
	// Image, overriding hookctl's --pid flag; zero leaves that choice to
	// --pid (whose default is the current process).
	PID int `yaml:"pid,omitempty"`

	// Hooks lists the symbol redirections to apply, in order.
	Hooks []HookSpec `yaml:"hooks"`
}

// HookSpec names one symbol to redirect and the replacement to install.
// NewFunc is the replacement function's address written as an integer
// literal (e.g. "0x7f0012340000"); hookctl parses it with
// strconv.ParseUint, base 0, at apply time.
type HookSpec struct {
	Symbol  string `yaml:"symbol"`
	NewFunc string `yaml:"new_func"`
}

// Load reads and validates a Plan from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hookconfig: read %s: %w", path, err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("hookconfig: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("hookconfig: %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks that the plan is well-formed enough to execute: it names
// an image and at least one hook, and every hook names both a symbol and a
// replacement.
func (p *Plan) Validate() error {
	if p.Image == "" {
		return fmt.Errorf("missing image")
	}
	if len(p.Hooks) == 0 {
		return fmt.Errorf("no hooks listed")
	}
	for i, h := range p.Hooks {
		if h.Symbol == "" {
			return fmt.Errorf("hooks[%d]: missing symbol", i)
		}
		if h.NewFunc == "" {
			return fmt.Errorf("hooks[%d] (%s): missing new_func", i, h.Symbol)
		}
	}
	return nil
}
