// Package config holds build-time constants and the optional YAML-loadable
// runtime configuration for the VM and collector, in the shape of
// funxy/internal/ext's funxy.yaml loader (gopkg.in/yaml.v3).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rloxvm/rlox/internal/vm"
)

// Version is the module's version string, set at build time the same way
// funxy/internal/config sets its Version var (overwritten via -ldflags, or
// left at this default for local builds).
var Version = "0.1.0"

// Runtime is the optional tunable surface for embedders. None of its
// fields are required: vm.New() and gc.New() behave correctly with no
// Runtime involved at all.
type Runtime struct {
	// StackSize documents the value-stack capacity a deployment expects.
	// The VM's stack is a fixed-size Go array (vm.StackMax), so this field
	// cannot resize it; Load rejects a non-zero value that doesn't match
	// vm.StackMax, so a config file that assumes a different stack depth
	// fails fast at load time instead of silently deploying against the
	// wrong capacity.
	StackSize int `yaml:"stack_size,omitempty"`

	// TraceEnabled wires the VM's tracing mode: stack dump plus
	// next-instruction disassembly before every dispatch.
	TraceEnabled bool `yaml:"trace,omitempty"`

	// ColorOutput controls whether cmd/rlox prints the interpreted-result
	// line in ANSI color; the disassembly itself is always written
	// uncolored. Nil means "decide from the output file descriptor via
	// isatty", matching funxy/internal/evaluator/builtins_term.go's
	// decision for its own colorized output.
	ColorOutput *bool `yaml:"color_output,omitempty"`

	// GCStepBatch bounds how many Collector.Step units of work a single
	// incremental pump performs. A positive value lets a host drive the
	// collector across several calls instead of stalling on one
	// synchronous Collect. Zero (or a negative value) leaves it unset:
	// cmd/rlox's gc-incremental scenario then pumps one step at a time.
	GCStepBatch int `yaml:"gc_step_batch,omitempty"`
}

// Default returns the zero-config defaults (256-slot stack, no tracing,
// auto color, GCStepBatch unset).
func Default() *Runtime {
	return &Runtime{StackSize: vm.StackMax}
}

// Load reads and parses a YAML runtime configuration file.
func Load(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rt := Default()
	if err := yaml.Unmarshal(data, rt); err != nil {
		return nil, err
	}
	if rt.StackSize == 0 {
		rt.StackSize = vm.StackMax
	} else if rt.StackSize != vm.StackMax {
		return nil, fmt.Errorf("config: stack_size %d does not match the VM's fixed capacity of %d", rt.StackSize, vm.StackMax)
	}
	return rt, nil
}
