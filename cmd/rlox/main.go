// Command rlox is a scratch driver that builds a chunk programmatically
// and runs it through the VM. It is not a stable interface — it exists for
// manual exploration and to exercise the config/diag/gc wiring end to end,
// in the shape of funxy/cmd/funxy/main.go and rlox_core/examples/scratch.rs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/rloxvm/rlox/internal/config"
	"github.com/rloxvm/rlox/internal/diag"
	"github.com/rloxvm/rlox/internal/gc"
	"github.com/rloxvm/rlox/internal/vm"
)

func main() {
	configPath := flag.String("config", "", "optional YAML runtime config (see internal/config.Runtime)")
	trace := flag.Bool("trace", false, "enable VM tracing")
	flag.Parse()

	scenario := "arith"
	if flag.NArg() > 0 {
		scenario = flag.Arg(0)
	}

	rt := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rlox: loading config: %v\n", err)
			os.Exit(1)
		}
		rt = loaded
	}
	if *trace {
		rt.TraceEnabled = true
	}

	log := diag.Default()

	fn, ok := scenarios[scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "rlox: unknown scenario %q (available: %s)\n", scenario, scenarioNames())
		os.Exit(1)
	}
	fn(rt, log)
}

var scenarios = map[string]func(*config.Runtime, *diag.Logger){
	"arith":           runArith,
	"long-const":      runLongConst,
	"unary":           runUnary,
	"empty":           runEmpty,
	"gc-reachability": runGCReachability,
	"gc-cycle":        runGCCycle,
	"gc-sweep-alloc":  runGCSweepAlloc,
	"gc-incremental":  runGCIncremental,
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	return fmt.Sprint(names)
}

func colorEnabled(rt *config.Runtime) bool {
	if rt.ColorOutput != nil {
		return *rt.ColorOutput
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func runAndReport(rt *config.Runtime, log *diag.Logger, chunk *vm.Chunk) {
	chunk.Disassemble(os.Stdout, os.Stderr)

	machine := vm.New()
	if rt.TraceEnabled {
		machine.Trace = os.Stdout
		machine.UnknownOpcode = os.Stderr
	}

	result, err := machine.Interpret(chunk)
	if err != nil {
		log.Printf("[vm %s] interpret error: %v", machine.ID, err)
		os.Exit(1)
	}

	if colorEnabled(rt) {
		fmt.Printf("\x1b[32m=> %v\x1b[0m\n", result)
	} else {
		fmt.Printf("=> %v\n", result)
	}
}

// scenario 1: Constant 3.0; Constant 2.0; Multiply;
// Constant 1.0; Add; Return => Float(7.0)
func runArith(rt *config.Runtime, log *diag.Logger) {
	chunk := vm.NewChunk()
	writeConstant(chunk, 3.0, 1)
	writeConstant(chunk, 2.0, 1)
	chunk.WriteOp(vm.OpMultiply, 1)
	writeConstant(chunk, 1.0, 1)
	chunk.WriteOp(vm.OpAdd, 1)
	chunk.WriteOp(vm.OpReturn, 1)
	runAndReport(rt, log, chunk)
}

// scenario 2: forced long-form constant => Float(7.0)
func runLongConst(rt *config.Runtime, log *diag.Logger) {
	chunk := vm.NewChunk()
	writeConstant(chunk, 3.0, 1)
	writeConstant(chunk, 2.0, 1)
	chunk.WriteOp(vm.OpMultiply, 1)

	idx := chunk.AddConstantLong(vm.Float(1.0))
	chunk.Write(vm.OpConstantLong, 1)
	chunk.Write(idx, 1)

	chunk.WriteOp(vm.OpAdd, 1)
	chunk.WriteOp(vm.OpReturn, 1)
	runAndReport(rt, log, chunk)
}

// scenario 3: Constant 1.2; Constant 3.4; Add; Constant 5.6; Divide;
// Negate; Return => Float(-(1.2+3.4)/5.6)
func runUnary(rt *config.Runtime, log *diag.Logger) {
	chunk := vm.NewChunk()
	writeConstant(chunk, 1.2, 1)
	writeConstant(chunk, 3.4, 1)
	chunk.WriteOp(vm.OpAdd, 1)
	writeConstant(chunk, 5.6, 1)
	chunk.WriteOp(vm.OpDivide, 1)
	chunk.WriteOp(vm.OpNegate, 1)
	chunk.WriteOp(vm.OpReturn, 1)
	runAndReport(rt, log, chunk)
}

// scenario 4: empty chunk => Null
func runEmpty(rt *config.Runtime, log *diag.Logger) {
	runAndReport(rt, log, vm.NewChunk())
}

// scenario 5: Foo holds a Managed<Bar>; dropping Foo's external handle and
// collecting reclaims both, unless Bar is also externally rooted.
func runGCReachability(rt *config.Runtime, log *diag.Logger) {
	c := gc.New()

	bar := gc.Alloc(c, &barObj{})
	foo := gc.Alloc(c, &fooObj{bar: bar})
	log.Printf("[gc %s] before release: live=%d", c.ID, c.Len())

	foo.Release()
	bar.Release()
	c.Collect()
	swept, freed := c.LastCycleStats()
	log.Counts(fmt.Sprintf("[gc %s] live after collect", c.ID), swept)
	log.Printf("[gc %s] freed this cycle: %d", c.ID, freed)
}

// scenario 6: two objects reference each other; both externally unrooted;
// one Collect reclaims both.
func runGCCycle(rt *config.Runtime, log *diag.Logger) {
	c := gc.New()

	a := gc.Alloc(c, &cyclicObj{})
	b := gc.Alloc(c, &cyclicObj{})
	a.Deref().peer = b.Clone()
	b.Deref().peer = a.Clone()
	// The stored peer handles now live inside the graph.
	a.Deref().peer.Unroot()
	b.Deref().peer.Unroot()

	a.Release()
	b.Release()
	c.Collect()
	log.Counts(fmt.Sprintf("[gc %s] live after cycle collect", c.ID), c.Len())
}

// scenario 7: allocating during the Sweep phase must not reclaim the new
// object in the same cycle.
func runGCSweepAlloc(rt *config.Runtime, log *diag.Logger) {
	c := gc.New()
	first := gc.Alloc(c, &barObj{})
	first.Release()

	// Pump the state machine into Sweep, sweep the first node, then
	// allocate before the cycle finishes.
	for c.Phase() != "sweep" {
		c.Step(1)
	}
	c.Step(1)
	second := gc.Alloc(c, &barObj{})
	_ = second
	for !c.Step(1) {
	}
	log.Counts(fmt.Sprintf("[gc %s] live after interleaved alloc", c.ID), c.Len())
}

// runGCIncremental drives the collector via Collector.Step instead of
// Collect, using rt.GCStepBatch as the pump size (falling back to 1 when
// unset), and logs progress after each pump.
func runGCIncremental(rt *config.Runtime, log *diag.Logger) {
	c := gc.New()
	stale := gc.Alloc(c, &barObj{})
	stale.Release()

	batch := rt.GCStepBatch
	if batch <= 0 {
		batch = 1
	}

	pumps := 0
	for !c.Step(batch) {
		pumps++
		log.Printf("[gc %s] pump %d: phase=%s live=%d", c.ID, pumps, c.Phase(), c.Len())
	}
	log.Counts(fmt.Sprintf("[gc %s] live after incremental collection", c.ID), c.Len())
}

func writeConstant(chunk *vm.Chunk, f float64, line int) {
	idx := chunk.AddConstant(vm.Float(f))
	chunk.Write(idx.Op(), line)
	chunk.Write(idx, line)
}

// fooObj/barObj/cyclicObj are minimal demo heap types used only to drive
// the GC scenarios above from the command line — the scratch driver's
// equivalent of rlox-gc/tests fixtures. barObj has no Managed fields, so
// it embeds gc.Leaf (the no-op Scan/Root/Unroot case for payload-free
// types).
type barObj struct{ gc.Leaf }

// fooObj holds one Managed pointer and must recurse into it.
type fooObj struct {
	bar gc.Managed[*barObj]
}

func (f *fooObj) Scan(ctx *gc.Context) { f.bar.Scan(ctx) }
func (f *fooObj) Root()                { f.bar.Root() }
func (f *fooObj) Unroot()              { f.bar.Unroot() }

// cyclicObj demonstrates the two-node cycle scenario: its peer field is
// set after allocation, so Scan/Root/Unroot must tolerate a zero-value
// (not-yet-set) peer — Managed's methods treat an unset handle as
// contributing no edge.
type cyclicObj struct {
	peer gc.Managed[*cyclicObj]
}

func (c *cyclicObj) Scan(ctx *gc.Context) { c.peer.Scan(ctx) }
func (c *cyclicObj) Root()                { c.peer.Root() }
func (c *cyclicObj) Unroot()              { c.peer.Unroot() }
