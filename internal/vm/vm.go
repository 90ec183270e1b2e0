package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// StackMax is the VM's fixed value-stack capacity.
const StackMax = 256

var (
	errStackOverflow  = errors.New("vm: stack overflow")
	errStackUnderflow = errors.New("vm: stack underflow")
)

// ErrTypeError is the sentinel a caller can match with errors.Is against
// the error returned by Interpret. TypeError itself carries the opcode
// that produced it for diagnostics.
var ErrTypeError = errors.New("vm: type error")

// TypeError is the sole user-visible VM error: an arithmetic opcode
// received a non-Float operand.
type TypeError struct {
	Op Opcode
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("vm: type error in %s", e.Op)
}

func (e *TypeError) Unwrap() error { return ErrTypeError }

// VM is the bytecode execution engine: a fixed-capacity value stack, an
// instruction pointer, and the chunk currently being executed.
type VM struct {
	// ID correlates this VM's trace/diagnostic output when a host embeds
	// more than one instance. It has no bearing on execution semantics.
	ID uuid.UUID

	stack [StackMax]Value
	top   int
	ip    int
	chunk *Chunk

	// Trace, when non-nil, receives a stack dump and the disassembly of
	// the next instruction before every dispatch. Enabling it never
	// changes interpretation results.
	Trace io.Writer
	// UnknownOpcode, when non-nil, receives one line per opcode byte the
	// dispatch loop could not recognize.
	UnknownOpcode io.Writer
}

// New returns a VM with an empty stack, ready for Interpret.
func New() *VM {
	return &VM{ID: uuid.New()}
}

func (vm *VM) reset(chunk *Chunk) {
	vm.chunk = chunk
	vm.ip = 0
	vm.top = 0
}

func (vm *VM) push(v Value) {
	if vm.top >= StackMax {
		panic(errStackOverflow)
	}
	vm.stack[vm.top] = v
	vm.top++
}

func (vm *VM) pop() Value {
	if vm.top <= 0 {
		panic(errStackUnderflow)
	}
	vm.top--
	return vm.stack[vm.top]
}

// tryPop is the terminal-return variant: it tolerates an empty stack and
// yields Null instead of panicking.
func (vm *VM) tryPop() Value {
	if vm.top <= 0 {
		return Null()
	}
	vm.top--
	return vm.stack[vm.top]
}

// Interpret takes ownership of chunk, resets VM state, and runs the
// dispatch loop to completion: either an OpReturn executes, or ip reaches
// the end of the chunk. Returns the value left on the stack top (Null if
// empty), or a *TypeError if arithmetic dispatch produced Err.
func (vm *VM) Interpret(chunk *Chunk) (Value, error) {
	vm.reset(chunk)

	for vm.ip < chunk.Len() {
		if vm.Trace != nil {
			vm.traceStep()
		}

		op := Opcode(chunk.GetByte(vm.ip))
		switch op {
		case OpNoOp:
			vm.ip++

		case OpConstant:
			idx := int(chunk.GetByte(vm.ip + 1))
			vm.push(chunk.constants[idx])
			vm.ip += 2

		case OpConstantLong:
			idx := int(chunk.GetByte(vm.ip+1))<<16 | int(chunk.GetByte(vm.ip+2))<<8 | int(chunk.GetByte(vm.ip+3))
			vm.push(chunk.constants[idx])
			vm.ip += 4

		case OpNegate:
			a := vm.pop()
			r := negate(a)
			if r.IsErr() {
				return Value{}, &TypeError{Op: op}
			}
			vm.push(r)
			vm.ip++

		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			b := vm.pop()
			a := vm.pop()
			var r Value
			switch op {
			case OpAdd:
				r = add(a, b)
			case OpSubtract:
				r = sub(a, b)
			case OpMultiply:
				r = mul(a, b)
			case OpDivide:
				r = div(a, b)
			}
			if r.IsErr() {
				return Value{}, &TypeError{Op: op}
			}
			vm.push(r)
			vm.ip++

		case OpReturn:
			return vm.tryPop(), nil

		default:
			if vm.UnknownOpcode != nil {
				fmt.Fprintf(vm.UnknownOpcode, "vm: skipping unknown opcode %d at %04x\n", op, vm.ip)
			}
			vm.ip++
		}
	}

	return vm.tryPop(), nil
}

func (vm *VM) traceStep() {
	fmt.Fprint(vm.Trace, "          ")
	for i := 0; i < vm.top; i++ {
		fmt.Fprintf(vm.Trace, "[ %v ]", vm.stack[i])
	}
	fmt.Fprintln(vm.Trace)
	vm.chunk.disassembleOne(vm.Trace, nil, vm.ip)
}
