// Package vm implements the stack-based interpreter: a fetch-decode-execute
// loop over a compiled chunk, a tagged value stack, and a global symbol
// table.
package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sexpvm/sexpvm/internal/bytecode"
	"github.com/sexpvm/sexpvm/internal/invariant"
	"github.com/sexpvm/sexpvm/internal/value"
)

// VM executes one chunk at a time against a value stack and a global
// symbol table. The symbol table is cleared at the start of Run, matching
// the chunk-lifecycle-bound contract: one VM instance interprets one
// program.
type VM struct {
	chunk   *bytecode.Chunk
	ip      int
	stack   []value.Value
	symbols map[string]value.Value
	out     io.Writer
	log     *slog.Logger
}

// New creates a VM that writes OP_PRINT output to out; the value popped by
// OP_RETURN is returned from Run, not written. Trace-level instruction
// logging to stderr is enabled by setting SEXPVM_TRACE in the environment;
// otherwise the VM logs nothing.
func New(out io.Writer) *VM {
	level := slog.LevelInfo
	if os.Getenv("SEXPVM_TRACE") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &VM{
		out:     out,
		symbols: make(map[string]value.Value),
		log:     slog.New(handler),
	}
}

// Run interprets chunk to completion, returning the value popped by
// OP_RETURN, or a RuntimeError if execution faults.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.symbols = make(map[string]value.Value)

	vm.log.Debug("run start", "fingerprint", chunk.Fingerprint(), "bytes", len(chunk.Code))

	for {
		if vm.log.Enabled(context.Background(), slog.LevelDebug) {
			trace, _ := bytecode.DisassembleInstruction(vm.chunk, vm.ip)
			vm.log.Debug("trace", "stack", vm.stackTrace(), "instr", strings.TrimSpace(trace))
		}

		op := bytecode.Op(vm.readByte())
		switch op {
		case bytecode.OpConstant:
			cst := vm.chunk.ConstantAt(vm.readByte())
			vm.push(cst.ToValue())

		case bytecode.OpNil:
			vm.push(value.NilValue())
		case bytecode.OpTrue:
			vm.push(value.BoolValue(true))
		case bytecode.OpFalse:
			vm.push(value.BoolValue(false))

		case bytecode.OpAdd, bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
			if err := vm.binaryArith(op); err != nil {
				return value.NilValue(), err
			}

		case bytecode.OpLt, bytecode.OpGt, bytecode.OpLte, bytecode.OpGte:
			if err := vm.binaryCompare(op); err != nil {
				return value.NilValue(), err
			}

		case bytecode.OpEqual:
			b, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			a, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			vm.push(value.BoolValue(a.Equal(b)))

		case bytecode.OpNot:
			v, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			vm.push(value.BoolValue(v.IsFalsey()))

		case bytecode.OpLen:
			v, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			if v.Kind == value.String {
				vm.push(value.IntValue(int64(len(v.Text))))
			} else {
				vm.push(value.NilValue())
			}

		case bytecode.OpPrint:
			v, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			fmt.Fprintln(vm.out, v.String())
			vm.push(value.NilValue())

		case bytecode.OpPop:
			if _, err := vm.pop(); err != nil {
				return value.NilValue(), err
			}

		case bytecode.OpSym:
			cst := vm.chunk.ConstantAt(vm.readByte())
			v, ok := vm.symbols[cst.Text]
			if !ok {
				return value.NilValue(), vm.undefinedSymbolError(cst.Text)
			}
			vm.push(v)

		case bytecode.OpDefSym:
			cst := vm.chunk.ConstantAt(vm.readByte())
			vm.push(value.SymbolValue(cst.Text))

		case bytecode.OpDef:
			val, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			sym, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			if sym.Kind != value.Symbol {
				return value.NilValue(), &RuntimeError{Line: vm.currentLine(), Message: fmt.Sprintf("OP_DEF expects a SYMBOL below the value, got %s", sym.Kind)}
			}
			vm.symbols[sym.Text] = val
			vm.push(value.NilValue())

		case bytecode.OpJmpIfFalse:
			target := vm.readByte()
			cond, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			if cond.IsFalsey() {
				vm.ip = int(target)
			}

		case bytecode.OpJmp:
			vm.ip = int(vm.readByte())

		case bytecode.OpReturn:
			v, err := vm.pop()
			if err != nil {
				return value.NilValue(), err
			}
			vm.log.Debug("return", "value", v.String())
			return v, nil

		default:
			invariant.Invariant(false, "unknown opcode %d at ip %d", op, vm.ip-1)
		}
	}
}

func (vm *VM) readByte() byte {
	invariant.Invariant(vm.ip < len(vm.chunk.Code), "ip %d out of range (code length %d)", vm.ip, len(vm.chunk.Code))
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, &RuntimeError{Line: vm.currentLine(), Message: "stack underflow"}
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) currentLine() int {
	if vm.ip == 0 || vm.ip > len(vm.chunk.Lines) {
		return 0
	}
	return vm.chunk.Lines[vm.ip-1]
}

// binaryArith implements OP_ADD/SUB/MUL/DIV with the int/float coercion
// table: (INT,INT) -> INT; any FLOAT operand widens both to FLOAT; any
// other pairing is a runtime error. The right operand is popped first:
// top-of-stack is the right-hand side.
func (vm *VM) binaryArith(op bytecode.Op) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}

	if a.Kind == value.Int && b.Kind == value.Int {
		var r int64
		switch op {
		case bytecode.OpAdd:
			r = a.I + b.I
		case bytecode.OpSubtract:
			r = a.I - b.I
		case bytecode.OpMultiply:
			r = a.I * b.I
		case bytecode.OpDivide:
			if b.I == 0 {
				return &RuntimeError{Line: vm.currentLine(), Message: "division by zero"}
			}
			r = a.I / b.I
		}
		vm.push(value.IntValue(r))
		return nil
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return &RuntimeError{Line: vm.currentLine(), Message: fmt.Sprintf("'%s' requires numeric operands, got %s and %s", op, a.Kind, b.Kind)}
	}
	var r float64
	switch op {
	case bytecode.OpAdd:
		r = af + bf
	case bytecode.OpSubtract:
		r = af - bf
	case bytecode.OpMultiply:
		r = af * bf
	case bytecode.OpDivide:
		r = af / bf
	}
	vm.push(value.FloatValue(r))
	return nil
}

// binaryCompare implements OP_LT/GT/LTE/GTE with the same numeric coercion
// as binaryArith; non-numeric operands are a runtime error.
func (vm *VM) binaryCompare(op bytecode.Op) error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return &RuntimeError{Line: vm.currentLine(), Message: fmt.Sprintf("'%s' requires numeric operands, got %s and %s", op, l.Kind, r.Kind)}
	}
	var result bool
	switch op {
	case bytecode.OpLt:
		result = lf < rf
	case bytecode.OpGt:
		result = lf > rf
	case bytecode.OpLte:
		result = lf <= rf
	case bytecode.OpGte:
		result = lf >= rf
	}
	vm.push(value.BoolValue(result))
	return nil
}

func toFloat(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.Int:
		return float64(v.I), true
	case value.Float:
		return v.F, true
	default:
		return 0, false
	}
}

// undefinedSymbolError builds a RuntimeError for an OP_SYM lookup miss,
// appending a "did you mean" hint when a currently-bound global name is a
// close fuzzy match for the failed lookup.
func (vm *VM) undefinedSymbolError(name string) error {
	msg := fmt.Sprintf("undefined symbol '%s'", name)
	if hint := vm.suggestSymbol(name); hint != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", hint)
	}
	return &RuntimeError{Line: vm.currentLine(), Message: msg}
}

func (vm *VM) suggestSymbol(name string) string {
	if len(vm.symbols) == 0 {
		return ""
	}
	candidates := make([]string, 0, len(vm.symbols))
	for k := range vm.symbols {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates) // deterministic input order for a deterministic best match
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks) // lowest Levenshtein distance first
	return ranks[0].Target
}

func (vm *VM) stackTrace() string {
	parts := make([]string, len(vm.stack))
	for i, v := range vm.stack {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
