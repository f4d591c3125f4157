// Package diag implements the lex/parse/compile diagnostic channel shared by
// the scanner, parser, and code generator: source-line-carrying errors and
// the panic-mode suppression that keeps one malformed expression from
// flooding the caller with cascaded noise.
package diag

import "fmt"

// CompileError is a single lex, parse, or code-generation diagnostic. It
// formats the way the original interpreter's error_at did: "[line N] Error
// at 'lexeme': message", with "at end" for EOF and no location fragment for
// an already-erroring token.
type CompileError struct {
	Line    int
	Message string
	Lexeme  string
	AtEnd   bool
	AtError bool // token itself was a scanner ERROR; location is omitted
}

func (e *CompileError) Error() string {
	switch {
	case e.AtEnd:
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	case e.AtError:
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	default:
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
	}
}

// Bag accumulates CompileErrors across a compilation, suppressing cascaded
// reports while in panic mode until the caller calls Synchronize at a
// resynchronization point (a top-level expression boundary).
type Bag struct {
	errors    []*CompileError
	panicMode bool
}

// Report records one diagnostic unless panic mode is already suppressing
// cascades; reporting always enters panic mode.
func (b *Bag) Report(err *CompileError) {
	if b.panicMode {
		return
	}
	b.panicMode = true
	b.errors = append(b.errors, err)
}

// Synchronize clears panic mode at a resynchronization point, allowing the
// next diagnostic to be reported.
func (b *Bag) Synchronize() {
	b.panicMode = false
}

// HadError reports whether any diagnostic has been recorded.
func (b *Bag) HadError() bool {
	return len(b.errors) > 0
}

// Errors returns all recorded diagnostics in report order.
func (b *Bag) Errors() []*CompileError {
	return b.errors
}

// Error joins all recorded diagnostics into a single error, or nil if none
// were recorded.
func (b *Bag) Error() error {
	if len(b.errors) == 0 {
		return nil
	}
	msg := "compilation failed:"
	for _, e := range b.errors {
		msg += "\n  " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
