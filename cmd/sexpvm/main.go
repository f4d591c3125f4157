// Command sexpvm compiles and runs a single S-expression source file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sexpvm/sexpvm/internal/ast"
	"github.com/sexpvm/sexpvm/internal/bytecode"
	"github.com/sexpvm/sexpvm/internal/vm"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:           "sexpvm <source-file>",
		Short:         "Compile and run an S-expression program",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return interpret(args[0])
		},
	}

	exitCode := exitOK
	rootCmd.RunE = wrapExit(rootCmd.RunE, &exitCode)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == exitOK {
			exitCode = exitRuntimeError
		}
	}
	return exitCode
}

// wrapExit lets interpret communicate which exit code a failure maps to
// without calling os.Exit itself, which would skip any deferred cleanup.
func wrapExit(fn func(*cobra.Command, []string) error, code *int) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if ce, ok := err.(*exitError); ok {
			*code = ce.code
			return ce.err
		}
		return err
	}
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func interpret(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return &exitError{code: exitRuntimeError, err: fmt.Errorf("reading %s: %w", path, err)}
	}

	tree, err := ast.NewParser(string(source)).Parse()
	if err != nil {
		return &exitError{code: exitCompileError, err: err}
	}

	chunk, err := bytecode.Compile(string(source), tree)
	if err != nil {
		return &exitError{code: exitCompileError, err: err}
	}

	machine := vm.New(os.Stdout)
	result, err := machine.Run(chunk)
	if err != nil {
		return &exitError{code: exitRuntimeError, err: err}
	}

	fmt.Println(result.String())
	return nil
}
