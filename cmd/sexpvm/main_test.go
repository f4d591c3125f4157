package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.sexp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestInterpretSuccess(t *testing.T) {
	path := writeProgram(t, "(+ 1 2)")
	require.NoError(t, interpret(path))
}

func TestInterpretCompileError(t *testing.T) {
	path := writeProgram(t, "(+ 1 2")
	err := interpret(path)
	require.Error(t, err)
	ee, ok := err.(*exitError)
	require.True(t, ok)
	require.Equal(t, exitCompileError, ee.code)
}

func TestInterpretRuntimeError(t *testing.T) {
	path := writeProgram(t, "(+ missing 1)")
	err := interpret(path)
	require.Error(t, err)
	ee, ok := err.(*exitError)
	require.True(t, ok)
	require.Equal(t, exitRuntimeError, ee.code)
}

func TestInterpretMissingFile(t *testing.T) {
	err := interpret(filepath.Join(t.TempDir(), "does-not-exist.sexp"))
	require.Error(t, err)
	ee, ok := err.(*exitError)
	require.True(t, ok)
	require.Equal(t, exitRuntimeError, ee.code)
}
