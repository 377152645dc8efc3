package machine_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/via-lang/via/lang/compiler"
	"github.com/via-lang/via/lang/machine"
)

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, diags := compiler.Compile([]byte(src))
	require.False(t, diags.HasErrors(), "compile errors: %v", diags.Records())
	require.NotNil(t, prog)

	var out bytes.Buffer
	th := &machine.Thread{Name: t.Name(), Stdout: &out}
	_, err := th.Run(context.Background(), prog)
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := runSource(t, `print 1 + 2 * 3`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestWhileLoopCountdown(t *testing.T) {
	out, err := runSource(t, `
local n: int = 3
while n > 0 {
	n--
}
print n
`)
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, err := runSource(t, `
fn fib(n: int) -> int {
	if n < 2 {
		return n
	}
	return fib(n - 1) + fib(n - 2)
}
print fib(10)
`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestArrayAutoGrow(t *testing.T) {
	out, err := runSource(t, `
local a = [1, 2, 3]
a[5] = 9
print #a
`)
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestClosureCounter(t *testing.T) {
	out, err := runSource(t, `
fn make_counter() -> int {
	local count: int = 0
	fn bump() -> int {
		count++
		return count
	}
	print bump()
	print bump()
	return count
}
make_counter()
`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestEscapingClosureCounter(t *testing.T) {
	out, err := runSource(t, `
fn mk() -> () -> int {
	local c: int = 0
	fn inc() -> int {
		c = c + 1
		return c
	}
	return inc
}
local g: () -> int = mk()
print g()
print g()
`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestDivisionByZeroTraceback(t *testing.T) {
	_, err := runSource(t, `
local x: int = 1
local y: int = 0
print x / y
`)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "division by zero") ||
		strings.Contains(err.Error(), "Division by zero"))
}

func TestTryCatchesError(t *testing.T) {
	out, err := runSource(t, `
fn boom() -> int {
	error "kaboom"
	return 0
}
local msg: string = try boom()
print msg
`)
	require.NoError(t, err)
	assert.Equal(t, "kaboom\n", out)
}

func TestDeepEqArrays(t *testing.T) {
	out, err := runSource(t, `
local a = [1, 2, 3]
local b = [1, 2, 3]
print deep_eq(a, b)
`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}
