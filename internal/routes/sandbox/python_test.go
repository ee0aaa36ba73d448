package sandbox

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed, skipping Python sandbox test")
	}
}

func TestPythonInvoke(t *testing.T) {
	requirePython(t)
	host := NewHost("")

	unit, err := host.Compile(context.Background(), domain.LangPython,
		`return {"s": int(params["a"]) + int(params["b"])}`)
	require.NoError(t, err)
	defer unit.Release()

	out, err := unit.Invoke(context.Background(), map[string]any{"a": "2", "b": "3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": float64(5)}, out)
}

func TestPythonSessionSurvivesInvocations(t *testing.T) {
	requirePython(t)
	host := NewHost("")

	unit, err := host.Compile(context.Background(), domain.LangPython, `return params`)
	require.NoError(t, err)
	defer unit.Release()

	for i := 0; i < 3; i++ {
		out, err := unit.Invoke(context.Background(), map[string]any{"x": float64(i)})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"x": float64(i)}, out)
	}
}

func TestPythonCompileErrorYieldsStub(t *testing.T) {
	requirePython(t)
	host := NewHost("")

	unit, err := host.Compile(context.Background(), domain.LangPython, `def broken(:`)
	require.Error(t, err)
	require.NotNil(t, unit)

	out, ierr := unit.Invoke(context.Background(), nil)
	require.NoError(t, ierr)
	body := out.(map[string]any)
	assert.Equal(t, "Python compilation error", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestPythonGuestExceptionIsReported(t *testing.T) {
	requirePython(t)
	host := NewHost("")

	unit, err := host.Compile(context.Background(), domain.LangPython,
		`raise ValueError("bad input")`)
	require.NoError(t, err)
	defer unit.Release()

	out, ierr := unit.Invoke(context.Background(), map[string]any{})
	require.NoError(t, ierr)

	body, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, body["error"], "Python execution error")
	assert.Contains(t, body["error"], "bad input")
	assert.NotEmpty(t, body["details"])
}

func TestPythonTimeoutKillsAndRestarts(t *testing.T) {
	requirePython(t)
	host := NewHost("")

	unit, err := host.Compile(context.Background(), domain.LangPython,
		`
if params.get("spin"):
    while True:
        pass
return "ok"`)
	require.NoError(t, err)
	defer unit.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, ierr := unit.Invoke(ctx, map[string]any{"spin": true})
	assert.ErrorIs(t, ierr, context.DeadlineExceeded)

	// The next invocation restarts the interpreter.
	out, err := unit.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
