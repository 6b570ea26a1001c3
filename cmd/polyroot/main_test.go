package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSolve_Text(t *testing.T) {
	out, _, err := run(t, "solve", "-c", "1,0,-4")
	require.NoError(t, err)
	assert.Contains(t, out, "P(x) = x^2 - 4")
	assert.Contains(t, out, "x1 = ")
	assert.Contains(t, out, "x2 = ")
	assert.NotContains(t, out, "not reported")
}

func TestSolve_JSON(t *testing.T) {
	out, _, err := run(t, "solve", "-c", "1,-6,11,-6", "--json")
	require.NoError(t, err)

	var got solveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "x^3 - 6*x^2 + 11*x - 6", got.Polynomial)
	require.Len(t, got.Roots, 3)
	for i, want := range []float64{1, 2, 3} {
		assert.InDelta(t, want, got.Roots[i], 1e-4)
		assert.Less(t, got.Residuals[i], 1e-6)
	}
}

func TestSolve_NoRealRoots(t *testing.T) {
	out, _, err := run(t, "solve", "-c", "1,0,1")
	require.NoError(t, err)
	assert.Contains(t, out, "no real roots found")
}

func TestSolve_ReportsMissingRoots(t *testing.T) {
	// x^3 - x^2 + x - 1 = (x - 1)(x^2 + 1)
	out, _, err := run(t, "solve", "-c", "1,-1,1,-1")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 roots not reported")
}

func TestSolve_DedupFlag(t *testing.T) {
	out, _, err := run(t, "solve", "-c", "1,-2,1", "--dedup", "0", "--json")
	require.NoError(t, err)
	var got solveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Roots, 2)

	out, _, err = run(t, "solve", "-c", "1,-2,1", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Roots, 1)
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing coeffs", []string{"solve"}, `required flag(s) "coeffs" not set`},
		{"zero leading", []string{"solve", "-c", "0,1"}, "leading coefficient cannot be zero"},
		{"constant", []string{"solve", "-c", "5"}, "at least two coefficients"},
		{"overflowing root", []string{"solve", "-c", "1e-310,1", "--json"}, "outside the float64 range"},
		{"bad epsilon", []string{"solve", "-c", "1,-1", "--epsilon", "0"}, "epsilon must be positive"},
		{"bad log level", []string{"solve", "-c", "1,-1", "--log-level", "loud"}, "unknown log level"},
		{"missing config", []string{"solve", "-c", "1,-1", "--config", "/does/not/exist.yaml"}, "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSolve_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyroot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  seeds: [100]\n"), 0o600))

	out, _, err := run(t, "solve", "-c", "1,0,-4", "--json", "--config", path)
	require.NoError(t, err)
	var got solveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Roots, 2)
	assert.InDelta(t, 2, got.Roots[0], 1e-4)
}

func TestSolve_DebugLogging(t *testing.T) {
	_, stderr, err := run(t, "solve", "-c", "1,0,1", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no seed produced a new root")
}

func TestEval(t *testing.T) {
	out, _, err := run(t, "eval", "-c", "1,-6,11,-6", "-x", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "P(2)  = 0")
	assert.Contains(t, out, "P'(2) = -1")
}

func TestSchema(t *testing.T) {
	out, _, err := run(t, "schema")
	require.NoError(t, err)
	var v any
	assert.NoError(t, json.Unmarshal([]byte(out), &v))
}

func TestServe_RejectsBadPort(t *testing.T) {
	_, _, err := run(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port")
}
