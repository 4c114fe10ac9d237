package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalc(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"driving outside", []string{"calc", "--activity=C", "--driving", "--destination=outside"}, "¥15,000 (fixed)"},
		{"work day flag", []string{"calc", "--activity=A", "--work-day"}, "can only be selected on holidays"},
		{"classified date", []string{"calc", "--activity=b", "--date=2025-01-01"}, "Holiday (New Year's Day)"},
		{"legacy other", []string{"calc", "--activity=OTHER"}, "¥6,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCalc_MasterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allowance_types:\n  - code: A\n    base_amount: 2600\n"), 0o600))

	out, err := run(t, "calc", "--activity=A", "--master="+path)
	require.NoError(t, err)
	assert.Contains(t, out, "¥2,600 (master)")

	// The master path prices the legacy code at zero
	out, err = run(t, "calc", "--activity=OTHER", "--master="+path)
	require.NoError(t, err)
	assert.Contains(t, out, "¥0 (master)")
}

func TestCalc_RequiresActivity(t *testing.T) {
	_, err := run(t, "calc")
	assert.Error(t, err)
}

func TestMasterDefaults(t *testing.T) {
	out, err := run(t, "master", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "allowance_types:")
	assert.Contains(t, out, "code: Disaster")
}

func TestMasterImport(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.yaml")
	require.NoError(t, os.WriteFile(master, []byte("allowance_types:\n  - code: F\n    base_amount: 2800\n"), 0o600))
	t.Setenv("STIPEND_DB_PATH", filepath.Join(dir, "stipend.db"))

	out, err := run(t, "master", "import", master)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 rows")

	_, err = run(t, "master", "import", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
