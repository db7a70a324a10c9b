package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrs(t *testing.T) {
	attrs, err := parseAttrs([]string{"T=DT_FLOAT", "Tidx=int64"})
	require.NoError(t, err)
	assert.Equal(t, map[string]constants.DataType{"T": constants.DTFloat, "Tidx": constants.DTInt64}, attrs)

	for _, bad := range [][]string{{"T"}, {"=DT_FLOAT"}, {"T=DT_NOPE"}, {"T=float32", "T=int32"}} {
		_, err := parseAttrs(bad)
		assert.Error(t, err, bad)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildRendersManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kernels:
  - op: D
    devices: [CPU, GPU]
    constraints:
      - name: W
        types: [DT_DOUBLE, DT_STRING]
    host_memory: [in]
`), 0o644))

	out, err := runCLI(t, "build", path)
	require.NoError(t, err)

	docs := strings.Split(out, "---\n")
	require.Len(t, docs, 2)
	for i, device := range []constants.DeviceType{constants.DeviceCPU, constants.DeviceGPU} {
		got, err := kernel.UnmarshalText(docs[i])
		require.NoError(t, err)
		assert.Equal(t, "D", got.Op)
		assert.Equal(t, device, got.DeviceType)
		assert.True(t, got.IsHostMemoryArg("in"))
		c, ok := got.Constraint("W")
		require.True(t, ok)
		assert.Equal(t, []constants.DataType{constants.DTDouble, constants.DTString}, c.AllowedTypes)
	}
}

func TestBuildJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernels:\n  - op: A\n    devices: [CPU]\n    priority: 3\n"), 0o644))

	out, err := runCLI(t, "build", "-o", "json", path)
	require.NoError(t, err)

	got, err := kernel.UnmarshalProtoJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, kernel.KernelDef{Op: "A", DeviceType: constants.DeviceCPU, Priority: 3}, got)
}

func TestBuildRejectsInvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernels:\n  - op: A\n    devices: [CPU]\n    host_memory: [x, x]\n"), 0o644))

	_, err := runCLI(t, "build", path)
	assert.ErrorIs(t, err, kernel.ErrInvalidArgument)
}

func TestUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernels:\n  - op: A\n    devices: [CPU]\n"), 0o644))

	_, err := runCLI(t, "build", "-o", "yaml", path)
	assert.ErrorContains(t, err, "unknown output format")
}
