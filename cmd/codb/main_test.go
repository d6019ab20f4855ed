package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// invoke runs the CLI with quiet logging and returns exit code, stdout and stderr.
func invoke(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	argv := append([]string{"codb", "--log-level", "error"}, args...)
	code := run(argv, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestRunDemo(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := invoke(t, "demo")
	require.Zero(t, code, stderr)
	require.Equal(t, "value = \"1\"\n", stdout)
}

func TestRunDiskRoundTrip(t *testing.T) {
	t.Parallel()

	disk := []string{"--backend", "disk", "--path", filepath.Join(t.TempDir(), "cli.db")}
	with := func(args ...string) []string {
		return append(append([]string{}, disk...), args...)
	}

	code, _, stderr := invoke(t, with("put", "greeting", "hello")...)
	require.Zero(t, code, stderr)

	code, stdout, stderr := invoke(t, with("get", "greeting")...)
	require.Zero(t, code, stderr)
	require.Equal(t, "hello\n", stdout)

	code, stdout, _ = invoke(t, with("has", "greeting")...)
	require.Zero(t, code)
	require.Equal(t, "true\n", stdout)

	code, stdout, _ = invoke(t, with("size")...)
	require.Zero(t, code)
	require.Equal(t, "13 bytes (13 B)\n", stdout)

	code, stdout, _ = invoke(t, with("stats")...)
	require.Zero(t, code)

	var report statsReport
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))
	require.Equal(t, statsReport{Backend: "disk", KeyCount: 1, SizeBytes: 13, Size: "13 B"}, report)

	code, stdout, _ = invoke(t, with("ping")...)
	require.Zero(t, code)
	require.Equal(t, "ok\n", stdout)

	code, _, _ = invoke(t, with("delete", "greeting")...)
	require.Zero(t, code)

	code, _, _ = invoke(t, with("rm", "greeting")...)
	require.Zero(t, code)

	code, stdout, stderr = invoke(t, with("get", "greeting")...)
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "NotFoundError")

	code, stdout, _ = invoke(t, with("has", "greeting")...)
	require.Zero(t, code)
	require.Equal(t, "false\n", stdout)
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "codb.yaml")
	dbPath := filepath.Join(dir, "from-config.db")

	require.NoError(t, os.WriteFile(configPath, []byte("backend: disk\ndisk:\n  path: "+dbPath+"\n"), 0o600))

	code, _, stderr := invoke(t, "--config", configPath, "put", "k", "v")
	require.Zero(t, code, stderr)
	require.FileExists(t, dbPath)

	code, stdout, _ := invoke(t, "--config", configPath, "get", "k")
	require.Zero(t, code)
	require.Equal(t, "v\n", stdout)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		args   []string
		stderr string
	}{
		{
			name:   "missing arguments",
			args:   []string{"put", "only-key"},
			stderr: "error: usage: codb put <key> <value>",
		},
		{
			name:   "unknown backend",
			args:   []string{"--backend", "tape", "ping"},
			stderr: "OptionsInvalidError",
		},
		{
			name:   "memory store forgets between runs",
			args:   []string{"get", "a"},
			stderr: "NotFoundError",
		},
		{
			name:   "path is a directory",
			args:   []string{"--backend", "disk", "--path", os.TempDir(), "ping"},
			stderr: "DiskPathError",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			code, stdout, stderr := invoke(t, tc.args...)
			require.Equal(t, 1, code)
			require.Empty(t, stdout)
			require.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "unknown", humanSize(-1))
	require.Equal(t, "0 B", humanSize(0))
	require.Equal(t, "1.5 KiB", humanSize(1536))
}
