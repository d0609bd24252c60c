package usi_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeScript writes a POSIX shell script to a temp file and makes it
// executable, returning its path. Used to stand in for a real USI engine
// binary in tests.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake-engine harness assumes a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "fake-engine.sh")
	require := os.WriteFile(path, []byte(body), 0o755)
	if require != nil {
		t.Fatalf("write script: %v", require)
	}
	return path
}
