// Package envsnap reads and writes the user environment snapshot shared
// between the grading setup and the harness. The snapshot is a flat file of
// NUL-delimited KEY=VALUE entries captured before any test runs, so checks
// can execute commands under the user's own environment rather than the
// privileged harness one.
package envsnap

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/refutils/go-refutils/console"
)

// DefaultPath is where the grading setup leaves the snapshot.
const DefaultPath = "/tmp/.user_environ"

// Load parses the snapshot at path. Malformed entries are logged and
// skipped rather than aborting the load.
func Load(fsys afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, entry := range bytes.Split(data, []byte{0}) {
		if len(entry) == 0 {
			continue
		}
		k, v, ok := strings.Cut(string(entry), "=")
		if !ok || k == "" {
			console.Warnf("skipping malformed environment entry %q", string(entry))
			continue
		}
		env[k] = v
	}
	return env, nil
}

// Environ returns the snapshot as sorted KEY=VALUE pairs suitable for
// execve, recording lastCmd as the shell's last-command entry.
func Environ(fsys afero.Fs, path, lastCmd string) ([]string, error) {
	env, err := Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if lastCmd != "" {
		env["_"] = lastCmd
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out, nil
}

// Capture writes the current process environment to path in snapshot
// format, replacing any previous snapshot.
func Capture(fsys afero.Fs, path string) error {
	var buf bytes.Buffer
	for _, kv := range os.Environ() {
		buf.WriteString(kv)
		buf.WriteByte(0)
	}
	return afero.WriteFile(fsys, path, buf.Bytes(), 0o644)
}
