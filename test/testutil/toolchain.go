package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Toolchain is a stand-in for gleam and the Erlang runtime query.
type Toolchain struct {
	// Gleam is the path of the fake gleam binary.
	Gleam string
	// VersionQuery prints RuntimeVersion.
	VersionQuery []string
	// CallLog receives one line per gleam invocation.
	CallLog string
}

// FakeToolchain writes a gleam script whose "run" step produces an
// executable {out}/{name} that prints "<name>: <args>". failOn makes the
// given gleam subcommand exit 1.
func FakeToolchain(t *testing.T, runtimeVersion, failOn string) *Toolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain scripts require a POSIX shell")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "calls.log")

	gleam := `#!/bin/sh
echo "$*" >> "` + log + `"
if [ "$1" = "` + failOn + `" ]; then
  echo "error: gleam $1 failed" >&2
  exit 1
fi
if [ "$1" = "run" ]; then
  for arg in "$@"; do
    case "$arg" in --out=*) out="${arg#--out=}" ;; esac
  done
  name=$(sed -n 's/^name = "\(.*\)"$/\1/p' gleam.toml)
  mkdir -p "$out"
  printf '#!/bin/sh\necho "%s: $*"\n' "$name" > "$out/$name"
  chmod +x "$out/$name"
fi
`
	gleamPath := filepath.Join(dir, "gleam")
	require.NoError(t, os.WriteFile(gleamPath, []byte(gleam), 0o755))

	query := filepath.Join(dir, "erl-version")
	require.NoError(t, os.WriteFile(query, []byte("#!/bin/sh\nprintf '%s' '"+runtimeVersion+"'\n"), 0o755))

	return &Toolchain{Gleam: gleamPath, VersionQuery: []string{query}, CallLog: log}
}

// SetRuntimeVersion rewrites the runtime query to report version, as if the
// runtime had been upgraded after an install.
func (tc *Toolchain) SetRuntimeVersion(t *testing.T, version string) {
	t.Helper()
	require.NoError(t, os.WriteFile(tc.VersionQuery[0], []byte("#!/bin/sh\nprintf '%s' '"+version+"'\n"), 0o755))
}
