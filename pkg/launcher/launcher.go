// Package launcher renders the self-contained shell launcher installed under
// apps/. The launcher embeds the built escript as base64, refuses to run on a
// runtime other than the one it was built with, and otherwise unpacks the
// escript to a temporary file and executes it with the caller's arguments.
package launcher

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// LineWidth is the width of the base64 payload lines.
	LineWidth = 76
	// PayloadDelimiter terminates the payload here-document.
	PayloadDelimiter = "__GLEAM_PKG_PAYLOAD__"

	payloadStart = "base64 -d > \"$TMP\" <<'" + PayloadDelimiter + "'"
)

// ErrNoPayload is returned by ExtractPayload for scripts without an embedded payload.
var ErrNoPayload = errors.New("launcher has no embedded payload")

// Spec describes a launcher to render.
type Spec struct {
	// Name of the installed command, used in diagnostics and temp file names.
	Name string
	// CompiledVersion is the runtime fingerprint recorded at build time.
	CompiledVersion string
	// VersionQuery re-queries the runtime when the launcher starts.
	VersionQuery []string
	// Payload is the escript to embed.
	Payload []byte
}

// Render returns the launcher script for spec. The script is parsed before
// it is returned so a rendering bug never reaches apps/.
func Render(spec Spec) ([]byte, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: launcher name cannot be empty", pkgerrors.ErrPackaging)
	}
	if len(spec.Payload) == 0 {
		return nil, fmt.Errorf("%w: executable for %s is empty", pkgerrors.ErrPackaging, spec.Name)
	}
	if len(spec.VersionQuery) == 0 {
		return nil, fmt.Errorf("%w: no runtime version query configured", pkgerrors.ErrPackaging)
	}

	name, err := quote(spec.Name)
	if err != nil {
		return nil, err
	}
	tmpName, err := quote(spec.Name + ".XXXXXX")
	if err != nil {
		return nil, err
	}
	compiled, err := quote(spec.CompiledVersion)
	if err != nil {
		return nil, err
	}
	query := make([]string, len(spec.VersionQuery))
	for i, arg := range spec.VersionQuery {
		if query[i], err = quote(arg); err != nil {
			return nil, err
		}
	}

	var b bytes.Buffer
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# %s launcher generated by gleam-pkg. Do not edit.\n", spec.Name)
	fmt.Fprintf(&b, "COMPILED_VERSION=%s\n", compiled)
	fmt.Fprintf(&b, "CURRENT_VERSION=$(%s 2>/dev/null)\n", strings.Join(query, " "))
	b.WriteString("if [ \"$CURRENT_VERSION\" != \"$COMPILED_VERSION\" ]; then\n")
	fmt.Fprintf(&b, "  printf '%%s: runtime version mismatch: built for %%s, found %%s\\n' %s \"$COMPILED_VERSION\" \"${CURRENT_VERSION:-none}\" >&2\n", name)
	fmt.Fprintf(&b, "  printf '%%s: reinstall it with gleam-pkg to rebuild against the current runtime\\n' %s >&2\n", name)
	b.WriteString("  exit 1\n")
	b.WriteString("fi\n")
	fmt.Fprintf(&b, "TMP=$(mktemp \"${TMPDIR:-/tmp}\"/%s) || exit 1\n", tmpName)
	b.WriteString(payloadStart + "\n")
	writePayload(&b, spec.Payload)
	b.WriteString(PayloadDelimiter + "\n")
	b.WriteString("chmod +x \"$TMP\"\n")
	b.WriteString("\"$TMP\" \"$@\"\n")
	b.WriteString("STATUS=$?\n")
	b.WriteString("rm -f \"$TMP\"\n")
	b.WriteString("exit $STATUS\n")

	if err := Validate(b.Bytes()); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Validate checks that script parses as POSIX shell.
func Validate(script []byte) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(bytes.NewReader(script), "launcher"); err != nil {
		return fmt.Errorf("%w: generated launcher is not valid shell: %w", pkgerrors.ErrPackaging, err)
	}
	return nil
}

// ExtractPayload decodes the escript embedded in a launcher script.
func ExtractPayload(script []byte) ([]byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(script))
	inPayload := false
	var encoded strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case !inPayload && line == payloadStart:
			inPayload = true
		case inPayload && line == PayloadDelimiter:
			return base64.StdEncoding.DecodeString(encoded.String())
		case inPayload:
			encoded.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoPayload
}

func writePayload(b *bytes.Buffer, payload []byte) {
	encoded := base64.StdEncoding.EncodeToString(payload)
	for len(encoded) > LineWidth {
		b.WriteString(encoded[:LineWidth])
		b.WriteByte('\n')
		encoded = encoded[LineWidth:]
	}
	b.WriteString(encoded)
	b.WriteByte('\n')
}

func quote(s string) (string, error) {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("%w: cannot quote %q for the launcher: %w", pkgerrors.ErrPackaging, s, err)
	}
	return q, nil
}
