// Package shellenv composes the user's shell configuration without
// clobbering content it did not write. Everything kenki owns lives in
// one marked block; the rest of the file is passed through untouched.
package shellenv

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	beginMarker = "# >>> kenki managed >>>"
	endMarker   = "# <<< kenki <<<"
)

// now is a seam for deterministic backup names in tests.
var now = time.Now

// ManagedBlock returns the kenki-owned section of the rc file: assistant
// aliases, PATH export, and the prompt hook.
func ManagedBlock(assistantPath string) string {
	var b strings.Builder
	b.WriteString(beginMarker + "\n")
	b.WriteString("# Managed by kenkictl; edits inside this block are overwritten.\n")
	fmt.Fprintf(&b, "alias kenki='%s'\n", assistantPath)
	fmt.Fprintf(&b, "alias kenki-explain='%s explain'\n", assistantPath)
	fmt.Fprintf(&b, "alias kenki-translate='%s translate'\n", assistantPath)
	fmt.Fprintf(&b, "alias kenki-voice='%s --voice'\n", assistantPath)
	b.WriteString("export KENKI_CONFIG=/etc/kenki/ai-assist/config.json\n")
	b.WriteString("export PATH=\"$PATH:/opt/kenki/bin\"\n")
	b.WriteString("kenki_prompt_hook() { KENKI_LAST_STATUS=$?; }\n")
	b.WriteString("precmd_functions+=(kenki_prompt_hook)\n")
	b.WriteString(endMarker + "\n")
	return b.String()
}

// Compose writes or updates the managed block in the rc file at path.
// A pre-existing file keeps all of its own content; only the block
// between the markers is replaced. Returns true when the file changed.
func Compose(path, assistantPath string) (bool, error) {
	block := ManagedBlock(assistantPath)

	existing, err := os.ReadFile(path) // #nosec G304
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(block), 0o644); err != nil {
			return false, fmt.Errorf("failed to write shell rc: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read shell rc: %w", err)
	}

	updated, err := replaceBlock(string(existing), block)
	if err != nil {
		return false, err
	}
	if updated == string(existing) {
		return false, nil
	}

	backup := fmt.Sprintf("%s.bak.%s", path, now().UTC().Format("2006-01-02T15-04-05Z"))
	if err := os.WriteFile(backup, existing, 0o600); err != nil {
		return false, fmt.Errorf("failed to back up shell rc: %w", err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, fmt.Errorf("failed to update shell rc: %w", err)
	}
	return true, nil
}

// replaceBlock swaps the marked section for block, or appends the block
// when no markers exist yet. A begin marker without an end marker means
// the file was hand-mangled; refuse rather than guess where kenki's
// content stops.
func replaceBlock(content, block string) (string, error) {
	start := strings.Index(content, beginMarker)
	if start < 0 {
		sep := "\n"
		if strings.HasSuffix(content, "\n") || content == "" {
			sep = ""
		}
		return content + sep + "\n" + block, nil
	}

	end := strings.Index(content[start:], endMarker)
	if end < 0 {
		return "", fmt.Errorf("shell rc has an unterminated kenki block (missing %q)", endMarker)
	}
	end = start + end + len(endMarker)
	// Swallow the trailing newline of the old block so replacement is stable.
	if end < len(content) && content[end] == '\n' {
		end++
	}

	return content[:start] + block + content[end:], nil
}
