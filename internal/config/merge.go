package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// backupTimeFormat is used for backup file suffixes. UTC so two machines
// provisioning the same image produce comparable names.
const backupTimeFormat = "2006-01-02T15-04-05Z"

// now is a seam for tests that need deterministic backup names.
var now = time.Now

// Merge applies patch to the document at path and writes the result back
// atomically. The pre-merge file, if one existed, is first copied to a
// timestamped backup next to it. A missing file starts from the default
// skeleton. Returns the merged document.
func Merge(path string, patch map[string]any) (Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}

	deepMerge(doc, patch)

	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := backup(path); err != nil {
			return nil, err
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return nil, err
	}
	return doc, nil
}

// backup copies the current file at path to path.bak.<timestamp>.
func backup(path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read config for backup: %w", err)
	}
	dst := fmt.Sprintf("%s.bak.%s", path, now().UTC().Format(backupTimeFormat))
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config backup: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path. Rename within one filesystem is atomic, so
// readers never observe a half-written document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
