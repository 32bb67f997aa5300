// Package config loads and mutates the kenki assistant configuration
// document and the provisioning plan.
//
// The assistant configuration is a JSON tree at a fixed path; external
// readers (the assistant itself) tolerate unknown keys, so merging must
// never drop sections it does not understand. The provisioning plan is a
// YAML file consumed only by kenkictl.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// DefaultPath is where the assistant expects its configuration.
const DefaultPath = "/etc/kenki/ai-assist/config.json"

// PlaceholderAPIKey is written on first run so the operator knows what to replace.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Document is the assistant configuration tree. Values are the result of
// json.Unmarshal into map[string]any: objects are map[string]any, numbers
// are float64, and so on.
type Document = map[string]any

// DefaultDocument returns the configuration skeleton written when no
// config file exists yet. The shape matches what the assistant reads.
func DefaultDocument() Document {
	return Document{
		"anthropic_api_key": PlaceholderAPIKey,
		"openai_api_key":    "",
		"local_llm": map[string]any{
			"enabled":    false,
			"model_path": "models/mistral.gguf",
			"endpoint":   "http://localhost:11434",
		},
		"preferences": map[string]any{
			"default_model": "claude",
			"max_tokens":    1000,
			"temperature":   0.7,
		},
		"voice": map[string]any{
			"enabled":   false,
			"engine":    "whisper",
			"wake_word": "kenki",
		},
	}
}

// CorruptConfigError indicates the existing config file could not be parsed.
// The merger refuses to proceed rather than overwrite user data with a
// fresh skeleton.
type CorruptConfigError struct {
	Path string
	Err  error
}

func (e *CorruptConfigError) Error() string {
	return fmt.Sprintf("config file %s is not valid JSON: %v (refusing to overwrite)", e.Path, e.Err)
}

func (e *CorruptConfigError) Unwrap() error { return e.Err }

// Load reads the document at path. A missing file returns the default
// skeleton and no error; an unparsable file returns *CorruptConfigError.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if os.IsNotExist(err) {
		return DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptConfigError{Path: path, Err: err}
	}
	return doc, nil
}

// Encode marshals a document in the canonical on-disk form: two-space
// indent, sorted keys, trailing newline. Applying the same patch twice
// therefore yields byte-identical files.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// deepMerge overlays patch onto base in place. Nested maps are merged
// key by key; any other value in patch replaces the base value. Keys
// absent from patch are never touched.
func deepMerge(base, patch map[string]any) {
	for key, pv := range patch {
		if pm, ok := pv.(map[string]any); ok {
			if bm, ok := base[key].(map[string]any); ok {
				deepMerge(bm, pm)
				continue
			}
			// Base value is not a map: replace with a copy of the patch map
			// so later mutation of the patch cannot alias the document.
			cp := make(map[string]any, len(pm))
			deepMerge(cp, pm)
			base[key] = cp
			continue
		}
		base[key] = pv
	}
}
