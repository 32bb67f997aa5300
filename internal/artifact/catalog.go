// Package artifact selects and fetches local model files for the
// assistant's offline backend.
package artifact

import "fmt"

// ModelArtifact is one downloadable model in the fixed catalog.
// Size is the publisher's declared size, used for the pre-download
// disk budget check.
type ModelArtifact struct {
	ID       string
	Name     string
	URL      string
	Size     uint64
	Filename string
}

// DefaultCatalog returns the models offered by the provisioner. The
// full-size instruct models come first, the lightweight fallbacks last.
func DefaultCatalog() []ModelArtifact {
	return []ModelArtifact{
		{
			ID:       "mistral-7b-instruct-q4",
			Name:     "Mistral 7B Instruct (Q4_K_M)",
			URL:      "https://huggingface.co/TheBloke/Mistral-7B-Instruct-v0.2-GGUF/resolve/main/mistral-7b-instruct-v0.2.Q4_K_M.gguf",
			Size:     4_368_439_584,
			Filename: "mistral-7b-instruct-v0.2.Q4_K_M.gguf",
		},
		{
			ID:       "llama-3-8b-instruct-q4",
			Name:     "Llama 3 8B Instruct (Q4_K_M)",
			URL:      "https://huggingface.co/QuantFactory/Meta-Llama-3-8B-Instruct-GGUF/resolve/main/Meta-Llama-3-8B-Instruct.Q4_K_M.gguf",
			Size:     4_920_734_656,
			Filename: "meta-llama-3-8b-instruct.Q4_K_M.gguf",
		},
		{
			ID:       "phi-3-mini-q4",
			Name:     "Phi-3 Mini 4K Instruct (Q4)",
			URL:      "https://huggingface.co/microsoft/Phi-3-mini-4k-instruct-gguf/resolve/main/Phi-3-mini-4k-instruct-q4.gguf",
			Size:     2_393_231_072,
			Filename: "phi-3-mini-4k-instruct-q4.gguf",
		},
		{
			ID:       "tinyllama-1.1b-q4",
			Name:     "TinyLlama 1.1B Chat (Q4_K_M)",
			URL:      "https://huggingface.co/TheBloke/TinyLlama-1.1B-Chat-v1.0-GGUF/resolve/main/tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf",
			Size:     669_262_336,
			Filename: "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf",
		},
	}
}

// InvalidSelectionError reports a menu choice outside the catalog.
// Selection never falls back to a default entry.
type InvalidSelectionError struct {
	Choice int
	Bound  int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid model selection %d: must be between 0 and %d", e.Choice, e.Bound-1)
}

// Select validates a catalog index and returns the chosen artifact.
// Pure: no I/O, so the prompt loop can be tested without a filesystem.
func Select(catalog []ModelArtifact, index int) (ModelArtifact, error) {
	if index < 0 || index >= len(catalog) {
		return ModelArtifact{}, &InvalidSelectionError{Choice: index, Bound: len(catalog)}
	}
	return catalog[index], nil
}

// ByID finds a catalog entry by its ID. Used by the --model flag.
func ByID(catalog []ModelArtifact, id string) (ModelArtifact, error) {
	for _, art := range catalog {
		if art.ID == id {
			return art, nil
		}
	}
	return ModelArtifact{}, fmt.Errorf("unknown model %q", id)
}
