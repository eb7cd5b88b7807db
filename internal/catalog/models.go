package catalog

import (
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// ModelKind selects the melody generator backend
type ModelKind string

const (
	ModelKindScript ModelKind = "script"
	ModelKindLLM    ModelKind = "llm"
)

// ModelEntry is one melody generator known to the registry
type ModelEntry struct {
	Name     string
	Kind     ModelKind
	Bundle   string // bundle file name under the bundle directory (script models)
	Provider string // "openai" or "gemini" (llm models)
}

// Keywords in prompt text that select a model, in scan order
var modelKeywords = []struct {
	phrase string
	model  string
}{
	{"attention rnn", models.ModelAttentionRNN},
	{"basic rnn", models.ModelBasicRNN},
}

// DefaultModels returns the script bundles shipped by default
func DefaultModels() []ModelEntry {
	return []ModelEntry{
		{Name: models.ModelBasicRNN, Kind: ModelKindScript, Bundle: "basic_rnn.mag"},
		{Name: models.ModelAttentionRNN, Kind: ModelKindScript, Bundle: "attention_rnn.mag"},
	}
}
