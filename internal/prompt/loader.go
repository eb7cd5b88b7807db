package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/magda-compose/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetMelodyInstructions loads the system prompt for LLM melody generation
func (l *Loader) GetMelodyInstructions() (string, error) {
	return strings.TrimSpace(string(embedded.MelodyPromptTxt)), nil
}
