package embedded

import (
	_ "embed"
)

// Shipped preset bundles
//
//go:embed data/presets.yaml
var PresetsYAML []byte

// Prompt template for the LLM melody backends
//
//go:embed data/melody_prompt.txt
var MelodyPromptTxt []byte
