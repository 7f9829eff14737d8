package analysis

import (
	_ "embed"
	"strings"
)

//go:embed prompts/wall.txt
var wallPrompt string

// Prompt is the instruction sent with every wall photo.
var Prompt = strings.TrimSpace(wallPrompt)
