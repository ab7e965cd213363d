package config

import (
	"sync"
)

// loadedPrompts is mutated by the prompt watcher on file change, so every
// access goes through loadedPromptsMu.
var (
	loadedPrompts     AllLoadedPrompts
	loadedPromptsMu   sync.RWMutex
	loadedPromptsOnce sync.Once
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	TailorSections  string
	AnalyzeATS      string
	StructureResume string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	TailorSections  string
	AnalyzeATS      string
	StructureResume string
}

// OperationLoadedPrompts holds loaded prompts for a specific operation
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global    LoadedPrompts
	Tailor    OperationLoadedPrompts
	Analyze   OperationLoadedPrompts
	Structure OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	switch operationType {
	case "tailor":
		return loadedPrompts.Tailor
	case "analyze":
		return loadedPrompts.Analyze
	case "structure":
		return loadedPrompts.Structure
	default:
		return OperationLoadedPrompts{
			SystemPrompts: loadedPrompts.Global.SystemPrompts,
			UserPrompts:   loadedPrompts.Global.UserPrompts,
		}
	}
}
