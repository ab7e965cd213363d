package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Tailor.CustomPrompts.SystemPrompts, &loadedPrompts.Tailor.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load tailor system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Tailor.CustomPrompts.UserPrompts, &loadedPrompts.Tailor.UserPrompts); err != nil {
		return fmt.Errorf("failed to load tailor user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Analyze.CustomPrompts.SystemPrompts, &loadedPrompts.Analyze.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load analyze system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Analyze.CustomPrompts.UserPrompts, &loadedPrompts.Analyze.UserPrompts); err != nil {
		return fmt.Errorf("failed to load analyze user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Structure.CustomPrompts.SystemPrompts, &loadedPrompts.Structure.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load structure system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Structure.CustomPrompts.UserPrompts, &loadedPrompts.Structure.UserPrompts); err != nil {
		return fmt.Errorf("failed to load structure user prompts: %w", err)
	}

	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.TailorSectionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorSectionsFile, "system", "tailorSections")
		if err != nil {
			return err
		}
		target.TailorSections = content
	}

	if prompts.AnalyzeATSFile != "" {
		content, err := c.loadPromptFromFile(prompts.AnalyzeATSFile, "system", "analyzeATS")
		if err != nil {
			return err
		}
		target.AnalyzeATS = content
	}

	if prompts.StructureResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.StructureResumeFile, "system", "structureResume")
		if err != nil {
			return err
		}
		target.StructureResume = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.TailorSectionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorSectionsFile, "user", "tailorSections")
		if err != nil {
			return err
		}
		target.TailorSections = content
	}

	if prompts.AnalyzeATSFile != "" {
		content, err := c.loadPromptFromFile(prompts.AnalyzeATSFile, "user", "analyzeATS")
		if err != nil {
			return err
		}
		target.AnalyzeATS = content
	}

	if prompts.StructureResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.StructureResumeFile, "user", "structureResume")
		if err != nil {
			return err
		}
		target.StructureResume = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// promptFilePaths returns every configured prompt file path, deduplicated.
// The prompt watcher uses this set to know what to watch.
func (c *Config) promptFilePaths() []string {
	candidates := []string{
		c.AI.CustomPrompts.SystemPrompts.TailorSectionsFile,
		c.AI.CustomPrompts.SystemPrompts.AnalyzeATSFile,
		c.AI.CustomPrompts.SystemPrompts.StructureResumeFile,
		c.AI.CustomPrompts.UserPrompts.TailorSectionsFile,
		c.AI.CustomPrompts.UserPrompts.AnalyzeATSFile,
		c.AI.CustomPrompts.UserPrompts.StructureResumeFile,
		c.AI.Tailor.CustomPrompts.SystemPrompts.TailorSectionsFile,
		c.AI.Tailor.CustomPrompts.UserPrompts.TailorSectionsFile,
		c.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeATSFile,
		c.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeATSFile,
		c.AI.Structure.CustomPrompts.SystemPrompts.StructureResumeFile,
		c.AI.Structure.CustomPrompts.UserPrompts.StructureResumeFile,
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range candidates {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.TailorSectionsFile, "system", "tailorSections")
	validateFile(c.AI.CustomPrompts.SystemPrompts.AnalyzeATSFile, "system", "analyzeATS")
	validateFile(c.AI.CustomPrompts.SystemPrompts.StructureResumeFile, "system", "structureResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.TailorSectionsFile, "user", "tailorSections")
	validateFile(c.AI.CustomPrompts.UserPrompts.AnalyzeATSFile, "user", "analyzeATS")
	validateFile(c.AI.CustomPrompts.UserPrompts.StructureResumeFile, "user", "structureResume")

	// Validate operation-specific prompt files
	validateFile(c.AI.Tailor.CustomPrompts.SystemPrompts.TailorSectionsFile, "tailor system", "tailorSections")
	validateFile(c.AI.Tailor.CustomPrompts.UserPrompts.TailorSectionsFile, "tailor user", "tailorSections")
	validateFile(c.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeATSFile, "analyze system", "analyzeATS")
	validateFile(c.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeATSFile, "analyze user", "analyzeATS")
	validateFile(c.AI.Structure.CustomPrompts.SystemPrompts.StructureResumeFile, "structure system", "structureResume")
	validateFile(c.AI.Structure.CustomPrompts.UserPrompts.StructureResumeFile, "structure user", "structureResume")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts.
// Callers must hold loadedPromptsMu.
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.TailorSections, "[CONFIG] Global system tailor prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.AnalyzeATS, "[CONFIG] Global system analyze prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.StructureResume, "[CONFIG] Global system structure prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.TailorSections, "[CONFIG] Global user tailor prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.AnalyzeATS, "[CONFIG] Global user analyze prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.StructureResume, "[CONFIG] Global user structure prompt: loaded from file"},
		{loadedPrompts.Tailor.SystemPrompts.TailorSections, "[CONFIG] Tailor-specific system prompt: loaded from file"},
		{loadedPrompts.Tailor.UserPrompts.TailorSections, "[CONFIG] Tailor-specific user prompt: loaded from file"},
		{loadedPrompts.Analyze.SystemPrompts.AnalyzeATS, "[CONFIG] Analyze-specific system prompt: loaded from file"},
		{loadedPrompts.Analyze.UserPrompts.AnalyzeATS, "[CONFIG] Analyze-specific user prompt: loaded from file"},
		{loadedPrompts.Structure.SystemPrompts.StructureResume, "[CONFIG] Structure-specific system prompt: loaded from file"},
		{loadedPrompts.Structure.UserPrompts.StructureResume, "[CONFIG] Structure-specific user prompt: loaded from file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
