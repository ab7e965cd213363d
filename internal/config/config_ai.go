package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.EmbedModel == "" {
		opCfg.EmbedModel = c.AI.EmbedModel
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetTailorConfig returns the AI configuration for tailor operations with fallback to global config
func (c *Config) GetTailorConfig() OperationAIConfig {
	config := c.AI.Tailor

	c.applyOperationDefaults(&config)

	// Apply tailor-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.TailorSections == "" {
		config.CustomPrompts.SystemPrompts.TailorSections = c.AI.CustomPrompts.SystemPrompts.TailorSections
	}
	if config.CustomPrompts.UserPrompts.TailorSections == "" {
		config.CustomPrompts.UserPrompts.TailorSections = c.AI.CustomPrompts.UserPrompts.TailorSections
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.TailorSectionsFile == "" {
		config.CustomPrompts.SystemPrompts.TailorSectionsFile = c.AI.CustomPrompts.SystemPrompts.TailorSectionsFile
	}
	if config.CustomPrompts.UserPrompts.TailorSectionsFile == "" {
		config.CustomPrompts.UserPrompts.TailorSectionsFile = c.AI.CustomPrompts.UserPrompts.TailorSectionsFile
	}

	return config
}

// GetAnalyzeConfig returns the AI configuration for ATS analysis operations with fallback to global config
func (c *Config) GetAnalyzeConfig() OperationAIConfig {
	config := c.AI.Analyze

	c.applyOperationDefaults(&config)

	// Apply analyze-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.AnalyzeATS == "" {
		config.CustomPrompts.SystemPrompts.AnalyzeATS = c.AI.CustomPrompts.SystemPrompts.AnalyzeATS
	}
	if config.CustomPrompts.UserPrompts.AnalyzeATS == "" {
		config.CustomPrompts.UserPrompts.AnalyzeATS = c.AI.CustomPrompts.UserPrompts.AnalyzeATS
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.AnalyzeATSFile == "" {
		config.CustomPrompts.SystemPrompts.AnalyzeATSFile = c.AI.CustomPrompts.SystemPrompts.AnalyzeATSFile
	}
	if config.CustomPrompts.UserPrompts.AnalyzeATSFile == "" {
		config.CustomPrompts.UserPrompts.AnalyzeATSFile = c.AI.CustomPrompts.UserPrompts.AnalyzeATSFile
	}

	return config
}

// GetStructureConfig returns the AI configuration for import structuring operations with fallback to global config
func (c *Config) GetStructureConfig() OperationAIConfig {
	config := c.AI.Structure

	c.applyOperationDefaults(&config)

	// Apply structure-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.StructureResume == "" {
		config.CustomPrompts.SystemPrompts.StructureResume = c.AI.CustomPrompts.SystemPrompts.StructureResume
	}
	if config.CustomPrompts.UserPrompts.StructureResume == "" {
		config.CustomPrompts.UserPrompts.StructureResume = c.AI.CustomPrompts.UserPrompts.StructureResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.StructureResumeFile == "" {
		config.CustomPrompts.SystemPrompts.StructureResumeFile = c.AI.CustomPrompts.SystemPrompts.StructureResumeFile
	}
	if config.CustomPrompts.UserPrompts.StructureResumeFile == "" {
		config.CustomPrompts.UserPrompts.StructureResumeFile = c.AI.CustomPrompts.UserPrompts.StructureResumeFile
	}

	return config
}

// GetLoadedTailorPrompts returns a copy of the loaded prompts for tailor operation
func (c *Config) GetLoadedTailorPrompts() OperationLoadedPrompts {
	return GetPromptsForOperation("tailor")
}

// GetLoadedAnalyzePrompts returns a copy of the loaded prompts for analyze operation
func (c *Config) GetLoadedAnalyzePrompts() OperationLoadedPrompts {
	return GetPromptsForOperation("analyze")
}

// GetLoadedStructurePrompts returns a copy of the loaded prompts for structure operation
func (c *Config) GetLoadedStructurePrompts() OperationLoadedPrompts {
	return GetPromptsForOperation("structure")
}
