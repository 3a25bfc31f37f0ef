package config

import (
	"errors"
	"fmt"
)

var validExtractionEngines = map[string]bool{
	"native":    true,
	"pdftotext": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateArXiv(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/precis/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'precis config init')", defaultPath)
	}
	if c.LLM.BaseURL == "" {
		return errors.New("llm.base_url must be set")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.MaxCompletionTokens <= 0 {
		return errors.New("llm.max_completion_tokens must be positive")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateArXiv() error {
	if c.ArXiv.BaseURL == "" {
		return errors.New("arxiv.base_url must be set")
	}
	if c.ArXiv.Listing == "" {
		return errors.New("arxiv.listing must be set")
	}
	if c.ArXiv.MaxPapers <= 0 {
		return errors.New("arxiv.max_papers must be positive")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if !validExtractionEngines[c.Extraction.Engine] {
		return fmt.Errorf("extraction.engine: unsupported value %q (use \"native\" or \"pdftotext\")", c.Extraction.Engine)
	}
	if err := ensurePositiveMap(map[string]int{
		"extraction.timeout_seconds": c.Extraction.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Extraction.MinPDFBytes <= 0 {
		return errors.New("extraction.min_pdf_bytes must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.group_size":           c.Workflow.GroupSize,
		"workflow.http_timeout_seconds": c.Workflow.HTTPTimeoutSeconds,
	})
}

func (c *Config) validateNotifications() error {
	return ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
