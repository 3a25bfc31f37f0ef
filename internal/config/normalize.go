package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArXiv()
	c.normalizeLLM()
	c.normalizeExtraction()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.PapersDir) == "" {
		c.Paths.PapersDir = defaultPapersDir
	}
	if c.Paths.PapersDir, err = expandPath(c.Paths.PapersDir); err != nil {
		return fmt.Errorf("paths.papers_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SummaryDir) == "" {
		c.Paths.SummaryDir = defaultSummaryDir
	}
	if c.Paths.SummaryDir, err = expandPath(c.Paths.SummaryDir); err != nil {
		return fmt.Errorf("paths.summary_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArXiv() {
	c.ArXiv.BaseURL = strings.TrimRight(strings.TrimSpace(c.ArXiv.BaseURL), "/")
	if c.ArXiv.BaseURL == "" {
		c.ArXiv.BaseURL = defaultArxivBaseURL
	}
	c.ArXiv.Listing = strings.TrimSpace(c.ArXiv.Listing)
	if c.ArXiv.Listing == "" {
		c.ArXiv.Listing = defaultArxivListing
	}
	if c.ArXiv.MaxPapers <= 0 {
		c.ArXiv.MaxPapers = defaultArxivMaxPapers
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxCompletionTokens <= 0 {
		c.LLM.MaxCompletionTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.Engine = strings.ToLower(strings.TrimSpace(c.Extraction.Engine))
	if c.Extraction.Engine == "" {
		c.Extraction.Engine = defaultExtractionEngine
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultExtractionTimeout
	}
	if c.Extraction.MinPDFBytes <= 0 {
		c.Extraction.MinPDFBytes = defaultMinPDFBytes
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.GroupSize <= 0 {
		c.Workflow.GroupSize = defaultGroupSize
	}
	if c.Workflow.HTTPTimeoutSeconds <= 0 {
		c.Workflow.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
