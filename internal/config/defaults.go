package config

const (
	defaultPapersDir          = "~/precis/papers"
	defaultSummaryDir         = "~/precis/summary"
	defaultLogDir             = "~/precis/logs"
	defaultArxivBaseURL       = "https://arxiv.org"
	defaultArxivListing       = "cs.AI"
	defaultArxivMaxPapers     = 100
	defaultLLMBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel           = "gpt-4o-mini"
	defaultLLMMaxTokens       = 2000
	defaultLLMTimeoutSeconds  = 120
	defaultExtractionEngine   = "native"
	defaultExtractionTimeout  = 120
	defaultMinPDFBytes        = 1000
	defaultGroupSize          = 10
	defaultHTTPTimeoutSeconds = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PapersDir:  defaultPapersDir,
			SummaryDir: defaultSummaryDir,
			LogDir:     defaultLogDir,
		},
		ArXiv: ArXiv{
			BaseURL:   defaultArxivBaseURL,
			Listing:   defaultArxivListing,
			MaxPapers: defaultArxivMaxPapers,
		},
		LLM: LLM{
			BaseURL:             defaultLLMBaseURL,
			Model:               defaultLLMModel,
			MaxCompletionTokens: defaultLLMMaxTokens,
			TimeoutSeconds:      defaultLLMTimeoutSeconds,
		},
		Extraction: Extraction{
			Engine:         defaultExtractionEngine,
			TimeoutSeconds: defaultExtractionTimeout,
			MinPDFBytes:    defaultMinPDFBytes,
		},
		Workflow: Workflow{
			GroupSize:          defaultGroupSize,
			HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunStarted:     true,
			RunCompleted:   true,
			Errors:         true,
		},
	}
}
