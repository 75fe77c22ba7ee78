// Package config loads the orchestrator's YAML configuration, with
// environment-variable interpolation and optional hot-reload, in the
// same shape the teacher's pkg/config carries.
//
// Example file:
//
//	version: "1"
//	server:
//	  address: ":8080"
//	llm:
//	  endpoint: "${LLM_ENDPOINT}"
//	  timeout_seconds: 30
//	tools:
//	  prior_art_search_tool:
//	    kind: mcp
//	    url: "${PRIOR_ART_MCP_URL}"
//	  web_search_tool:
//	    kind: http
//	    url: "${WEB_SEARCH_URL}"
//	job_queue:
//	  max_jobs: 1000
//	  job_ttl_seconds: 3600
//	  terminal_job_ttl_seconds: 600
//	  cleanup_interval_seconds: 300
//	  max_attempts: 3
//	  progress_update_interval_seconds: 2
//	  job_type_estimates:
//	    prior_art_search: 240
//	    claim_drafting: 120
package config

import "time"

// Config is the root configuration value.
type Config struct {
	Version string          `mapstructure:"version"`
	Server  ServerConfig    `mapstructure:"server"`
	LLM     LLMConfig       `mapstructure:"llm"`
	Tools   map[string]Tool `mapstructure:"tools"`
	Queue   QueueConfig     `mapstructure:"job_queue"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
}

// ServerConfig configures the HTTP submission API.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig configures the generic completion client boundary.
type LLMConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	TimeoutSeconds time.Duration `mapstructure:"timeout_seconds"`
}

// Tool configures one Tool Adapter backend.
type Tool struct {
	Kind        string `mapstructure:"kind"` // "http" or "mcp"
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

// QueueConfig mirrors the recognized options table.
type QueueConfig struct {
	MaxJobs                       int            `mapstructure:"max_jobs"`
	JobTTLSeconds                 int            `mapstructure:"job_ttl_seconds"`
	TerminalJobTTLSeconds         int            `mapstructure:"terminal_job_ttl_seconds"`
	CleanupIntervalSeconds        int            `mapstructure:"cleanup_interval_seconds"`
	MaxAttempts                   int            `mapstructure:"max_attempts"`
	ProgressUpdateIntervalSeconds int            `mapstructure:"progress_update_interval_seconds"`
	JobTypeEstimates              map[string]int `mapstructure:"job_type_estimates"`
}

// Default returns a Config populated with the recognized defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Server:  ServerConfig{Address: ":8080"},
		LLM:     LLMConfig{TimeoutSeconds: 30 * time.Second},
		Tools:   map[string]Tool{},
		Queue: QueueConfig{
			MaxJobs:                       1000,
			JobTTLSeconds:                 3600,
			TerminalJobTTLSeconds:         600,
			CleanupIntervalSeconds:        300,
			MaxAttempts:                   3,
			ProgressUpdateIntervalSeconds: 2,
			JobTypeEstimates: map[string]int{
				"prior_art_search": 240,
				"claim_drafting":   120,
				"claim_analysis":   60,
				"web_search":       30,
				"general_chat":     30,
			},
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}
