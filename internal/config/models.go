package config

import "time"

// AIConfig represents the provider-independent AI settings
type AIConfig struct {
	Provider    string
	Timeout     time.Duration
	MaxBodySize int
	ReplyLocale string
}

// OpenAIConfig represents the configuration for OpenAI-compatible endpoints
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// StorageConfig represents the document store settings
type StorageConfig struct {
	Type           string
	Dir            string
	SQLitePath     string
	MySQLDSN       string
	AttachmentsDir string
}

// JiraConfig represents the issue tracker settings
type JiraConfig struct {
	BaseURL       string
	Email         string
	APIToken      string
	ProjectKey    string
	IssueTypeBug  string
	IssueTypeTask string
	Timeout       time.Duration
}

// MailboxConfig represents the IMAP mailbox settings
type MailboxConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLS       bool
	Folder    string
	SinceDays int
	Query     string
}

// IngestConfig represents the SMTP ingest listener settings
type IngestConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
}

// JobsConfig represents the background job settings
type JobsConfig struct {
	FetchEnabled  bool
	FetchInterval time.Duration
	FetchLimit    int
}

// GetAI returns the AI configuration
func (c *Config) GetAI() AIConfig {
	timeout, err := c.GetDuration("ai.timeout")
	if err != nil {
		timeout = 60 * time.Second
	}
	return AIConfig{
		Provider:    c.GetString("ai.provider"),
		Timeout:     timeout,
		MaxBodySize: c.GetInt("ai.max_body_size"),
		ReplyLocale: c.GetString("ai.reply_locale"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   int32(c.GetInt("gemini.max_tokens")),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: c.GetFloat64("bedrock.temperature"),
		TopP:        c.GetFloat64("bedrock.top_p"),
	}
}

// GetStorage returns the document store configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:           c.GetString("storage.type"),
		Dir:            c.GetString("storage.dir"),
		SQLitePath:     c.GetString("storage.sqlite_path"),
		MySQLDSN:       c.GetString("storage.mysql_dsn"),
		AttachmentsDir: c.GetString("storage.attachments_dir"),
	}
}

// GetJira returns the issue tracker configuration
func (c *Config) GetJira() JiraConfig {
	timeout, err := c.GetDuration("jira.timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return JiraConfig{
		BaseURL:       c.GetString("jira.base_url"),
		Email:         c.GetString("jira.email"),
		APIToken:      c.GetString("jira.api_token"),
		ProjectKey:    c.GetString("jira.project_key"),
		IssueTypeBug:  c.GetString("jira.issue_type_bug"),
		IssueTypeTask: c.GetString("jira.issue_type_task"),
		Timeout:       timeout,
	}
}

// GetMailbox returns the IMAP mailbox configuration
func (c *Config) GetMailbox() MailboxConfig {
	return MailboxConfig{
		Host:      c.GetString("mailbox.host"),
		Port:      c.GetInt("mailbox.port"),
		Username:  c.GetString("mailbox.username"),
		Password:  c.GetString("mailbox.password"),
		TLS:       c.GetBool("mailbox.tls"),
		Folder:    c.GetString("mailbox.folder"),
		SinceDays: c.GetInt("mailbox.since_days"),
		Query:     c.GetString("mailbox.query"),
	}
}

// GetIngest returns the SMTP ingest configuration
func (c *Config) GetIngest() IngestConfig {
	return IngestConfig{
		Enabled:         c.GetBool("ingest.enabled"),
		ListenAddress:   c.GetString("ingest.listen_address"),
		Domain:          c.GetString("ingest.domain"),
		MaxMessageBytes: c.GetInt64("ingest.max_message_bytes"),
	}
}

// GetJobs returns the background job configuration
func (c *Config) GetJobs() JobsConfig {
	interval, err := c.GetDuration("jobs.fetch_interval")
	if err != nil {
		interval = 5 * time.Minute
	}
	return JobsConfig{
		FetchEnabled:  c.GetBool("jobs.fetch_enabled"),
		FetchInterval: interval,
		FetchLimit:    c.GetInt("jobs.fetch_limit"),
	}
}
