package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// StoreFile persists the last search as a JSON file.
	StoreFile = "file"
	// StoreRedis persists the last search in Redis.
	StoreRedis = "redis"

	defaultHost     = "0.0.0.0"
	defaultPort     = 3000
	defaultLogLevel = "info"
)

// Config represents the application configuration.
type Config struct {
	Name            string        `json:"name,omitempty"`
	ProfileLocation string        `json:"profile_location,omitempty"`
	LogLevel        string        `json:"log_level,omitempty"`
	Server          ServerConfig  `json:"server"`
	Apify           ApifyConfig   `json:"apify"`
	AI              AIConfig      `json:"ai"`
	Store           StoreConfig   `json:"store"`
	Refresh         RefreshConfig `json:"refresh,omitempty"`
	Pandoc          PandocConfig  `json:"pandoc,omitempty"`
	Defaults        DefaultConfig `json:"defaults"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// ApifyConfig holds the job-search actor settings.
type ApifyConfig struct {
	APIKey          string `json:"api_key,omitempty"`
	ActorID         string `json:"actor_id,omitempty"`
	BaseURL         string `json:"base_url,omitempty"`
	PollIntervalSec int    `json:"poll_interval_seconds,omitempty"`
	MaxPollAttempts int    `json:"max_poll_attempts,omitempty"`
}

// AIConfig holds AI provider settings.
type AIConfig struct {
	Provider    string       `json:"provider,omitempty"`
	APIKey      string       `json:"api_key,omitempty"`
	BaseURL     string       `json:"base_url,omitempty"`
	Models      ModelsConfig `json:"models,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	TimeoutSec  int          `json:"timeout_seconds,omitempty"`
}

// ModelsConfig holds model selection per kind of task.
type ModelsConfig struct {
	Writing   string `json:"writing,omitempty"`
	Analysis  string `json:"analysis,omitempty"`
	Interview string `json:"interview,omitempty"`
}

// StoreConfig selects where the last search results are kept.
type StoreConfig struct {
	Backend  string `json:"backend,omitempty"`
	Path     string `json:"path,omitempty"`
	RedisURL string `json:"redis_url,omitempty"`
}

// RefreshConfig schedules re-running the last search. An empty schedule disables it.
type RefreshConfig struct {
	Schedule string `json:"schedule,omitempty"`
}

// PandocConfig holds pandoc-related configuration.
type PandocConfig struct {
	TemplatePath string `json:"template_path,omitempty"`
	ClassFile    string `json:"class_file,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() (addr string) {
	addr = c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
	return addr
}

// AITimeout returns the AI request timeout.
func (c *Config) AITimeout() (timeout time.Duration) {
	timeout = time.Duration(c.AI.TimeoutSec) * time.Second
	return timeout
}

// PollInterval returns the delay between job-search status checks.
func (c *Config) PollInterval() (interval time.Duration) {
	interval = time.Duration(c.Apify.PollIntervalSec) * time.Second
	return interval
}

// DefaultPath returns ~/.smartresume/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".smartresume", "config.json")
	return path, err
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() (err error) {
	err = godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return err
}

// Load reads configuration from file with environment variable overrides. An
// explicit path must exist; a missing default file leaves every setting to the
// environment.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'smartresume init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = cfg.applyEnv()
	if err != nil {
		return cfg, err
	}

	// Validate and fill defaults
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func (c *Config) applyEnv() (err error) {
	overrides := map[string]*string{
		"APIFY_API_KEY":    &c.Apify.APIKey,
		"APIFY_ACTOR_ID":   &c.Apify.ActorID,
		"APIFY_API_BASE":   &c.Apify.BaseURL,
		"MULERUN_API_KEY":  &c.AI.APIKey,
		"MULERUN_API_BASE": &c.AI.BaseURL,
		"AI_PROVIDER":      &c.AI.Provider,
		"LOG_LEVEL":        &c.LogLevel,
		"HOST":             &c.Server.Host,
		"REDIS_URL":        &c.Store.RedisURL,
		"RESULTS_STORE":    &c.Store.Backend,
		"REFRESH_SCHEDULE": &c.Refresh.Schedule,
	}

	for name, target := range overrides {
		if value := os.Getenv(name); value != "" {
			*target = value
		}
	}

	// Direct Anthropic access
	if c.AI.APIKey == "" {
		if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
			c.AI.APIKey = apiKey
			if c.AI.Provider == "" {
				c.AI.Provider = "anthropic"
			}
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port, err = strconv.Atoi(port)
		if err != nil {
			err = errors.Wrapf(err, "invalid PORT: %s", port)
			return err
		}
	}

	return err
}

// Validate checks the configuration and fills defaults. API keys are optional;
// components without one report themselves as not configured.
func (c *Config) Validate() (err error) {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		err = errors.Errorf("server.port out of range: %d", c.Server.Port)
		return err
	}

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	c.AI.Provider = strings.ToLower(c.AI.Provider)
	switch c.AI.Provider {
	case "", "openai", "anthropic":
	default:
		err = errors.Errorf("ai.provider must be 'openai' or 'anthropic', got %q", c.AI.Provider)
		return err
	}

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if c.Store.Backend == "" {
		c.Store.Backend = StoreFile
		if c.Store.RedisURL != "" {
			c.Store.Backend = StoreRedis
		}
	}

	switch c.Store.Backend {
	case StoreFile:
		if c.Store.Path == "" {
			c.Store.Path = filepath.Join(os.TempDir(), "smartresume", "job-search-results.json")
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			err = errors.New("store.redis_url is required when store.backend is 'redis' (or set REDIS_URL)")
			return err
		}
	default:
		err = errors.Errorf("store.backend must be 'file' or 'redis', got %q", c.Store.Backend)
		return err
	}

	// Set default output_dir if not specified
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./applications"
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		Name:            "your-name",
		ProfileLocation: filepath.Join(homeDir, ".smartresume", "profile.json"),
		LogLevel:        defaultLogLevel,
		Server: ServerConfig{
			Host: defaultHost,
			Port: defaultPort,
		},
		Apify: ApifyConfig{
			APIKey: "apify_api_...",
		},
		AI: AIConfig{
			Provider: "openai",
			APIKey:   "sk-...",
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Path:    filepath.Join(homeDir, ".smartresume", "job-search-results.json"),
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Applications"),
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
