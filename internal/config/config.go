package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	MusicBrainz MusicBrainzConfig `yaml:"musicbrainz"`
	OCR         OCRConfig         `yaml:"ocr"`
	Inbox       InboxConfig       `yaml:"inbox"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// StoreConfig holds knowledge base file settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MusicBrainzConfig holds metadata service settings.
type MusicBrainzConfig struct {
	BaseURL string `yaml:"base_url"`
}

// OCRConfig holds text recognition service settings.
type OCRConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// InboxConfig holds poster inbox watcher settings.
type InboxConfig struct {
	Path     string        `yaml:"path"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "data/festival_data.json",
		},
		MusicBrainz: MusicBrainzConfig{
			BaseURL: "https://musicbrainz.org/ws/2",
		},
		OCR: OCRConfig{
			Endpoint: "http://localhost:8884/recognize",
			Timeout:  120 * time.Second,
		},
		Inbox: InboxConfig{
			Debounce: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("HL_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("HL_MUSICBRAINZ_URL"); v != "" {
		c.MusicBrainz.BaseURL = v
	}
	if v := os.Getenv("HL_OCR_ENDPOINT"); v != "" {
		c.OCR.Endpoint = v
	}
	if v := os.Getenv("HL_INBOX_PATH"); v != "" {
		c.Inbox.Path = v
	}
	if v := os.Getenv("HL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("HL_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.MusicBrainz.BaseURL == "" {
		return fmt.Errorf("musicbrainz base URL is required")
	}
	if c.OCR.Timeout <= 0 {
		c.OCR.Timeout = 120 * time.Second
	}
	if c.Inbox.Debounce <= 0 {
		c.Inbox.Debounce = 2 * time.Second
	}
	return nil
}
