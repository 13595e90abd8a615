package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Google GoogleConfig `yaml:"google"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// OpenAIConfig carries the credential and endpoint used by the document
// index, answer and speech clients. Threaded through constructors; nothing
// reads the environment at call sites.
type OpenAIConfig struct {
	APIBase      string `yaml:"api_base"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Instructions string `yaml:"instructions"`
}

// GoogleConfig carries the credential and endpoints for the Google speech
// provider.
type GoogleConfig struct {
	APIKey     string `yaml:"api_key"`
	SpeechBase string `yaml:"speech_base"`
	TTSBase    string `yaml:"tts_base"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "ragdesk.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		OpenAI: OpenAIConfig{
			APIBase: "https://api.openai.com/v1",
			Model:   "gpt-4.1-mini",
		},
		Google: GoogleConfig{
			SpeechBase: "https://speech.googleapis.com/v1",
			TTSBase:    "https://texttospeech.googleapis.com/v1",
		},
	}

	if path := os.Getenv("RAGDESK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("RAGDESK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("RAGDESK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RAGDESK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("RAGDESK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("RAGDESK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if base := os.Getenv("OPENAI_API_BASE"); base != "" {
		cfg.OpenAI.APIBase = base
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Google.APIKey = key
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
