package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Log struct {
		Production bool `yaml:"production"`
	} `yaml:"log"`

	Gemini struct {
		APIKey            string        `yaml:"api_key"`
		ModelName         string        `yaml:"model_name"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerMinute int           `yaml:"requests_per_minute"`
		Temperature       float32       `yaml:"temperature"`
	} `yaml:"gemini"`

	Database struct {
		Type string `yaml:"type"` // "sqlite" or "postgres"
		Path string `yaml:"path"` // SQLite file
		URL  string `yaml:"url"`  // PostgreSQL DSN
	} `yaml:"database"`

	Session struct {
		Store    string        `yaml:"store"` // "memory" or "redis"
		RedisURL string        `yaml:"redis_url"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Media struct {
		MaxUploadMB int    `yaml:"max_upload_mb"`
		VideoFrames int    `yaml:"video_frames"`
		FFmpegPath  string `yaml:"ffmpeg_path"`
		FFprobePath string `yaml:"ffprobe_path"`
	} `yaml:"media"`

	History struct {
		RetentionDays   int    `yaml:"retention_days"` // 0 keeps records forever
		JanitorSchedule string `yaml:"janitor_schedule"`
		AccountLimit    int    `yaml:"account_limit"`
	} `yaml:"history"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	// Expand environment variables in secrets
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)
	config.Database.URL = os.ExpandEnv(config.Database.URL)
	config.Session.RedisURL = os.ExpandEnv(config.Session.RedisURL)

	if config.Gemini.APIKey == "" {
		config.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Gemini.ModelName == "" {
		c.Gemini.ModelName = "gemini-2.0-flash"
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 60 * time.Second
	}
	if c.Gemini.RequestsPerMinute == 0 {
		c.Gemini.RequestsPerMinute = 15
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.2
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/suraksha.db"
	}

	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}

	if c.Media.MaxUploadMB == 0 {
		c.Media.MaxUploadMB = 25
	}
	if c.Media.VideoFrames == 0 {
		c.Media.VideoFrames = 5
	}

	if c.History.JanitorSchedule == "" {
		c.History.JanitorSchedule = "@hourly"
	}
	if c.History.AccountLimit == 0 {
		c.History.AccountLimit = 50
	}
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	switch c.History.RetentionDays {
	case 0, 7, 30:
	default:
		return fmt.Errorf("history.retention_days must be 0, 7 or 30, got %d", c.History.RetentionDays)
	}

	return nil
}

// MaxUploadBytes is the per-file upload limit
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Media.MaxUploadMB) << 20
}
