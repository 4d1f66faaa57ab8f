package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"heartpredict/dispatch"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxUploadMB    int64         `yaml:"max_upload_mb"`
	} `yaml:"http"`
	Models struct {
		Dir       string               `yaml:"dir"`
		CacheSize int                  `yaml:"cache_size"`
		Watch     bool                 `yaml:"watch"`
		List      []dispatch.ModelSpec `yaml:"list"`
	} `yaml:"models"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	MQTT struct {
		Broker      string `yaml:"broker"`
		ClientID    string `yaml:"client_id"`
		TopicPrefix string `yaml:"topic_prefix"`
		QoS         byte   `yaml:"qos"`
	} `yaml:"mqtt"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		JSON       bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load reads a YAML config file and fills unset values with defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8501
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxUploadMB == 0 {
		c.Http.MaxUploadMB = 32
	}
	if c.Models.Dir == "" {
		c.Models.Dir = "models"
	}
	if c.Database.Path == "" {
		c.Database.Path = "heartpredict.db"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "heartpredict"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// Dispatch builds the dispatcher configuration. An explicit model list
// replaces the four conventional artifacts under Models.Dir.
func (c *Config) Dispatch() dispatch.Config {
	models := c.Models.List
	if len(models) == 0 {
		models = dispatch.DefaultModels(c.Models.Dir)
	}
	return dispatch.Config{
		Models:    models,
		CacheSize: c.Models.CacheSize,
		Watch:     c.Models.Watch,
	}
}
