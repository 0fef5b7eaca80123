// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

// пороги жизненного цикла в днях
type LifecycleConfig struct {
	ExpireAfterDays int `yaml:"expire_after_days"`
	PurgeAfterDays  int `yaml:"purge_after_days"`
	ResetAddDays    int `yaml:"reset_add_days"`
}

type WorkerConfig struct {
	IntervalHours int `yaml:"interval_hours"`
}

func (w WorkerConfig) GetInterval() time.Duration {
	return time.Duration(w.IntervalHours) * time.Hour
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
