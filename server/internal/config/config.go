package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Roster  RosterConfig  `yaml:"roster"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// AllowedOrigins 是允许跨域访问的前端来源；为空时不下发 CORS 头。
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	// Driver: memory | sqlite
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

// RosterConfig 学生名册配置
type RosterConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Default 返回本地开发可直接使用的默认配置。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/pickup.db",
		},
		Roster: RosterConfig{
			Path: "server/configs/students.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 从文件加载配置，未出现的字段保留默认值。
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖部署相关的配置。
func (c *Config) applyEnv() {
	if v := os.Getenv("PICKUP_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("PICKUP_ROSTER_PATH"); v != "" {
		c.Roster.Path = v
	}
	if v := os.Getenv("PICKUP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Roster.Path == "" {
		return fmt.Errorf("roster path is required")
	}
	return nil
}

// Addr 返回 HTTP 监听地址。
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
