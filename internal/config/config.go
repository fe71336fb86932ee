// Package config loads the YAML configuration shared by the local app and
// the cloud server.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Data     DataConfig     `yaml:"data" json:"data"`
	Activity ActivityConfig `yaml:"activity" json:"activity"`
	Sync     SyncConfig     `yaml:"sync" json:"sync"`
	Cloud    CloudConfig    `yaml:"cloud" json:"cloud"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`
	Backup   BackupConfig   `yaml:"backup" json:"backup"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type DataConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

type ActivityConfig struct {
	MaxEntries int `yaml:"max_entries" json:"max_entries"`
	FeedSize   int `yaml:"feed_size" json:"feed_size"`
}

// SyncConfig points the local app at a cloud server. Sync is off while
// DataURL is empty.
type SyncConfig struct {
	AuthURL  string        `yaml:"auth_url" json:"auth_url"`
	DataURL  string        `yaml:"data_url" json:"data_url"`
	Interval time.Duration `yaml:"interval" json:"interval"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	Timezone string        `yaml:"timezone" json:"timezone"`
}

func (s SyncConfig) Enabled() bool {
	return s.DataURL != ""
}

type CloudConfig struct {
	Addr        string        `yaml:"addr" json:"addr"`
	DBDriver    string        `yaml:"db_driver" json:"db_driver"`
	DSN         string        `yaml:"dsn" json:"dsn"`
	JWTSecret   string        `yaml:"jwt_secret" json:"-"`
	TokenTTL    time.Duration `yaml:"token_ttl" json:"token_ttl"`
	CORSOrigins []string      `yaml:"cors_origins" json:"cors_origins"`
	Redis       RedisConfig   `yaml:"redis" json:"redis"`
}

// RedisConfig enables the shared token revocation list when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
}

type TelegramConfig struct {
	Token    string `yaml:"token" json:"-"`
	ChatID   int64  `yaml:"chat_id" json:"chat_id"`
	MinLevel string `yaml:"min_level" json:"min_level"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// BackupConfig configures the optional S3 upload of data-dir archives.
type BackupConfig struct {
	Dir         string `yaml:"dir" json:"dir"`
	S3Bucket    string `yaml:"s3_bucket" json:"s3_bucket"`
	S3Prefix    string `yaml:"s3_prefix" json:"s3_prefix"`
	S3Region    string `yaml:"s3_region" json:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" json:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key" json:"-"`
	S3SecretKey string `yaml:"s3_secret_key" json:"-"`
}

func (b BackupConfig) S3Enabled() bool {
	return b.S3Bucket != ""
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = "127.0.0.1:8080"
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
}

func (d *DataConfig) ApplyDefaults() {
	if d.Dir == "" {
		d.Dir = "data"
	}
}

func (a *ActivityConfig) ApplyDefaults() {
	if a.MaxEntries == 0 {
		a.MaxEntries = 500
	}
	if a.FeedSize == 0 {
		a.FeedSize = 50
	}
}

func (s *SyncConfig) ApplyDefaults() {
	if s.Interval == 0 {
		s.Interval = 5 * time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
}

func (c *CloudConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8090"
	}
	if c.DBDriver == "" {
		c.DBDriver = DriverSQLite
	}
	if c.DSN == "" && c.DBDriver == DriverSQLite {
		c.DSN = "taskreward-cloud.db"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 30 * 24 * time.Hour
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

func (t *TelegramConfig) ApplyDefaults() {
	if t.MinLevel == "" {
		t.MinLevel = "success"
	}
}

func (b *BackupConfig) ApplyDefaults() {
	if b.Dir == "" {
		b.Dir = "backups"
	}
	if b.S3Region == "" {
		b.S3Region = "us-east-1"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Data.ApplyDefaults()
	c.Activity.ApplyDefaults()
	c.Sync.ApplyDefaults()
	c.Cloud.ApplyDefaults()
	c.Telegram.ApplyDefaults()
	c.Backup.ApplyDefaults()
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Cloud.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("cloud.db_driver must be %s or %s, got %q", DriverSQLite, DriverMySQL, c.Cloud.DBDriver)
	}
	if c.Cloud.DSN == "" {
		return errors.New("cloud.dsn is required for mysql")
	}
	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least 1s, got %s", c.Sync.Interval)
	}
	if c.Activity.MaxEntries < 0 {
		return errors.New("activity.max_entries must not be negative")
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("sync.timezone: %w", err)
	}
	return nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}
