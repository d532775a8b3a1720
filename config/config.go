package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3, mysql
	DSN    string `yaml:"dsn"`
}

type SearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
}

// StorageConfig object storage for avatars, disabled when endpoint is empty
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Bucket          string `yaml:"bucket"`
}

type ScheduleConfig struct {
	ProgressReconcileCron string `yaml:"progress_reconcile_cron"`
	IndexSyncCron         string `yaml:"index_sync_cron"`
	EventRedispatchCron   string `yaml:"event_redispatch_cron"`
}

type SecurityConfig struct {
	InitialAdminPassword string  `yaml:"initial_admin_password"`
	LoginRateLimitRPS    float64 `yaml:"login_rate_limit_rps"`
	LoginRateLimitBurst  int     `yaml:"login_rate_limit_burst"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":80",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "worksync.db",
		},
		Search: SearchConfig{
			Enabled:   false,
			Addresses: []string{"http://localhost:9200"},
		},
		Schedule: ScheduleConfig{
			ProgressReconcileCron: "@every 10m",
			IndexSyncCron:         "0 3 * * *",
			EventRedispatchCron:   "@every 1m",
		},
		Security: SecurityConfig{
			InitialAdminPassword: "admin123",
			LoginRateLimitRPS:    5,
			LoginRateLimitBurst:  10,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if esURL := os.Getenv("ELASTICSEARCH_URL"); esURL != "" {
		c.Search.Enabled = true
		c.Search.Addresses = strings.Split(esURL, ",")
	}
	if endpoint := os.Getenv("OSS_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("OSS_ACCESS_KEY_ID"); key != "" {
		c.Storage.AccessKeyID = key
	}
	if secret := os.Getenv("OSS_ACCESS_KEY_SECRET"); secret != "" {
		c.Storage.AccessKeySecret = secret
	}
	if bucket := os.Getenv("OSS_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if spec := os.Getenv("PROGRESS_RECONCILE_CRON"); spec != "" {
		c.Schedule.ProgressReconcileCron = spec
	}
	if spec := os.Getenv("INDEX_SYNC_CRON"); spec != "" {
		c.Schedule.IndexSyncCron = spec
	}
	if spec := os.Getenv("EVENT_REDISPATCH_CRON"); spec != "" {
		c.Schedule.EventRedispatchCron = spec
	}
	if pwd := os.Getenv("INITIAL_ADMIN_PASSWORD"); pwd != "" {
		c.Security.InitialAdminPassword = pwd
	}
	if rps := os.Getenv("LOGIN_RATE_LIMIT_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil && v > 0 {
			c.Security.LoginRateLimitRPS = v
		}
	}
	if burst := os.Getenv("LOGIN_RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil && v > 0 {
			c.Security.LoginRateLimitBurst = v
		}
	}
}

func (c *StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}
