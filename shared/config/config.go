package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	StorageMongo = "mongo"
	StoragePg    = "pg"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Storage          string       `yaml:"storage" validate:"required,oneof=mongo pg"`
	FeedPageSize     int          `yaml:"feed_page_size" validate:"required,gt=0"`
	MaxPageSize      int          `yaml:"max_page_size" validate:"gte=0"`     // 0 means no cap
	OperationTimeout int          `yaml:"operation_timeout" validate:"gte=0"` // seconds, 0 disables
	LogLevel         string       `yaml:"log_level"`
	LogJSON          bool         `yaml:"log_json"`
	Mongo            MongoPublic  `yaml:"mongo"`
	Revalidation     Revalidation `yaml:"revalidation"`
}

type MongoPublic struct {
	Database       string `yaml:"database"`
	Transactions   bool   `yaml:"transactions"`                     // requires a replica set
	ConnectTimeout int    `yaml:"connect_timeout" validate:"gte=0"` // seconds, 0 means 10
}

type Revalidation struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel" validate:"required_if=Enabled true"`
}

type Private struct {
	Mongo MongoPrivate `yaml:"mongo"`
	Pg    Pg           `yaml:"pg"`
	Redis Redis        `yaml:"redis"`
}

type MongoPrivate struct {
	URI string `yaml:"uri"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.Public.OperationTimeout) * time.Second
}

func (c *Config) MongoConnectTimeout() time.Duration {
	if c.Public.Mongo.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Public.Mongo.ConnectTimeout) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

// applyEnv overrides secrets from the environment, so they can stay out of private.yaml.
func applyEnv(private *Private) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		private.Mongo.URI = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		private.Pg.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		private.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			private.Redis.DB = db
		}
	}
}

// Validate checks required fields and the private settings the selected backend needs.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return err
	}

	switch c.Public.Storage {
	case StorageMongo:
		if c.Private.Mongo.URI == "" || c.Public.Mongo.Database == "" {
			return fmt.Errorf("mongo.uri and mongo.database are required for storage %q", c.Public.Storage)
		}
	case StoragePg:
		if c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "" {
			return fmt.Errorf("pg.host and pg.dbname are required for storage %q", c.Public.Storage)
		}
	}
	if c.Public.Revalidation.Enabled && c.Private.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when revalidation is enabled")
	}
	return nil
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	applyEnv(&private)

	cfg := &Config{public, private}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
