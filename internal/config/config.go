package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP settings. AuthRateLimit is requests per minute
// per client IP on /auth.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	Env                string   `yaml:"env"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	AuthRateLimit      int      `yaml:"auth_rate_limit"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type MailConfig struct {
	Provider    string        `yaml:"provider"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	From        string        `yaml:"from"`
	AWSRegion   string        `yaml:"aws_region"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	MQ        MQConfig        `yaml:"mq"`
	JWT       JWTConfig       `yaml:"jwt"`
	Mail      MailConfig      `yaml:"mail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			Env:                "production",
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			AuthRateLimit:      5,
		},
		Mongo:     MongoConfig{URI: "mongodb://localhost:27017", Database: "ecold"},
		Redis:     RedisConfig{DedupeTTL: 24 * time.Hour},
		JWT:       JWTConfig{TTL: 24 * time.Hour},
		Mail:      MailConfig{Provider: "smtp", Port: 587, SendTimeout: 30 * time.Second},
		Scheduler: SchedulerConfig{Interval: 30 * time.Second},
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE (config.yaml by
// default, optional), then applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("SERVER_PORT", &cfg.Server.Port)
	setString("APP_ENV", &cfg.Server.Env)
	setString("MONGO_URI", &cfg.Mongo.URI)
	setString("MONGO_DATABASE", &cfg.Mongo.Database)
	setString("DATABASE_URL", &cfg.Postgres.URL)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setString("RABBITMQ_URL", &cfg.MQ.URL)
	setString("JWT_SECRET", &cfg.JWT.Secret)
	setString("MAIL_PROVIDER", &cfg.Mail.Provider)
	setString("MAIL_HOST", &cfg.Mail.Host)
	setString("MAIL_USER", &cfg.Mail.User)
	setString("MAIL_PASS", &cfg.Mail.Password)
	setString("MAIL_FROM", &cfg.Mail.From)
	setString("AWS_REGION", &cfg.Mail.AWSRegion)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSAllowedOrigins = origins
	}

	if v := os.Getenv("MAIL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAIL_PORT: %w", err)
		}
		cfg.Mail.Port = p
	}
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
		}
		cfg.Server.AuthRateLimit = r
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_TTL", &cfg.JWT.TTL},
		{"MAIL_SEND_TIMEOUT", &cfg.Mail.SendTimeout},
		{"SCHEDULER_INTERVAL", &cfg.Scheduler.Interval},
		{"DEDUPE_TTL", &cfg.Redis.DedupeTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.Postgres.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.Mail.Provider {
	case "smtp":
		if c.Mail.Host == "" {
			missing = append(missing, "MAIL_HOST")
		}
	case "ses":
		if c.Mail.AWSRegion == "" {
			missing = append(missing, "AWS_REGION")
		}
	default:
		return fmt.Errorf("MAIL_PROVIDER must be smtp or ses, got %q", c.Mail.Provider)
	}
	if c.Mail.From == "" {
		missing = append(missing, "MAIL_FROM")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
