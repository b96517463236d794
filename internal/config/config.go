package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

var ErrConfigPathIsEmpty = errors.New("config path is empty")

const secretMask = "******"

type Config struct {
	App        `yaml:"app"`
	Logger     `yaml:"log"`
	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Mailer     `yaml:"mailer"`
	Scheduler  `yaml:"scheduler"`
	Kafka      `yaml:"kafka"`
	Metrics    `yaml:"metrics"`
}

type App struct {
	ServiceName string `yaml:"service_name" env:"APP_SERVICE_NAME" env-default:"newsletter-back"`
	Version     string `yaml:"version"      env:"APP_VERSION"      env-default:"dev"`
}

type Logger struct {
	Level      string   `yaml:"level"       env:"LOG_LEVEL"       env-default:"info"`
	FormatJSON bool     `yaml:"format_json" env:"LOG_FORMAT_JSON" env-default:"false"`
	Rotation   Rotation `yaml:"rotation"`
}

type Rotation struct {
	File       string `yaml:"file"        env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size"    env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAge     int    `yaml:"max_age"     env-default:"30"`
}

type Database struct {
	Host      string    `yaml:"host"      env:"DB_HOST"     env-default:"localhost"`
	Port      uint16    `yaml:"port"      env:"DB_PORT"     env-default:"5432"`
	User      string    `yaml:"user"      env:"DB_USER"     env-default:"postgres"`
	Password  string    `yaml:"password"  env:"DB_PASSWORD"`
	Name      string    `yaml:"name"      env:"DB_NAME"     env-default:"newsletter"`
	SSLMode   string    `yaml:"ssl_mode"  env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns  int32     `yaml:"max_conns" env-default:"10"`
	MinConns  int32     `yaml:"min_conns" env-default:"1"`
	Migration Migration `yaml:"migration"`
}

type Migration struct {
	Path      string `yaml:"path"       env:"DB_MIGRATION_PATH" env-default:"migrations"`
	AutoApply bool   `yaml:"auto_apply" env:"DB_MIGRATION_AUTO" env-default:"true"`
}

type Redis struct {
	Enable    bool      `yaml:"enable"   env:"REDIS_ENABLE"   env-default:"false"`
	Host      string    `yaml:"host"     env:"REDIS_HOST"     env-default:"localhost"`
	Port      uint16    `yaml:"port"     env:"REDIS_PORT"     env-default:"6379"`
	Password  string    `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int       `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type RateLimit struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"120"`
	Window   time.Duration `yaml:"window"   env:"RATE_LIMIT_WINDOW"   env-default:"1m"`
}

type HTTPServer struct {
	Host     string  `yaml:"host"      env:"HTTP_HOST"      env-default:"0.0.0.0"`
	Port     uint16  `yaml:"port"      env:"HTTP_PORT"      env-default:"3001"`
	BasePath string  `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
	Timeout  Timeout `yaml:"timeout"`
	CORS     CORS    `yaml:"cors"`
}

type Timeout struct {
	Request time.Duration `yaml:"request" env-default:"30s"`
	Read    time.Duration `yaml:"read"    env-default:"10s"`
	Write   time.Duration `yaml:"write"   env-default:"30s"`
	Idle    time.Duration `yaml:"idle"    env-default:"60s"`
}

type CORS struct {
	Enabled          bool          `yaml:"enabled"           env-default:"true"`
	AllowAllOrigins  bool          `yaml:"allow_all_origins" env-default:"true"`
	AllowOrigins     []string      `yaml:"allow_origins"`
	AllowMethods     []string      `yaml:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age" env-default:"12h"`
}

type Mailer struct {
	Driver   string        `yaml:"driver"    env:"MAIL_DRIVER"    env-default:"smtp"`
	Host     string        `yaml:"host"      env:"SMTP_HOST"      env-default:"localhost"`
	Port     int           `yaml:"port"      env:"SMTP_PORT"      env-default:"587"`
	Username string        `yaml:"username"  env:"SMTP_USER"`
	Password string        `yaml:"password"  env:"SMTP_PASS"`
	UseTLS   bool          `yaml:"use_tls"   env:"SMTP_SECURE"    env-default:"false"`
	Timeout  time.Duration `yaml:"timeout"   env:"SMTP_TIMEOUT"   env-default:"30s"`
	From     string        `yaml:"from"      env:"FROM_EMAIL"     env-default:"no-reply@newsletter.local"`
	FromName string        `yaml:"from_name" env:"FROM_NAME"      env-default:"Newsletter Service"`
	APIKey   string        `yaml:"api_key"   env:"RESEND_API_KEY"`
}

type Scheduler struct {
	Enabled  bool          `yaml:"enabled"  env:"SCHEDULER_ENABLED"  env-default:"true"`
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"60s"`
	Workers  int           `yaml:"workers"  env:"SCHEDULER_WORKERS"  env-default:"1"`
	Claim    Claim         `yaml:"claim"`
}

type Claim struct {
	Enabled    bool          `yaml:"enabled"     env:"SCHEDULER_CLAIM_ENABLED" env-default:"false"`
	StaleAfter time.Duration `yaml:"stale_after" env:"SCHEDULER_CLAIM_STALE"   env-default:"15m"`
}

type Kafka struct {
	Enabled  bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers  []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Producer Producer `yaml:"producer"`
}

type Producer struct {
	Name         string        `yaml:"name"          env-default:"newsletter-back"`
	Topic        string        `yaml:"topic"         env-default:"newsletter.content.dispatched"`
	WorkerCount  int           `yaml:"worker_count"  env-default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"5s"`
	BatchSize    int           `yaml:"batch_size"    env-default:"50"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*Config, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, ErrConfigPathIsEmpty
	}

	return LoadConfigFrom(path)
}

func LoadConfigFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var config Config

	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &config, nil
}

func MustPrintConfig(cfg *Config) {
	if err := PrintConfig(cfg); err != nil {
		panic(err)
	}
}

func PrintConfig(cfg *Config) error {
	data, err := Dump(cfg)
	if err != nil {
		return err
	}

	println(string(data))

	return nil
}

// Dump renders cfg as YAML with credentials masked.
func Dump(cfg *Config) ([]byte, error) {
	masked := *cfg
	masked.Database.Password = mask(masked.Database.Password)
	masked.Redis.Password = mask(masked.Redis.Password)
	masked.Mailer.Password = mask(masked.Mailer.Password)
	masked.Mailer.APIKey = mask(masked.Mailer.APIKey)

	return yaml.Marshal(&masked)
}

func mask(s string) string {
	if s == "" {
		return ""
	}

	return secretMask
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("CONFIG_PATH")
	}

	return result
}
