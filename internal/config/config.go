// Package config carrega a configuração do serviço: .env (godotenv), um
// YAML opcional apontado por CONCIERGE_CONFIG e, por cima, as variáveis de
// ambiente.
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

	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/whatsapp"
	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
	"github.com/xavierca1/nexus-concierge/internal/infra/mail"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultTimezone = "America/Sao_Paulo"
)

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	LLM      llm.Config      `yaml:"llm"`
	Publish  PublishConfig   `yaml:"publish"`
	Ayrshare ayrshare.Config `yaml:"ayrshare"`
	WhatsApp whatsapp.Config `yaml:"whatsapp"`
	Mail     mail.Config     `yaml:"mail"`
	RabbitMQ RabbitMQConfig  `yaml:"rabbitmq"`
	Worker   WorkerConfig    `yaml:"worker"`
	Timezone string          `yaml:"timezone"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Path   string `yaml:"path"`
}

// PublishConfig: com URL vazia o handler de publicação roda no próprio
// processo.
type PublishConfig struct {
	URL        string        `yaml:"url"`
	ServiceKey string        `yaml:"service_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type WorkerConfig struct {
	ReminderInterval time.Duration `yaml:"reminder_interval"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	StaleScheduling  time.Duration `yaml:"stale_scheduling"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:       "8080",
			RateLimit:  30,
			RateWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Driver: DriverPostgres,
			Path:   "concierge.db",
		},
		LLM:     llm.DefaultConfig(),
		Publish: PublishConfig{Timeout: 30 * time.Second},
		Mail:    mail.Config{Port: 587},
		Worker: WorkerConfig{
			ReminderInterval: time.Minute,
			SweepInterval:    time.Minute,
			StaleScheduling:  5 * time.Minute,
		},
		Timezone: DefaultTimezone,
	}
}

// Load monta a configuração na ordem: padrões, YAML, ambiente.
func Load() (Config, error) {
	// .env é opcional
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONCIERGE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: erro ao ler %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: YAML inválido em %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("PORT", &c.Server.Port)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	num("RATE_LIMIT", &c.Server.RateLimit)
	dur("RATE_WINDOW", &c.Server.RateWindow)

	str("DB_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.URL)
	str("SQLITE_PATH", &c.Database.Path)

	str("LOVABLE_API_KEY", &c.LLM.APIKey)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_MODEL", &c.LLM.Model)
	dur("LLM_TIMEOUT", &c.LLM.Timeout)

	str("PUBLISH_URL", &c.Publish.URL)
	str("SERVICE_KEY", &c.Publish.ServiceKey)
	dur("PUBLISH_TIMEOUT", &c.Publish.Timeout)

	str("AYRSHARE_API_KEY", &c.Ayrshare.APIKey)
	str("AYRSHARE_PROFILE_KEY", &c.Ayrshare.ProfileKey)

	str("WHATSAPP_ACCESS_TOKEN", &c.WhatsApp.AccessToken)
	str("WHATSAPP_PHONE_ID", &c.WhatsApp.PhoneID)
	str("WHATSAPP_REMINDER_TEMPLATE", &c.WhatsApp.ReminderTemplate)

	str("MAIL_HOST", &c.Mail.Host)
	num("MAIL_PORT", &c.Mail.Port)
	str("MAIL_USER", &c.Mail.User)
	str("MAIL_PASS", &c.Mail.Password)
	str("MAIL_FROM", &c.Mail.From)

	str("RABBITMQ_URL", &c.RabbitMQ.URL)

	dur("REMINDER_INTERVAL", &c.Worker.ReminderInterval)
	dur("SWEEP_INTERVAL", &c.Worker.SweepInterval)
	dur("STALE_SCHEDULING", &c.Worker.StaleScheduling)

	str("CONCIERGE_TIMEZONE", &c.Timezone)

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: DATABASE_URL é obrigatório para o driver postgres")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("config: SQLITE_PATH é obrigatório para o driver sqlite")
		}
	default:
		return fmt.Errorf("config: driver de banco desconhecido %q", c.Database.Driver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone inválido %q: %w", c.Timezone, err)
	}
	return nil
}

// Location devolve o fuso configurado (validado em Validate).
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
