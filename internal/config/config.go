// config — конфигурация storyweb.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Переменные окружения всегда накладываются поверх файла. После чтения конфигурация
// проверяется (validate): сервис не стартует с URL API без схемы или с нулевым TTL сессии.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// localFile — файл, который подхватывается из рабочего каталога без явного пути.
const localFile = "local.yaml"

// minProdSecretLen — минимальная длина SESSION_SECRET для env=prod.
const minProdSecretLen = 16

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	API      APIConfig     `yaml:"api"`
	Session  SessionConfig `yaml:"session"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — адрес, на котором фронтенд принимает браузерные запросы.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// APIConfig — удалённый API историй.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"https://hack-or-snooze-v3.herokuapp.com"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"storyweb/1.0"`
}

// SessionConfig — подпись cookie сессии и размер in-memory хранилища.
type SessionConfig struct {
	Secret     string        `yaml:"secret"      env:"SESSION_SECRET"`
	TTL        time.Duration `yaml:"ttl"         env:"SESSION_TTL"         env-default:"168h"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"storyweb_session"`
	MaxEntries int           `yaml:"max_entries" env:"SESSION_MAX_ENTRIES" env-default:"10000"`
	Secure     bool          `yaml:"secure"      env:"SESSION_SECURE"      env-default:"false"`
}

// TimeoutConfig — предел обработки одного браузерного запроса и одного вызова API.
type TimeoutConfig struct {
	Service  time.Duration `yaml:"service"  env:"TIMEOUT_SERVICE"  env-default:"15s"`
	Upstream time.Duration `yaml:"upstream" env:"TIMEOUT_UPSTREAM" env-default:"5s"`
}

// MustLoad — Load с паникой при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load читает конфигурацию из первого найденного источника и проверяет её.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := read(resolvePath(path), &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// resolvePath — путь к файлу по приоритету источников; "" — только ENV.
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}

	if _, err := os.Stat(localFile); err == nil {
		return localFile
	}

	return ""
}

func read(path string, cfg *Config) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %q stat failed: %w", path, err)
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to overlay env: %w", err)
	}

	return nil
}

func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute http(s) url, got %q", c.API.BaseURL))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}

	if c.Session.MaxEntries <= 0 {
		errs = append(errs, errors.New("session.max_entries must be positive"))
	}

	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is empty"))
	}

	if c.Env == "prod" && len(c.Session.Secret) < minProdSecretLen {
		errs = append(errs, fmt.Errorf("session.secret must be at least %d bytes in prod", minProdSecretLen))
	}

	return errors.Join(errs...)
}
