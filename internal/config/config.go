// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	// SessionBackendMemory хранит сессию в памяти процесса.
	SessionBackendMemory = "memory"
	// SessionBackendRedis хранит сессию в redis.
	SessionBackendRedis = "redis"
)

// Config общая структура для хранения настроек
type Config struct {
	Env               string `yaml:"env" env:"ENV" env-default:"local"`
	GRPCHealthAddress string `yaml:"grpc_health_address" env:"GRPC_HEALTH_ADDRESS" env-default:":50051"`
	HTTPServer        `yaml:"http_server"`
	RedisConnection   `yaml:"redis_connection"`
	Session           `yaml:"session"`
	Auth              `yaml:"auth"`
	RateLimit         `yaml:"rate_limit"`
	ExternalLogin     `yaml:"external_login"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// Session структура для настройки хранилища сессии.
// Backend принимает значения memory или redis.
type Session struct {
	Backend   string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"memory"`
	KeyPrefix string        `yaml:"key_prefix" env:"SESSION_KEY_PREFIX" env-default:"session:"`
	TTL       time.Duration `yaml:"ttl" env:"SESSION_TTL"`
}

// Auth структура с константами мок-аутентификации и искусственными задержками.
type Auth struct {
	OTPCode              string        `yaml:"otp_code" env:"AUTH_OTP_CODE" env-default:"123456"`
	AccessToken          string        `yaml:"access_token" env:"AUTH_ACCESS_TOKEN" env-default:"fake.jwt.token"`
	SignInPath           string        `yaml:"sign_in_path" env:"AUTH_SIGN_IN_PATH" env-default:"/signin"`
	UserID               int64         `yaml:"user_id" env:"AUTH_USER_ID" env-default:"1"`
	Latency              time.Duration `yaml:"latency" env:"AUTH_LATENCY" env-default:"500ms"`
	LogoutLatency        time.Duration `yaml:"logout_latency" env:"AUTH_LOGOUT_LATENCY" env-default:"300ms"`
	ExternalLoginLatency time.Duration `yaml:"external_login_latency" env:"AUTH_EXTERNAL_LOGIN_LATENCY" env-default:"300ms"`
}

// RateLimit структура для ограничения частоты запросов кодов.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"3"`
}

// ExternalLogin структура для настройки входа через внешнего провайдера.
type ExternalLogin struct {
	ClientID    string   `yaml:"client_id" env:"EXTERNAL_LOGIN_CLIENT_ID" env-default:"mock-client-id"`
	RedirectURL string   `yaml:"redirect_url" env:"EXTERNAL_LOGIN_REDIRECT_URL" env-default:"http://localhost:3000/auth/google/callback"`
	Scopes      []string `yaml:"scopes" env:"EXTERNAL_LOGIN_SCOPES" env-separator:"," env-default:"openid,email,profile"`
}

// Load читает конфиг из yaml-файла по пути path. Если путь пустой, конфиг читается из переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if cfg.Backend != SessionBackendMemory && cfg.Backend != SessionBackendRedis {
		return nil, fmt.Errorf("%s: unknown session backend %q", op, cfg.Backend)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига. Сначала подхватывает .env (если он есть),
// затем читает файл из CONFIG_PATH или окружение, при ошибке завершает процесс.
func MustLoad() *Config {
	_ = godotenv.Load()

	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"GRPCHealthAddress: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"Session:\n"+
			"  Backend: %s\n"+
			"  KeyPrefix: %s\n"+
			"  TTL: %s\n"+
			"Auth:\n"+
			"  SignInPath: %s\n"+
			"  Latency: %s\n",
		c.Env,
		c.GRPCHealthAddress,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.User,
		c.DB,
		c.Backend,
		c.KeyPrefix,
		c.TTL,
		c.SignInPath,
		c.Latency,
	)
}
