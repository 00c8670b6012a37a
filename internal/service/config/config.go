package config

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/talx-hub/gopher-users/internal/model"
)

type Config struct {
	RunAddr     string   `env:"RUN_ADDRESS"    envDefault:"localhost:8080"`
	LogLevel    string   `env:"LOG_LEVEL"      envDefault:"info"`
	ProjectName string   `env:"PROJECT_NAME"   envDefault:"gopher-users"`
	ServerHost  string   `env:"SERVER_HOST"    envDefault:"http://localhost"`
	APIV1Str    string   `env:"API_V1_STR"     envDefault:"/api/v1"`
	CORSOrigins []string `env:"CORS_ORIGINS"   envSeparator:","`

	SecretKey                string `env:"SECRET_KEY"                  envDefault:""`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"11520"`

	DatabaseURI      string `env:"DATABASE_URI"      envDefault:""`
	PostgresServer   string `env:"POSTGRES_SERVER"   envDefault:""`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:""`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string `env:"POSTGRES_DB"       envDefault:""`

	SMTPTLS         bool   `env:"SMTP_TLS"          envDefault:"true"`
	SMTPHost        string `env:"SMTP_HOST"         envDefault:""`
	SMTPPort        int    `env:"SMTP_PORT"         envDefault:"0"`
	SMTPUser        string `env:"SMTP_USER"         envDefault:""`
	SMTPPassword    string `env:"SMTP_PASSWORD"     envDefault:""`
	EmailsFromEmail string `env:"EMAILS_FROM_EMAIL" envDefault:""`
	EmailsFromName  string `env:"EMAILS_FROM_NAME"  envDefault:""`

	EmailResetTokenExpireHours int `env:"EMAIL_RESET_TOKEN_EXPIRE_HOURS" envDefault:"48"`

	FirstSuperuser         string `env:"FIRST_SUPERUSER"          envDefault:""`
	FirstSuperuserPassword string `env:"FIRST_SUPERUSER_PASSWORD" envDefault:""`
	UsersOpenRegistration  bool   `env:"USERS_OPEN_REGISTRATION"  envDefault:"false"`
	PasswordMinEntropy     int    `env:"PASSWORD_MIN_ENTROPY"     envDefault:"50"`

	RabbitMQURL         string `env:"RABBITMQ_URL"          envDefault:""`
	EmailQueue          string `env:"EMAIL_QUEUE"           envDefault:"email_jobs"`
	MailerWorkers       int    `env:"MAILER_WORKERS"        envDefault:"4"`
	MailerMaxConcurrent uint64 `env:"MAILER_MAX_CONCURRENT" envDefault:"2"`

	RedisAddr     string `env:"REDIS_ADDR"     envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`

	LoginMaxFailures   int64         `env:"LOGIN_MAX_FAILURES"   envDefault:"5"`
	LoginFailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW" envDefault:"15m"`
}

// AccessTokenExpire is the lifetime of tokens issued by the login endpoint.
func (c *Config) AccessTokenExpire() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c *Config) ResetTokenExpire() time.Duration {
	return time.Duration(c.EmailResetTokenExpireHours) * time.Hour
}

func (c *Config) EmailsEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != 0 && c.EmailsFromEmail != ""
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURI == "" {
		errs = append(errs, errors.New("database URI is not set"))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("access token expiry must be positive"))
	}
	if c.EmailResetTokenExpireHours <= 0 {
		errs = append(errs, errors.New("reset token expiry must be positive"))
	}
	if (c.FirstSuperuser == "") != (c.FirstSuperuserPassword == "") {
		errs = append(errs, errors.New("first superuser needs both e-mail and password"))
	}
	if c.MailerWorkers <= 0 {
		errs = append(errs, errors.New("mailer worker count must be positive"))
	}
	return errors.Join(errs...)
}

type Builder struct {
	cfg *Config
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{},
		log: log,
	}
}

// FromDotEnv loads variables from the given files into the process
// environment without overriding variables that are already set.
func (b *Builder) FromDotEnv(files ...string) *Builder {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			b.log.LogAttrs(context.Background(),
				slog.LevelError, "Failed to load env file",
				slog.String("file", f),
				slog.Any(model.KeyLoggerError, err))
		}
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	return b.FromArgs(os.Args[1:])
}

func (b *Builder) FromArgs(args []string) *Builder {
	fs := flag.NewFlagSet("gopher-users", flag.ContinueOnError)
	fs.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	fs.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	fs.StringVar(&b.cfg.SecretKey, "k", b.cfg.SecretKey, "Secret key")
	fs.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	fs.StringVar(&b.cfg.RabbitMQURL, "q", b.cfg.RabbitMQURL, "RabbitMQ URL")
	fs.StringVar(&b.cfg.RedisAddr, "r", b.cfg.RedisAddr, "Redis address")
	fs.BoolVar(&b.cfg.UsersOpenRegistration, "open", b.cfg.UsersOpenRegistration,
		"Allow open user registration")

	if err := fs.Parse(args); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

// GetConfig fills in the derived settings and returns the config.
func (b *Builder) GetConfig() *Config {
	if b.cfg.DatabaseURI == "" && b.cfg.PostgresServer != "" {
		b.cfg.DatabaseURI = postgresDSN(
			b.cfg.PostgresUser, b.cfg.PostgresPassword,
			b.cfg.PostgresServer, b.cfg.PostgresDB)
	}
	if b.cfg.EmailsFromName == "" {
		b.cfg.EmailsFromName = b.cfg.ProjectName
	}
	if b.cfg.SecretKey == "" {
		b.log.LogAttrs(context.Background(),
			slog.LevelWarn, "SECRET_KEY is not set, tokens will not survive a restart")
		b.cfg.SecretKey = randomKey()
	}
	return b.cfg
}

func postgresDSN(user, password, host, db string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   host,
		Path:   "/" + db,
	}
	return u.String()
}

func randomKey() string {
	const keyLen = 32
	buf := make([]byte, keyLen)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
