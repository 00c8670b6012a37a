package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FromEnv_defaults(t *testing.T) {
	cfg := NewBuilder(slog.Default()).FromEnv().GetConfig()

	assert.Equal(t, "localhost:8080", cfg.RunAddr)
	assert.Equal(t, "/api/v1", cfg.APIV1Str)
	assert.Equal(t, 8*24*time.Hour, cfg.AccessTokenExpire())
	assert.Equal(t, 48*time.Hour, cfg.ResetTokenExpire())
	assert.Equal(t, "gopher-users", cfg.EmailsFromName)
	assert.Equal(t, "email_jobs", cfg.EmailQueue)
	assert.Equal(t, 15*time.Minute, cfg.LoginFailureWindow)
	assert.False(t, cfg.UsersOpenRegistration)
	assert.False(t, cfg.EmailsEnabled())
	assert.NotEmpty(t, cfg.SecretKey)
}

func TestBuilder_FromEnv(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9000")
	t.Setenv("POSTGRES_SERVER", "db:5432")
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	t.Setenv("POSTGRES_DB", "users")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("SECRET_KEY", "secret")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("EMAILS_FROM_EMAIL", "noreply@example.com")
	t.Setenv("USERS_OPEN_REGISTRATION", "true")
	t.Setenv("LOGIN_FAILURE_WINDOW", "1m")

	cfg := NewBuilder(slog.Default()).FromEnv().GetConfig()

	assert.Equal(t, ":9000", cfg.RunAddr)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/users", cfg.DatabaseURI)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "secret", cfg.SecretKey)
	assert.True(t, cfg.EmailsEnabled())
	assert.True(t, cfg.UsersOpenRegistration)
	assert.Equal(t, time.Minute, cfg.LoginFailureWindow)
	assert.NoError(t, cfg.Validate())
}

func TestBuilder_DatabaseURI_wins(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://x:y@host/db")
	t.Setenv("POSTGRES_SERVER", "ignored")

	cfg := NewBuilder(slog.Default()).FromEnv().GetConfig()
	assert.Equal(t, "postgres://x:y@host/db", cfg.DatabaseURI)
}

func TestBuilder_FromDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file,
		[]byte("PROJECT_NAME=from-dotenv\nEMAILS_FROM_NAME=Support\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PROJECT_NAME")
		_ = os.Unsetenv("EMAILS_FROM_NAME")
	})

	cfg := NewBuilder(slog.Default()).
		FromDotEnv(file, filepath.Join(dir, "missing.env")).
		FromEnv().
		GetConfig()

	assert.Equal(t, "from-dotenv", cfg.ProjectName)
	assert.Equal(t, "Support", cfg.EmailsFromName)
}

func TestBuilder_FromArgs(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9000")

	cfg := NewBuilder(slog.Default()).
		FromEnv().
		FromArgs([]string{"-a", ":7000", "-d", "postgres://a:b@c/d", "-open"}).
		GetConfig()

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "postgres://a:b@c/d", cfg.DatabaseURI)
	assert.True(t, cfg.UsersOpenRegistration)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURI:                "postgres://a:b@c/d",
			AccessTokenExpireMinutes:   1,
			EmailResetTokenExpireHours: 1,
			MailerWorkers:              1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no database", func(c *Config) { c.DatabaseURI = "" }, true},
		{"zero expiry", func(c *Config) { c.AccessTokenExpireMinutes = 0 }, true},
		{"zero reset expiry", func(c *Config) { c.EmailResetTokenExpireHours = 0 }, true},
		{"superuser without password", func(c *Config) { c.FirstSuperuser = "admin@example.com" }, true},
		{"superuser with password", func(c *Config) {
			c.FirstSuperuser = "admin@example.com"
			c.FirstSuperuserPassword = "pass"
		}, false},
		{"no workers", func(c *Config) { c.MailerWorkers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
