package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  service_name: newsletter-test\n")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "newsletter-test", cfg.App.ServiceName)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 1, cfg.Scheduler.Workers)
	assert.False(t, cfg.Scheduler.Claim.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Claim.StaleAfter)
	assert.Equal(t, "smtp", cfg.Mailer.Driver)
	assert.Equal(t, "Newsletter Service", cfg.Mailer.FromName)
	assert.Equal(t, uint16(3001), cfg.HTTPServer.Port)
	assert.Equal(t, "newsletter.content.dispatched", cfg.Kafka.Producer.Topic)
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PASS", "hunter2")
	t.Setenv("SCHEDULER_INTERVAL", "15s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	path := writeConfig(t, "mailer:\n  host: localhost\n  port: 2525\n")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.Mailer.Host)
	assert.Equal(t, 2525, cfg.Mailer.Port)
	assert.Equal(t, "hunter2", cfg.Mailer.Password)
	assert.Equal(t, 15*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestDump_MasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "db-secret"
	cfg.Mailer.Password = "smtp-secret"
	cfg.Mailer.APIKey = "re_secret"
	cfg.Mailer.Username = "mailer-user"

	data, err := Dump(cfg)
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "db-secret")
	assert.NotContains(t, out, "smtp-secret")
	assert.NotContains(t, out, "re_secret")
	assert.Contains(t, out, "mailer-user")
	assert.Contains(t, out, secretMask)

	assert.Equal(t, "db-secret", cfg.Database.Password)
}
