package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9090"
  log_level: debug
database:
  driver: sqlite
  url: test.db
auth:
  admin_emails: [owner@example.com]
  token_ttl: 2h
cache:
  ttl: 30s
`), 0o600))

	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("ALLOWED_SIGNUP_EMAILS", "friend@example.com, ,other@example.com")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.DSN())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"owner@example.com", "friend@example.com", "other@example.com"}, cfg.Auth.SignupEmails())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "Owner@Example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, []string{"owner@example.com"}, cfg.Auth.SignupEmails())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin email")

	cfg.Auth.AdminEmails = []string{"owner@example.com"}
	assert.NoError(t, cfg.Validate())

	cfg.App.Env = EnvProduction
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")

	cfg.Auth.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := Default().Database
	assert.Equal(t, "host=localhost user=postgres password= dbname=promptcms port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
	assert.Equal(t, "postgres://postgres:@localhost:5432/promptcms?sslmode=disable", cfg.MigrationURL())

	cfg.URL = "postgres://u:p@db:5432/x"
	assert.Equal(t, cfg.URL, cfg.DSN())
	assert.Equal(t, cfg.URL, cfg.MigrationURL())
}

func TestOpenTestDB(t *testing.T) {
	db, err := OpenTestDB()
	require.NoError(t, err)

	for _, table := range []string{"prompts", "categories", "tags", "prompt_categories", "prompt_tags", "profiles", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn("prompt_tags", "created_at"))
}

func TestNewKafkaWriter(t *testing.T) {
	assert.Nil(t, NewKafkaWriter(KafkaConfig{Topic: "t"}))

	w := NewKafkaWriter(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NotNil(t, w)
	assert.Equal(t, "t", w.Topic)
}
