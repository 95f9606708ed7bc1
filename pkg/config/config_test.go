package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "0 10 * * *", cfg.Scheduler.IngestSpec)
	assert.Equal(t, "Asia/Taipei", cfg.Scheduler.Timezone)
	assert.Equal(t, "pdf", cfg.Report.FileType)
	assert.Equal(t, 24*time.Hour, cfg.Calendar.CacheTTL)
	assert.Contains(t, cfg.Calendar.URL, "data.ntpc.gov.tw")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SYSTEM_RECIPIENTS", "ops@example.com, ,dev@example.com")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("CALENDAR_CACHE_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"ops@example.com", "dev@example.com"}, cfg.Notify.SystemRecipients)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Calendar.CacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "s3")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		t.Setenv("SCHEDULER_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "afa", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=afa sslmode=disable", c.DSN())
}
