package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hapipet?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, "eur", cfg.Currency)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "*/15 * * * *", cfg.ReminderSchedule)
	assert.False(t, cfg.NotifyQueueEnabled)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "Europe/Paris", cfg.Location().String())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hapipet")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("MAX_REQUESTS_PER_MIN", "30")
	t.Setenv("NOTIFY_QUEUE_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://app.hapipet.fr, https://admin.hapipet.fr")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30, cfg.MaxRequestsPerMin)
	assert.True(t, cfg.NotifyQueueEnabled)
	assert.Equal(t, []string{"https://app.hapipet.fr", "https://admin.hapipet.fr"}, cfg.AllowedOrigins())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/hapipet")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hapipet")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}
