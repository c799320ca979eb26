package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"SHOPBOT_APP_NAME",
	"SHOPBOT_APP_ENV",
	"SHOPBOT_APP_PORT",
	"SHOPBOT_DATABASE_DRIVER",
	"SHOPBOT_DATABASE_HOST",
	"SHOPBOT_DATABASE_PORT",
	"SHOPBOT_DATABASE_USER",
	"SHOPBOT_DATABASE_PASSWORD",
	"SHOPBOT_DATABASE_DBNAME",
	"SHOPBOT_DATABASE_SSLMODE",
	"SHOPBOT_DATABASE_MAX_OPEN_CONNS",
	"SHOPBOT_DATABASE_MAX_IDLE_CONNS",
	"SHOPBOT_JWT_SECRET",
	"SHOPBOT_INVENTORY_LOGIN",
	"SHOPBOT_INVENTORY_PASSWORD",
	"SHOPBOT_INVENTORY_REQUESTS_PER_SECOND",
	"SHOPBOT_SYNC_ENABLED",
	"SHOPBOT_SYNC_INTERVAL",
	"SHOPBOT_SCHEDULER_ENABLED",
	"SHOPBOT_TELEMETRY_SAMPLING_RATIO",
	"SHOPBOT_TELEMETRY_LOGS_ENABLED",
	"SHOPBOT_SWAGGER_ENABLED",
	"SHOPBOT_SWAGGER_REQUIRE_AUTH",
	"SHOPBOT_SWAGGER_ALLOWED_IPS",
}

// withCleanEnv clears every config variable for the duration of the test.
func withCleanEnv(t *testing.T) {
	t.Helper()
	saved := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		saved[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range saved {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func setInventoryCredentials() {
	os.Setenv("SHOPBOT_INVENTORY_LOGIN", "sync-user")
	os.Setenv("SHOPBOT_INVENTORY_PASSWORD", "sync-pass")
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shopbot", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "shopbot", cfg.Database.DBName)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 2, cfg.Database.MaxIdleConns)

		assert.Equal(t, "https://api.moysklad.ru/api/remap/1.2", cfg.Inventory.BaseURL)
		assert.Equal(t, 30, cfg.Inventory.TimeoutSeconds)
		assert.Equal(t, 1000, cfg.Inventory.PageSize)
		assert.Len(t, cfg.Inventory.Locations, 2)
		assert.Equal(t, "point1", cfg.Inventory.Locations[0].Key)

		assert.True(t, cfg.Sync.Enabled)
		assert.True(t, cfg.Sync.RunOnStartup)
		assert.Equal(t, time.Hour, cfg.Sync.Interval)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Cart.AbandonAfter)
		assert.Equal(t, 6*time.Hour, cfg.Cart.ReminderInterval)
		assert.True(t, cfg.Telemetry.LogsEnabled)
		assert.False(t, cfg.Swagger.Enabled)
	})

	t.Run("loads values from environment variables with SHOPBOT prefix", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_APP_NAME", "test-app")
		os.Setenv("SHOPBOT_APP_PORT", "9000")
		os.Setenv("SHOPBOT_DATABASE_HOST", "testdb.local")
		os.Setenv("SHOPBOT_DATABASE_PORT", "5433")
		os.Setenv("SHOPBOT_DATABASE_USER", "testuser")
		os.Setenv("SHOPBOT_DATABASE_PASSWORD", "testpass")
		os.Setenv("SHOPBOT_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SHOPBOT_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("SHOPBOT_SYNC_INTERVAL", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "sync-user", cfg.Inventory.Login)
		assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	})

	t.Run("explicit false disables sync and skips credential check", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("SHOPBOT_SYNC_ENABLED", "false")
		os.Setenv("SHOPBOT_SCHEDULER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Sync.Enabled)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("requires inventory credentials when sync is enabled", func(t *testing.T) {
		withCleanEnv(t)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inventory.login and inventory.password")
	})

	t.Run("mysql driver switches default port", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_DATABASE_DRIVER", "mysql")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3306, cfg.Database.Port)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SHOPBOT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects sync interval below one minute", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_SYNC_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.interval")
	})

	t.Run("rejects short jwt secret", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		withCleanEnv(t)
		setInventoryCredentials()
		os.Setenv("SHOPBOT_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		setInventoryCredentials()
		os.Setenv("SHOPBOT_APP_ENV", "production")
		os.Setenv("SHOPBOT_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("SHOPBOT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SHOPBOT_DATABASE_SSLMODE", "require")
	}

	t.Run("accepts valid production config", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("SHOPBOT_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("SHOPBOT_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("rejects open swagger in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("SHOPBOT_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger")
	})

	t.Run("accepts swagger behind admin auth in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("SHOPBOT_SWAGGER_ENABLED", "true")
		os.Setenv("SHOPBOT_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.RequireAuth)
	})

	t.Run("rejects disabled sslmode in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("SHOPBOT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db",
			Port:     5432,
			User:     "shop",
			Password: "p@ss:word",
			DBName:   "shopbot",
			SSLMode:  "disable",
		}
		dsn := d.DSN()
		assert.True(t, strings.HasPrefix(dsn, "postgres://shop:"))
		assert.Contains(t, dsn, "p%40ss%3Aword")
		assert.Contains(t, dsn, "@db:5432/shopbot?sslmode=disable")
	})

	t.Run("mysql uses tcp with parseTime", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "mysql",
			Host:     "db",
			Port:     3306,
			User:     "shop",
			Password: "secret",
			DBName:   "shopbot",
		}
		dsn := d.DSN()
		assert.True(t, strings.HasPrefix(dsn, "shop:secret@tcp(db:3306)/shopbot?"))
		assert.Contains(t, dsn, "parseTime=true")
		assert.Contains(t, dsn, "charset=utf8mb4")
	})

	t.Run("sqlite returns path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", Path: "/tmp/shop.db"}
		assert.Equal(t, "/tmp/shop.db", d.DSN())
	})
}
