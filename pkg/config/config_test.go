package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAPIConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "API_ADDR", "STORE_DRIVER", "TOKEN_TTL_HOURS", "MAX_POST_LENGTH", "CORS_ALLOWED_ORIGINS", "SSE_HEARTBEAT_SECONDS", "DATABASE_URL", "JWT_SECRET", "MAX_COMMENT_LENGTH", "RATE_LIMIT_REGISTER", "RATE_LIMIT_LOGIN", "RATE_LIMIT_WRITE", "RATE_LIMIT_REALTIME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	cfg := LoadAPIConfig()
	require.Equal(t, ":4000", cfg.Addr)
	require.Equal(t, StorePostgres, cfg.StoreDriver)
	require.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 280, cfg.MaxPostLength)
	require.Equal(t, 500, cfg.MaxCommentLength)
	require.Equal(t, 15*time.Second, cfg.SSEHeartbeat)
	require.Equal(t, DefaultRateLimits(), cfg.RateLimits)
	require.NoError(t, cfg.Validate())
}

func TestLoadAPIConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("TOKEN_TTL_HOURS", "24")
	t.Setenv("API_BASE_PATH", "/api/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("SSE_HEARTBEAT_SECONDS", "30s")
	t.Setenv("RATE_LIMIT_WRITE", "10/15s")
	t.Setenv("RATE_LIMIT_LOGIN", "off")
	t.Setenv("RATE_LIMIT_REGISTER", "lots")

	cfg := LoadAPIConfig()
	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, "/api", cfg.BasePath)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.SSEHeartbeat)
	require.Equal(t, RateLimit{Limit: 10, Window: 15 * time.Second}, cfg.RateLimits.Write)
	require.False(t, cfg.RateLimits.Login.Enabled())
	require.Equal(t, DefaultRateLimits().Register, cfg.RateLimits.Register)
}

func TestParseRateLimit(t *testing.T) {
	cases := []struct {
		in   string
		want RateLimit
		err  bool
	}{
		{in: "5/1m", want: RateLimit{Limit: 5, Window: time.Minute}},
		{in: " 30 / 30s ", want: RateLimit{Limit: 30, Window: 30 * time.Second}},
		{in: "100", want: RateLimit{Limit: 100, Window: time.Minute}},
		{in: "0/1h", want: RateLimit{}},
		{in: "OFF", want: RateLimit{}},
		{in: "-1/1m", err: true},
		{in: "5/soon", err: true},
		{in: "5/-1s", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRateLimit(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
	require.Equal(t, "5/1m0s", RateLimit{Limit: 5, Window: time.Minute}.String())
	require.Equal(t, "off", RateLimit{}.String())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := APIConfig{Environment: "production", StoreDriver: StoreMemory, TokenTTL: time.Hour, JWTSecret: defaultJWTSecret}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret"
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = "mongo"
	require.Error(t, cfg.Validate())
}

func TestGetIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ESTATE_TEST_INT", "twelve")
	require.Equal(t, 7, GetInt("ESTATE_TEST_INT", 7))
	t.Setenv("ESTATE_TEST_BOOL", "yes please")
	require.True(t, GetBool("ESTATE_TEST_BOOL", true))
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("ESTATE_DOTENV_A=from-file\nESTATE_DOTENV_B=from-file\n"), 0o600))
	t.Setenv("ESTATE_DOTENV_A", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("ESTATE_DOTENV_B") })

	LoadDotEnv(file, filepath.Join(dir, "missing.env"))
	require.Equal(t, "from-env", os.Getenv("ESTATE_DOTENV_A"))
	require.Equal(t, "from-file", os.Getenv("ESTATE_DOTENV_B"))
}
